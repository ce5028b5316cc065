package entities

// NearbyBusiness is a row returned by nearby_businesses
type NearbyBusiness struct {
	BusinessID string  `json:"business_id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
}

// RankedSuggestion is a row returned by get_business_search_suggestions
type RankedSuggestion struct {
	Suggestion string `json:"suggestion"`
	Type       string `json:"suggestion_type"`
	Count      int    `json:"search_count"`
}

// TrendingTerm is a row returned by get_trending_search_terms
type TrendingTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// TrendingFavorite is a row returned by get_trending_favorites
type TrendingFavorite struct {
	EntityID      string `json:"entity_id"`
	EntityType    string `json:"entity_type"`
	Name          string `json:"name"`
	FavoriteCount int    `json:"favorite_count"`
}

// FavoriteSuggestion is a row returned by get_favorite_suggestions
type FavoriteSuggestion struct {
	EntityID   string  `json:"entity_id"`
	EntityType string  `json:"entity_type"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
}

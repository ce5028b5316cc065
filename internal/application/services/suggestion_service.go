package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/providers"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"github.com/zatekoja/dealsearch/internal/infrastructure/observability"
	"golang.org/x/sync/errgroup"
)

const (
	minSuggestionRunes    = 2
	fallbackSuggestionCap = 5
)

// SuggestionService produces autocomplete entries. It never fails: the ranked
// database function is tried first, then direct title/name lookups, then nothing.
type SuggestionService struct {
	functions  providers.SearchFunctions
	coupons    repositories.CouponRepository
	businesses repositories.BusinessRepository
	limit      int
}

// NewSuggestionService creates a suggestion service returning at most limit entries
func NewSuggestionService(
	functions providers.SearchFunctions,
	coupons repositories.CouponRepository,
	businesses repositories.BusinessRepository,
	limit int,
) *SuggestionService {
	if limit <= 0 {
		limit = 10
	}
	return &SuggestionService{
		functions:  functions,
		coupons:    coupons,
		businesses: businesses,
		limit:      limit,
	}
}

// Suggest returns suggestions for term, empty when the term is too short or every source fails
func (s *SuggestionService) Suggest(ctx context.Context, term string) []entities.SearchSuggestion {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < minSuggestionRunes {
		return []entities.SearchSuggestion{}
	}

	logger := observability.LoggerFromContext(ctx)

	ranked, err := s.functions.BusinessSearchSuggestions(ctx, term, s.limit)
	if err == nil {
		suggestions := make([]entities.SearchSuggestion, 0, len(ranked))
		for _, r := range ranked {
			suggestionType := entities.SuggestionTypeCategory
			if r.Type == string(entities.SuggestionTypeBusiness) {
				suggestionType = entities.SuggestionTypeBusiness
			}
			suggestions = append(suggestions, entities.SearchSuggestion{
				Text:  r.Suggestion,
				Type:  suggestionType,
				Count: r.Count,
			})
		}
		return suggestions
	}
	logger.Warn().Err(err).Str("term", term).Msg("ranked suggestions unavailable, falling back to direct lookups")

	suggestions, err := s.fallback(ctx, term)
	if err != nil {
		logger.Warn().Err(err).Str("term", term).Msg("suggestion fallback failed")
		return []entities.SearchSuggestion{}
	}
	return suggestions
}

func (s *SuggestionService) fallback(ctx context.Context, term string) ([]entities.SearchSuggestion, error) {
	var titles, names []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		titles, err = s.coupons.SuggestTitles(gctx, term, fallbackSuggestionCap)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = s.businesses.SuggestNames(gctx, term, fallbackSuggestionCap)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	suggestions := make([]entities.SearchSuggestion, 0, len(titles)+len(names))
	for _, title := range titles {
		suggestions = append(suggestions, entities.SearchSuggestion{Text: title, Type: entities.SuggestionTypeCoupon, Count: 1})
	}
	for _, name := range names {
		suggestions = append(suggestions, entities.SearchSuggestion{Text: name, Type: entities.SuggestionTypeBusiness, Count: 1})
	}
	return suggestions, nil
}

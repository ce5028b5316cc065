package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

// SearchAnalyticsAdapter writes search events to search_analytics
type SearchAnalyticsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

func NewSearchAnalyticsAdapter(client *postgres.Client) repositories.SearchAnalyticsRepository {
	return &SearchAnalyticsAdapter{client: client, db: client.Goqu()}
}

func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	filters := event.Filters
	if len(filters) == 0 {
		filters = json.RawMessage("{}")
	}

	var location sql.NullString
	if event.Location != nil {
		raw, err := json.Marshal(event.Location)
		if err != nil {
			return apperrors.NewInternalError("failed to encode search location", err)
		}
		location = sql.NullString{String: string(raw), Valid: true}
	}

	var userID sql.NullString
	if event.UserID != nil {
		userID = sql.NullString{String: *event.UserID, Valid: true}
	}

	record := goqu.Record{
		"id":               event.ID,
		"user_id":          userID,
		"search_term":      event.SearchTerm,
		"filters":          string(filters),
		"results_count":    event.ResultsCount,
		"response_time_ms": event.ResponseTimeMs,
		"location":         location,
		"created_at":       event.CreatedAt,
	}

	query, args, err := a.db.Insert("search_analytics").Rows(record).Prepared(true).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to log search event", err)
	}

	return nil
}

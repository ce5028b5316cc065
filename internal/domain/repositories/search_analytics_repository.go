package repositories

import (
	"context"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

type SearchAnalyticsRepository interface {
	LogEvent(ctx context.Context, event *entities.SearchEvent) error
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

func TestTrackSearch_WritesEventInBackground(t *testing.T) {
	repo := new(MockSearchAnalyticsRepository)
	event := &entities.SearchEvent{SearchTerm: "pizza", ResultsCount: 2}
	repo.On("LogEvent", mock.Anything, event).Return(nil).Once()

	svc := NewSearchAnalyticsService(repo, nil, time.Second)
	svc.TrackSearch(context.Background(), event)
	svc.Wait()

	repo.AssertExpectations(t)
}

func TestTrackSearch_FailureIsSwallowed(t *testing.T) {
	repo := new(MockSearchAnalyticsRepository)
	repo.On("LogEvent", mock.Anything, mock.Anything).Return(errors.New("insert rejected"))

	svc := NewSearchAnalyticsService(repo, nil, time.Second)
	assert.NotPanics(t, func() {
		svc.TrackSearch(context.Background(), &entities.SearchEvent{SearchTerm: "pizza"})
		svc.Wait()
	})
	repo.AssertNumberOfCalls(t, "LogEvent", 1)
}

func TestTrackSearch_SurvivesCancelledRequestContext(t *testing.T) {
	repo := new(MockSearchAnalyticsRepository)
	repo.On("LogEvent", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewSearchAnalyticsService(repo, nil, time.Second)
	svc.TrackSearch(ctx, &entities.SearchEvent{SearchTerm: "pizza"})
	svc.Wait()

	repo.AssertExpectations(t)
}

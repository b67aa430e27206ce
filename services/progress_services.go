package services

import (
	"context"
	"fmt"
	"time"

	"riddlehunt/metrics"
	"riddlehunt/repositories"

	"github.com/sirupsen/logrus"
)

// RefreshTeamProgress sets the pending/complete team gauges from the database
func RefreshTeamProgress(ctx context.Context, teams repositories.TeamRepository) error {
	total, err := teams.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count teams: %w", err)
	}
	completed, err := teams.CountCompleted(ctx)
	if err != nil {
		return fmt.Errorf("failed to count completed teams: %w", err)
	}
	metrics.SetTeamCounts(total, completed)
	return nil
}

// TrackTeamProgress refreshes the team gauges every interval until ctx is done
func TrackTeamProgress(ctx context.Context, teams repositories.TeamRepository, interval time.Duration, logger logrus.FieldLogger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := RefreshTeamProgress(ctx, teams); err != nil && ctx.Err() == nil {
				logger.WithError(err).Warn("team progress refresh failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

package sqlc

import (
	"context"
	"errors"

	"github.com/sqlc-dev/pqtype"
)

var ErrAnalyticsDisabled = errors.New("analytics is disabled; no database configured")

// AnalyticsManager records server wide counters keyed by the server
// address. A nil *AnalyticsManager is valid and records nothing.
type AnalyticsManager struct {
	queries Querier
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	if queries == nil {
		return nil
	}
	return &AnalyticsManager{queries: queries}
}

func (a *AnalyticsManager) Enabled() bool {
	return a != nil
}

func (a *AnalyticsManager) IncrementGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	if !a.Enabled() {
		return nil
	}
	return a.queries.IncrementGamesCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) IncrementRematchCalledCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	if !a.Enabled() {
		return nil
	}
	return a.queries.IncrementRematchCalledCount(ctx, serverIpNet)
}

// IncrementWinsCount bumps the counter of the side that won a game.
func (a *AnalyticsManager) IncrementWinsCount(ctx context.Context, serverIpNet pqtype.Inet, playerWon bool) error {
	if !a.Enabled() {
		return nil
	}
	if playerWon {
		return a.queries.IncrementPlayerWinsCount(ctx, serverIpNet)
	}
	return a.queries.IncrementComputerWinsCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	if !a.Enabled() {
		return 0, ErrAnalyticsDisabled
	}
	return a.queries.GetGamesCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetRematchCalledCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	if !a.Enabled() {
		return 0, ErrAnalyticsDisabled
	}
	return a.queries.GetRematchCalledCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetServerAnalytics(ctx context.Context, serverIpNet pqtype.Inet) (GameServerAnalytic, error) {
	if !a.Enabled() {
		return GameServerAnalytic{}, ErrAnalyticsDisabled
	}
	return a.queries.GetServerAnalytics(ctx, serverIpNet)
}

package service

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/repository"
)

const (
	DefaultRecentGames = 10
	MaxRecentGames     = 100
)

// StatsService reports the game history of players.
type StatsService interface {
	PlayerStats(ctx context.Context, playerID string) (*repository.PlayerStats, error)
	RecentGames(ctx context.Context, playerID string, limit int) ([]repository.GameRecord, error)
}

type statsService struct {
	results repository.ResultRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(results repository.ResultRepository) StatsService {
	return &statsService{results: results}
}

func (s *statsService) PlayerStats(ctx context.Context, playerID string) (*repository.PlayerStats, error) {
	return s.results.StatsByPlayer(ctx, playerID)
}

// RecentGames clamps limit to [1, MaxRecentGames]; zero or less means DefaultRecentGames.
func (s *statsService) RecentGames(ctx context.Context, playerID string, limit int) ([]repository.GameRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentGames
	}
	limit = min(limit, MaxRecentGames)
	return s.results.RecentByPlayer(ctx, playerID, limit)
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/condoops/incident-service/internal/authz"
	"github.com/condoops/incident-service/internal/cache"
	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/repository"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// BuildingStats aggregates incident counts for a building.
type BuildingStats struct {
	BuildingID string         `json:"buildingId"`
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	Open       int            `json:"open"`
	Closed     int            `json:"closed"`
}

// StatsService computes building aggregates, memoized through an injected
// TTL cache. Residents get a memo scoped to their own incidents, keyed by
// (building id, user id); everyone else shares the per-building key.
type StatsService struct {
	incidents repository.IncidentRepository
	cache     cache.Cache
	ttl       time.Duration
}

// NewStatsService constructs the service with the memo lifetime.
func NewStatsService(incidents repository.IncidentRepository, c cache.Cache, ttl time.Duration) *StatsService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsService{incidents: incidents, cache: c, ttl: ttl}
}

// BuildingStats returns the memoized aggregate for the building.
func (s *StatsService) BuildingStats(ctx context.Context, caller *domain.User, buildingID string) (*BuildingStats, error) {
	if d := authz.CanAccessBuilding(caller, buildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}

	key := "stats:" + buildingID
	var reportedBy *string
	if caller.Role == domain.RoleResident {
		key += ":" + caller.ID
		reportedBy = &caller.ID
	}

	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached BuildingStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	counts, err := s.incidents.CountByBuilding(ctx, buildingID, reportedBy)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &BuildingStats{
		BuildingID: buildingID,
		ByStatus:   make(map[string]int, len(counts)),
	}
	for status, count := range counts {
		stats.ByStatus[string(status)] = count
		stats.Total += count
		if status.IsTerminal() {
			stats.Closed += count
		} else {
			stats.Open += count
		}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, key, raw, s.ttl)
		}
	}
	return stats, nil
}

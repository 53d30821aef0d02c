// Package refdata loads and serves the static reference data the engine
// scores against: neighborhood profiles and their historical weather/outage
// baselines. Everything is immutable after Load, so the store is safe for
// concurrent reads by construction.
package refdata

import (
	"context"
	"errors"
	"sort"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/umahmood/haversine"
)

// Entry pairs a neighborhood profile with its statistical baseline.
type Entry struct {
	Profile  domain.NeighborhoodProfile
	Baseline domain.BaselineEntry
}

// Store is the read-only baseline store. No mutation API is exposed; a reload
// requires a process restart.
type Store struct {
	entries  map[string]Entry
	profiles []domain.NeighborhoodProfile // sorted by id
}

func newStore(entries map[string]Entry) *Store {
	profiles := make([]domain.NeighborhoodProfile, 0, len(entries))
	for _, e := range entries {
		profiles = append(profiles, e.Profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })

	return &Store{entries: entries, profiles: profiles}
}

// Get resolves a neighborhood id to its profile and baseline. Unknown ids
// yield a *domain.NotFoundError.
func (s *Store) Get(id string) (domain.NeighborhoodProfile, domain.BaselineEntry, error) {
	e, ok := s.entries[id]
	if !ok {
		return domain.NeighborhoodProfile{}, domain.BaselineEntry{}, &domain.NotFoundError{NeighborhoodID: id}
	}
	return e.Profile, e.Baseline, nil
}

// All returns every monitored neighborhood profile, sorted by id.
func (s *Store) All() []domain.NeighborhoodProfile {
	out := make([]domain.NeighborhoodProfile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Len reports the number of monitored neighborhoods.
func (s *Store) Len() int { return len(s.profiles) }

// Nearest returns the profile closest to the given coordinate by great-circle
// distance, and that distance in kilometers.
func (s *Store) Nearest(lat, lon float64) (domain.NeighborhoodProfile, float64, error) {
	if len(s.profiles) == 0 {
		return domain.NeighborhoodProfile{}, 0, errors.New("no neighborhoods loaded")
	}

	from := haversine.Coord{Lat: lat, Lon: lon}
	best := s.profiles[0]
	_, bestKm := haversine.Distance(from, haversine.Coord{Lat: best.Lat, Lon: best.Lon})

	for _, p := range s.profiles[1:] {
		_, km := haversine.Distance(from, haversine.Coord{Lat: p.Lat, Lon: p.Lon})
		if km < bestKm {
			best, bestKm = p, km
		}
	}
	return best, bestKm, nil
}

// CheckReadiness reports whether reference data is loaded. Satisfies the
// shared observability ReadinessChecker used by the /readyz endpoint.
func (s *Store) CheckReadiness(_ context.Context) error {
	if len(s.profiles) == 0 {
		return errors.New("no reference data loaded")
	}
	return nil
}

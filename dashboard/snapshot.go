// Package dashboard holds the analytics view: a self-initializing state
// container that fetches one summary payload on mount and renders it as a
// small grid of metric cards.
package dashboard

import (
	"time"
)

// Snapshot is one successfully fetched analytics payload. Every field is
// optional: a nil pointer or nil map means the payload did not carry it, which
// is different from carrying a zero.
type Snapshot struct {
	TotalVisits   *int64
	UniqueUsers   *int64
	APIHits       *int64
	EndpointStats map[string]EndpointStat
	LastUpdated   *time.Time
}

// EndpointStat is the usage of a single endpoint. A bare count only sets Hits;
// a stats record also keeps its other numeric members in Fields.
type EndpointStat struct {
	Hits   int64
	Fields map[string]int64
}

// Count returns a pointer to n, for building snapshots.
func Count(n int64) *int64 {
	return &n
}

// defaultSnapshot is the effective data shown when no payload was ever loaded.
func defaultSnapshot() Snapshot {
	return Snapshot{
		TotalVisits:   Count(0),
		UniqueUsers:   Count(0),
		APIHits:       Count(0),
		EndpointStats: map[string]EndpointStat{},
	}
}

// Clone returns a deep copy so callers never share mutable state with a View.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		TotalVisits: cloneCount(s.TotalVisits),
		UniqueUsers: cloneCount(s.UniqueUsers),
		APIHits:     cloneCount(s.APIHits),
	}
	if s.LastUpdated != nil {
		t := *s.LastUpdated
		out.LastUpdated = &t
	}
	if s.EndpointStats != nil {
		out.EndpointStats = make(map[string]EndpointStat, len(s.EndpointStats))
		for k, v := range s.EndpointStats {
			st := EndpointStat{Hits: v.Hits}
			if v.Fields != nil {
				st.Fields = make(map[string]int64, len(v.Fields))
				for fk, fv := range v.Fields {
					st.Fields[fk] = fv
				}
			}
			out.EndpointStats[k] = st
		}
	}
	return out
}

// Endpoints returns the endpoint stats, treating an absent map as empty.
func (s Snapshot) Endpoints() map[string]EndpointStat {
	if s.EndpointStats == nil {
		return map[string]EndpointStat{}
	}
	return s.EndpointStats
}

func cloneCount(n *int64) *int64 {
	if n == nil {
		return nil
	}
	return Count(*n)
}

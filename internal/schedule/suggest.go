package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
)

// Suggester finds the earliest future departure at which both availability
// checks succeed, by sweeping the instants at which the availability
// predicate can change value. Between two consecutive candidates nothing
// becomes newly available, so no smaller feasible time can exist.
type Suggester struct {
	checker   *Checker
	fleet     FleetSource
	crew      CrewSource
	timelines TimelineSource
}

func NewSuggester(checker *Checker, fleet FleetSource, crew CrewSource, timelines TimelineSource) *Suggester {
	return &Suggester{checker: checker, fleet: fleet, crew: crew, timelines: timelines}
}

// EarliestSlot returns the smallest T >= from for which Evaluate succeeds
// over [T, T+dur) with the given requirement. A nil time with a nil error
// means no future availability: the fleet or roster is structurally
// insufficient for the foreseeable future.
func (s *Suggester) EarliestSlot(ctx context.Context, from time.Time, dur time.Duration, req Requirement) (*time.Time, error) {
	candidates, err := s.candidateTimes(ctx, from, req)
	if err != nil {
		return nil, err
	}

	for _, t := range candidates {
		avail, err := s.checker.Evaluate(ctx, NewInterval(t, dur), req)
		if err != nil {
			return nil, err
		}
		if avail.OK() {
			return &t, nil
		}
	}
	return nil, nil
}

// candidateTimes collects, sorted ascending and deduplicated, every
// instant >= from at which an aircraft of the wanted size frees up (a leg's
// arrival) or a qualifying crew member can newly be present at the origin
// (arrival of one of their legs landing there).
func (s *Suggester) candidateTimes(ctx context.Context, from time.Time, req Requirement) ([]time.Time, error) {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	add := func(t time.Time) {
		if t.Before(from) {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	fleet, err := s.fleet.Aircraft(ctx, req.Size)
	if err != nil {
		return nil, err
	}
	for _, a := range fleet {
		legs, err := s.timelines.AircraftLegs(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range legs {
			add(l.End)
		}
	}

	for _, role := range []domain.CrewRole{domain.CrewRolePilot, domain.CrewRoleAttendant} {
		members, err := s.crew.CrewByRole(ctx, role, req.LongHaul)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			legs, err := s.timelines.CrewLegs(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			for _, l := range legs {
				if l.Destination == req.Origin {
					add(l.End)
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

package schedule

import (
	"context"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
)

// TimelineSource is the read-only view over committed flight assignments.
// Legs are returned ordered by departure and never include canceled
// flights. Backed by the store on every call: availability decisions must
// see committed state, not a stale cache.
type TimelineSource interface {
	AircraftLegs(ctx context.Context, aircraftID int64) ([]Leg, error)
	CrewLegs(ctx context.Context, crewID int64) ([]Leg, error)
}

// FleetSource lists aircraft. An empty size means any size.
type FleetSource interface {
	Aircraft(ctx context.Context, size domain.AircraftSize) ([]domain.Aircraft, error)
}

// CrewSource lists crew of one role, optionally restricted to long-haul
// trained members.
type CrewSource interface {
	CrewByRole(ctx context.Context, role domain.CrewRole, trainedOnly bool) ([]domain.CrewMember, error)
}

// Requirement describes what a candidate flight needs from the fleet and
// the roster.
type Requirement struct {
	Origin string
	// Size restricts candidate aircraft; empty means any size. Long routes
	// pass AircraftSizeBig.
	Size domain.AircraftSize
	// LongHaul requires the training flag on every candidate crew member.
	LongHaul bool
	// Crew overrides the per-aircraft-size composition when non-nil. Used
	// by the external availability-check boundary, which carries explicit
	// role counts.
	Crew *domain.CrewComposition
}

// CrewPool is the qualifying crew for a window, partitioned by role.
type CrewPool struct {
	Pilots     []domain.CrewMember
	Attendants []domain.CrewMember
}

func (p *CrewPool) Covers(c domain.CrewComposition) bool {
	return len(p.Pilots) >= c.Pilots && len(p.Attendants) >= c.Attendants
}

// Availability is the outcome of evaluating a requirement over one window.
type Availability struct {
	Window   Interval
	Aircraft []domain.Aircraft // free aircraft of an acceptable size
	Crew     CrewPool          // free qualified crew at the origin
	// Feasible are the free aircraft whose required crew composition the
	// pool covers. The request succeeds iff at least one exists.
	Feasible []domain.Aircraft
}

func (a *Availability) OK() bool { return len(a.Feasible) > 0 }

// Checker answers whether sufficient aircraft and crew are free for a
// candidate window.
type Checker struct {
	fleet     FleetSource
	crew      CrewSource
	timelines TimelineSource
}

func NewChecker(fleet FleetSource, crew CrewSource, timelines TimelineSource) *Checker {
	return &Checker{fleet: fleet, crew: crew, timelines: timelines}
}

// Evaluate runs both availability checks for the window.
func (c *Checker) Evaluate(ctx context.Context, window Interval, req Requirement) (*Availability, error) {
	aircraft, err := c.AvailableAircraft(ctx, window, req.Size)
	if err != nil {
		return nil, err
	}
	pool, err := c.AvailableCrew(ctx, window, req.Origin, req.LongHaul)
	if err != nil {
		return nil, err
	}

	avail := &Availability{Window: window, Aircraft: aircraft, Crew: *pool}
	for _, a := range aircraft {
		need := domain.CompositionForSize(a.Size)
		if req.Crew != nil {
			need = *req.Crew
		}
		if pool.Covers(need) {
			avail.Feasible = append(avail.Feasible, a)
		}
	}
	return avail, nil
}

// AvailableAircraft returns every aircraft of the wanted size whose
// timeline has no leg overlapping the window. An aircraft with no
// assignments at all is trivially available.
func (c *Checker) AvailableAircraft(ctx context.Context, window Interval, size domain.AircraftSize) ([]domain.Aircraft, error) {
	fleet, err := c.fleet.Aircraft(ctx, size)
	if err != nil {
		return nil, err
	}

	free := make([]domain.Aircraft, 0, len(fleet))
	for _, a := range fleet {
		legs, err := c.timelines.AircraftLegs(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if !anyOverlap(legs, window) {
			free = append(free, a)
		}
	}
	return free, nil
}

// AvailableCrew returns the crew members of each role who are free to
// depart from origin for the whole window.
func (c *Checker) AvailableCrew(ctx context.Context, window Interval, origin string, trainedOnly bool) (*CrewPool, error) {
	pool := &CrewPool{}
	for _, role := range []domain.CrewRole{domain.CrewRolePilot, domain.CrewRoleAttendant} {
		members, err := c.crew.CrewByRole(ctx, role, trainedOnly)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			legs, err := c.timelines.CrewLegs(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			if !crewFree(legs, window, origin) {
				continue
			}
			if role == domain.CrewRolePilot {
				pool.Pilots = append(pool.Pilots, m)
			} else {
				pool.Attendants = append(pool.Attendants, m)
			}
		}
	}
	return pool, nil
}

func anyOverlap(legs []Leg, window Interval) bool {
	for _, l := range legs {
		if l.Overlaps(window) {
			return true
		}
	}
	return false
}

// crewFree decides one member's availability for a departure window at
// origin. A new hire with no history is anywhere we need them. Otherwise
// three conditions must hold:
//
// Grounded: no leg overlaps the window. Status labels are not trusted
// here; the sweep marks flights Completed at departure, so a Completed leg
// can still be in the air.
//
// Location: the member's last known position at window.Start (the latest
// leg already landed by then, completed or still marked Active/Full) must
// be at the origin airport.
//
// Forward freedom: the member's next scheduled departure after that
// position, if any, must not fall inside the window.
func crewFree(legs []Leg, window Interval, origin string) bool {
	if len(legs) == 0 {
		return true
	}
	if anyOverlap(legs, window) {
		return false
	}

	posTime, ok := positionAt(legs, window.Start, origin)
	if !ok {
		return false
	}

	for _, l := range legs {
		if !l.Scheduled() || !l.Start.After(posTime) {
			continue
		}
		// legs are ordered by departure, so this is the next itinerary entry
		return !l.Start.Before(window.End)
	}
	return true
}

// positionAt finds the member's last known position as of time at: the leg
// with the latest arrival among those already landed. Returns that arrival
// instant when it places the member at origin.
func positionAt(legs []Leg, at time.Time, origin string) (time.Time, bool) {
	var last *Leg
	for i := range legs {
		l := &legs[i]
		if l.End.After(at) {
			continue
		}
		if last == nil || l.End.After(last.End) {
			last = l
		}
	}
	if last == nil {
		// every assignment lands after the departure; the member cannot be
		// positioned at the origin in time
		return time.Time{}, false
	}
	if last.Destination != origin {
		return time.Time{}, false
	}
	return last.End, true
}

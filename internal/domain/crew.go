package domain

type CrewRole string

const (
	CrewRolePilot     CrewRole = "Pilot"
	CrewRoleAttendant CrewRole = "FlightAttendant"
)

type CrewMember struct {
	ID              int64
	FullName        string
	Role            CrewRole
	LongHaulTrained bool
}

// CrewAssignment links a crew member to a flight. For any crew member, no
// two assigned non-canceled flights may have overlapping intervals.
type CrewAssignment struct {
	CrewID   int64
	FlightID int64
}

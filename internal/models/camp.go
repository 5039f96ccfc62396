package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for camp dates.
const DateLayout = "2006-01-02"

// Camp is an event owned by a staff member with an attendee and a committee slot pool.
type Camp struct {
	ID             string
	Name           string
	StaffID        string
	StartDate      time.Time
	EndDate        time.Time
	ClosingDate    time.Time
	Faculty        Faculty
	Location       string
	TotalSlots     int
	CommitteeSlots int
	Description    string
	Visible        bool

	AttendeeIDs  []string
	CommitteeIDs []string
	WithdrawnIDs []string
}

// CampRole labels how a student takes part in a camp.
type CampRole string

const (
	CampRoleAttendee  CampRole = "ATTENDEE"
	CampRoleCommittee CampRole = "COMMITTEE"
)

// GetID returns the camp id.
func (c Camp) GetID() string { return c.ID }

// Clone returns a copy that shares no slices with c.
func (c Camp) Clone() Camp {
	c.AttendeeIDs = cloneIDs(c.AttendeeIDs)
	c.CommitteeIDs = cloneIDs(c.CommitteeIDs)
	c.WithdrawnIDs = cloneIDs(c.WithdrawnIDs)
	return c
}

// AttendeeCapacity is the size of the attendee pool.
func (c Camp) AttendeeCapacity() int { return c.TotalSlots - c.CommitteeSlots }

// RemainingAttendeeSlots is the number of free attendee places.
func (c Camp) RemainingAttendeeSlots() int { return c.AttendeeCapacity() - len(c.AttendeeIDs) }

// RemainingCommitteeSlots is the number of free committee places.
func (c Camp) RemainingCommitteeSlots() int { return c.CommitteeSlots - len(c.CommitteeIDs) }

// RegistrationCount is the number of students currently registered in either pool.
func (c Camp) RegistrationCount() int { return len(c.AttendeeIDs) + len(c.CommitteeIDs) }

// RoleOf returns the role the student holds in this camp, if any.
func (c Camp) RoleOf(studentID string) (CampRole, bool) {
	if containsID(c.CommitteeIDs, studentID) {
		return CampRoleCommittee, true
	}
	if containsID(c.AttendeeIDs, studentID) {
		return CampRoleAttendee, true
	}
	return "", false
}

// HasWithdrawn reports whether the student previously withdrew from this camp.
func (c Camp) HasWithdrawn(studentID string) bool { return containsID(c.WithdrawnIDs, studentID) }

// OpenTo reports whether students of the faculty may see and join the camp.
func (c Camp) OpenTo(f Faculty) bool { return c.Faculty == FacultyNTU || c.Faculty == f }

// RegistrationClosed reports whether today is past the closing date.
func (c Camp) RegistrationClosed(now time.Time) bool { return DateOf(now).After(c.ClosingDate) }

// Started reports whether the camp's first day has been reached.
func (c Camp) Started(now time.Time) bool { return !DateOf(now).Before(c.StartDate) }

// Overlaps reports whether the two camps share at least one day.
func (c Camp) Overlaps(other Camp) bool {
	return !c.EndDate.Before(other.StartDate) && !other.EndDate.Before(c.StartDate)
}

// Validate checks the camp invariants.
func (c Camp) Validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("camp name is required")
	case c.StaffID == "":
		return fmt.Errorf("camp owner is required")
	case !c.Faculty.Valid():
		return fmt.Errorf("unknown faculty %q", c.Faculty)
	case c.TotalSlots < 0 || c.CommitteeSlots < 0:
		return fmt.Errorf("slot counts must not be negative")
	case c.CommitteeSlots > c.TotalSlots:
		return fmt.Errorf("committee slots (%d) exceed total slots (%d)", c.CommitteeSlots, c.TotalSlots)
	case c.StartDate.IsZero() || c.EndDate.IsZero() || c.ClosingDate.IsZero():
		return fmt.Errorf("camp dates are required")
	case c.EndDate.Before(c.StartDate):
		return fmt.Errorf("end date is before start date")
	case c.ClosingDate.After(c.StartDate):
		return fmt.Errorf("registration closes after the camp starts")
	case len(c.CommitteeIDs) > c.CommitteeSlots:
		return fmt.Errorf("committee slots (%d) below current committee size (%d)", c.CommitteeSlots, len(c.CommitteeIDs))
	case len(c.AttendeeIDs) > c.AttendeeCapacity():
		return fmt.Errorf("attendee slots (%d) below current attendee count (%d)", c.AttendeeCapacity(), len(c.AttendeeIDs))
	}
	return nil
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a DateLayout string.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}

// AddID returns ids with id appended.
func AddID(ids []string, id string) []string {
	return append(cloneIDs(ids), id)
}

// RemoveID returns ids without id; an emptied list is nil.
func RemoveID(ids []string, id string) []string {
	var out []string
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func cloneIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

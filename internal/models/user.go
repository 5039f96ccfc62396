package models

import "fmt"

// UserRole tags the User variant.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleStaff   UserRole = "STAFF"
)

// Valid reports whether the role is one of the defined variants.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleStaff
}

// Faculty identifies a school. FacultyNTU doubles as the "open to all" camp scope.
type Faculty string

const (
	FacultyADM  Faculty = "ADM"
	FacultyEEE  Faculty = "EEE"
	FacultyNBS  Faculty = "NBS"
	FacultySCSE Faculty = "SCSE"
	FacultySSS  Faculty = "SSS"
	FacultyNTU  Faculty = "NTU"
)

// Faculties lists every assignable faculty.
var Faculties = []Faculty{FacultyADM, FacultyEEE, FacultyNBS, FacultySCSE, FacultySSS, FacultyNTU}

// Valid reports whether f is a known faculty.
func (f Faculty) Valid() bool {
	for _, known := range Faculties {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFaculty converts a stored or typed code into a Faculty.
func ParseFaculty(raw string) (Faculty, error) {
	f := Faculty(raw)
	if !f.Valid() {
		return "", fmt.Errorf("unknown faculty %q", raw)
	}
	return f, nil
}

// User is a student or a staff member, discriminated by Role.
// CommitteeCampID and Points are only meaningful for students.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Role            UserRole
	Faculty         Faculty
	CommitteeCampID string
	Points          int
}

// GetID returns the user id.
func (u User) GetID() string { return u.ID }

// Clone returns an independent copy.
func (u User) Clone() User { return u }

// IsStudent reports whether the user is the student variant.
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// IsStaff reports whether the user is the staff variant.
func (u User) IsStaff() bool { return u.Role == RoleStaff }

// IsCommitteeMember reports whether the student currently sits on a camp committee.
func (u User) IsCommitteeMember() bool {
	return u.Role == RoleStudent && u.CommitteeCampID != ""
}

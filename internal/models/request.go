package models

import "time"

// RequestKind tags the Request variant.
type RequestKind string

const (
	RequestKindEnquiry    RequestKind = "ENQUIRY"
	RequestKindSuggestion RequestKind = "SUGGESTION"
)

// RequestStatus is the approval state of a request. PENDING is the only non-terminal state.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusDenied   RequestStatus = "DENIED"
)

// Terminal reports whether no transition may leave the status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusDenied
}

// Request is an enquiry or a suggestion sent by a student about a camp.
type Request struct {
	ID        string
	Kind      RequestKind
	CampID    string
	SenderID  string
	ReplierID string
	Status    RequestStatus

	// Enquiry
	Question string
	Answer   string

	// Suggestion
	Proposal CampEdit
}

// RequestPayload is the student-authored part of a request.
type RequestPayload struct {
	Kind     RequestKind
	Question string
	Proposal CampEdit
}

// GetID returns the request id.
func (r Request) GetID() string { return r.ID }

// Clone returns a copy that shares no pointers with r.
func (r Request) Clone() Request {
	r.Proposal = r.Proposal.Clone()
	return r
}

// IsPending reports whether the request can still be edited or answered.
func (r Request) IsPending() bool { return r.Status == RequestStatusPending }

// CampEdit holds one optional value per mutable camp field. A nil field is left untouched.
type CampEdit struct {
	Name           *string
	StartDate      *time.Time
	EndDate        *time.Time
	ClosingDate    *time.Time
	Faculty        *Faculty
	Location       *string
	TotalSlots     *int
	CommitteeSlots *int
	Description    *string
}

// IsEmpty reports whether no field is set.
func (e CampEdit) IsEmpty() bool {
	return e.Name == nil && e.StartDate == nil && e.EndDate == nil && e.ClosingDate == nil &&
		e.Faculty == nil && e.Location == nil && e.TotalSlots == nil && e.CommitteeSlots == nil &&
		e.Description == nil
}

// ApplyTo returns camp with every set field replaced.
func (e CampEdit) ApplyTo(camp Camp) Camp {
	out := camp.Clone()
	if e.Name != nil {
		out.Name = *e.Name
	}
	if e.StartDate != nil {
		out.StartDate = DateOf(*e.StartDate)
	}
	if e.EndDate != nil {
		out.EndDate = DateOf(*e.EndDate)
	}
	if e.ClosingDate != nil {
		out.ClosingDate = DateOf(*e.ClosingDate)
	}
	if e.Faculty != nil {
		out.Faculty = *e.Faculty
	}
	if e.Location != nil {
		out.Location = *e.Location
	}
	if e.TotalSlots != nil {
		out.TotalSlots = *e.TotalSlots
	}
	if e.CommitteeSlots != nil {
		out.CommitteeSlots = *e.CommitteeSlots
	}
	if e.Description != nil {
		out.Description = *e.Description
	}
	return out
}

// Clone returns a deep copy.
func (e CampEdit) Clone() CampEdit {
	return CampEdit{
		Name:           clonePtr(e.Name),
		StartDate:      clonePtr(e.StartDate),
		EndDate:        clonePtr(e.EndDate),
		ClosingDate:    clonePtr(e.ClosingDate),
		Faculty:        clonePtr(e.Faculty),
		Location:       clonePtr(e.Location),
		TotalSlots:     clonePtr(e.TotalSlots),
		CommitteeSlots: clonePtr(e.CommitteeSlots),
		Description:    clonePtr(e.Description),
	}
}

// Ptr returns a pointer to v; handy when building a CampEdit.
func Ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

package models

import (
	"fmt"
	"strings"
)

const splitter = "================================================================"

// Displayable is what an external renderer needs to print an entity.
type Displayable interface {
	Splitter() string
	DisplayString() string
}

// Splitter returns the record separator.
func (u User) Splitter() string { return splitter }

// DisplayString renders the user over several lines.
func (u User) DisplayString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:       %s\n", u.ID)
	fmt.Fprintf(&b, "Name:     %s\n", u.Name)
	fmt.Fprintf(&b, "Email:    %s\n", u.Email)
	fmt.Fprintf(&b, "Faculty:  %s\n", u.Faculty)
	if u.IsStudent() {
		committee := "-"
		if u.CommitteeCampID != "" {
			committee = u.CommitteeCampID
		}
		fmt.Fprintf(&b, "Committee: %s\n", committee)
		fmt.Fprintf(&b, "Points:   %d\n", u.Points)
	}
	return b.String()
}

// Splitter returns the record separator.
func (c Camp) Splitter() string { return splitter }

// DisplayString renders the camp over several lines.
func (c Camp) DisplayString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Camp ID:          %s\n", c.ID)
	fmt.Fprintf(&b, "Name:             %s\n", c.Name)
	fmt.Fprintf(&b, "Dates:            %s to %s\n", c.StartDate.Format(DateLayout), c.EndDate.Format(DateLayout))
	fmt.Fprintf(&b, "Registration by:  %s\n", c.ClosingDate.Format(DateLayout))
	fmt.Fprintf(&b, "Open to:          %s\n", c.Faculty)
	fmt.Fprintf(&b, "Location:         %s\n", c.Location)
	fmt.Fprintf(&b, "Attendee slots:   %d/%d left\n", c.RemainingAttendeeSlots(), c.AttendeeCapacity())
	fmt.Fprintf(&b, "Committee slots:  %d/%d left\n", c.RemainingCommitteeSlots(), c.CommitteeSlots)
	fmt.Fprintf(&b, "Staff in charge:  %s\n", c.StaffID)
	fmt.Fprintf(&b, "Visible:          %t\n", c.Visible)
	fmt.Fprintf(&b, "Description:      %s\n", c.Description)
	return b.String()
}

// DisplayStringWithLabel renders the camp prefixed by an annotation such as the viewer's role.
func (c Camp) DisplayStringWithLabel(label string) string {
	return fmt.Sprintf("Registered as:    %s\n%s", label, c.DisplayString())
}

// Splitter returns the record separator.
func (r Request) Splitter() string { return splitter }

// DisplayString renders the request over several lines.
func (r Request) DisplayString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request ID: %s (%s)\n", r.ID, strings.ToLower(string(r.Kind)))
	fmt.Fprintf(&b, "Camp:       %s\n", r.CampID)
	fmt.Fprintf(&b, "From:       %s\n", r.SenderID)
	fmt.Fprintf(&b, "Status:     %s\n", r.Status)
	if r.ReplierID != "" {
		fmt.Fprintf(&b, "Handled by: %s\n", r.ReplierID)
	}
	switch r.Kind {
	case RequestKindEnquiry:
		fmt.Fprintf(&b, "Question:   %s\n", r.Question)
		if r.Answer != "" {
			fmt.Fprintf(&b, "Answer:     %s\n", r.Answer)
		}
	case RequestKindSuggestion:
		b.WriteString(r.Proposal.DisplayString())
	}
	return b.String()
}

// DisplayString lists the set fields of the edit.
func (e CampEdit) DisplayString() string {
	var b strings.Builder
	line := func(label, value string) { fmt.Fprintf(&b, "  %-16s%s\n", label+":", value) }
	b.WriteString("Proposed changes:\n")
	if e.Name != nil {
		line("Name", *e.Name)
	}
	if e.StartDate != nil {
		line("Start date", e.StartDate.Format(DateLayout))
	}
	if e.EndDate != nil {
		line("End date", e.EndDate.Format(DateLayout))
	}
	if e.ClosingDate != nil {
		line("Closing date", e.ClosingDate.Format(DateLayout))
	}
	if e.Faculty != nil {
		line("Open to", string(*e.Faculty))
	}
	if e.Location != nil {
		line("Location", *e.Location)
	}
	if e.TotalSlots != nil {
		line("Total slots", fmt.Sprint(*e.TotalSlots))
	}
	if e.CommitteeSlots != nil {
		line("Committee slots", fmt.Sprint(*e.CommitteeSlots))
	}
	if e.Description != nil {
		line("Description", *e.Description)
	}
	return b.String()
}

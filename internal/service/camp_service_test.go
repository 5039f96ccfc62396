package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cams/internal/models"
	appErrors "github.com/noah-isme/cams/pkg/errors"
)

func TestCampServiceCreateCamp(t *testing.T) {
	f := newFixture(t)

	camp, err := f.campSvc.CreateCamp(f.ctx, f.hukumar, campRequest("Orientation"))
	require.NoError(t, err)
	assert.Equal(t, "CAMP1", camp.ID)
	assert.Equal(t, "HUKUMAR", camp.StaffID)
	assert.False(t, camp.Visible)

	second, err := f.campSvc.CreateCamp(f.ctx, f.hukumar, campRequest("Hackathon"))
	require.NoError(t, err)
	assert.Equal(t, "CAMP2", second.ID)
	assert.Len(t, f.campSvc.ListByStaff(f.ctx, "HUKUMAR"), 2)
}

func TestCampServiceCreateCampValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		staff  models.User
		mutate func(*CreateCampRequest)
	}{
		{"empty name", f.hukumar, func(r *CreateCampRequest) { r.Name = "" }},
		{"unknown faculty", f.hukumar, func(r *CreateCampRequest) { r.Faculty = "MED" }},
		{"negative slots", f.hukumar, func(r *CreateCampRequest) { r.TotalSlots = -1 }},
		{"committee above total", f.hukumar, func(r *CreateCampRequest) { r.CommitteeSlots = 11 }},
		{"closing after start", f.hukumar, func(r *CreateCampRequest) { r.ClosingDate = mustDate("2026-12-02") }},
		{"end before start", f.hukumar, func(r *CreateCampRequest) { r.EndDate = mustDate("2026-11-30") }},
		{"missing dates", f.hukumar, func(r *CreateCampRequest) { r.StartDate = time.Time{} }},
		{"owner is not staff", f.s1, func(r *CreateCampRequest) {}},
		{"owner does not exist", models.User{ID: "GHOST", Role: models.RoleStaff}, func(r *CreateCampRequest) {}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := campRequest("Orientation")
			tc.mutate(&req)
			_, err := f.campSvc.CreateCamp(f.ctx, tc.staff, req)
			assert.True(t, errors.Is(err, appErrors.ErrValidation), "got %v", err)
		})
	}
	assert.Empty(t, f.campSvc.ListAll(f.ctx))
}

// Scenario: C1 holds two places, one of them committee.
func TestCampServiceRegistrationScenario(t *testing.T) {
	f := newFixture(t)
	req := campRequest("C1")
	req.TotalSlots, req.CommitteeSlots = 2, 1
	camp := f.openCamp(t, req)

	camp, err := f.campSvc.RegisterStudent(f.ctx, f.s1, camp.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, camp.AttendeeIDs)

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s2, camp.ID, false)
	assert.True(t, errors.Is(err, appErrors.ErrCapacity))

	camp, err = f.campSvc.RegisterStudent(f.ctx, f.s2, camp.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, camp.CommitteeIDs)
	assert.Equal(t, camp.ID, f.student(t, "S2").CommitteeCampID)

	suggestion, err := f.requestSvc.Submit(f.ctx, f.s1, camp.ID, models.RequestPayload{
		Kind:     models.RequestKindSuggestion,
		Proposal: models.CampEdit{Location: models.Ptr("Block 5")},
	})
	require.NoError(t, err)

	before := f.camp(t, camp.ID)
	_, err = f.requestSvc.Respond(f.ctx, f.hukumar, suggestion.ID, models.RequestStatusApproved, "")
	require.NoError(t, err)

	after := f.camp(t, camp.ID)
	assert.Equal(t, "Block 5", after.Location)
	after.Location = before.Location
	assert.Equal(t, before, after)
}

func TestCampServiceRegisterErrors(t *testing.T) {
	f := newFixture(t)
	open := f.openCamp(t, campRequest("Open"))

	hidden, err := f.campSvc.CreateCamp(f.ctx, f.hukumar, campRequest("Hidden"))
	require.NoError(t, err)

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, "CAMP99", false)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, hidden.ID, false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "invisible camp")

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s3, open.ID, false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "faculty mismatch")

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, open.ID, false)
	require.NoError(t, err)
	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, open.ID, true)
	assert.True(t, errors.Is(err, appErrors.ErrState), "already registered")

	f.today = mustDate("2026-11-21")
	_, err = f.campSvc.RegisterStudent(f.ctx, f.s2, open.ID, false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "registration closed")

	f.today = mustDate("2026-11-20")
	_, err = f.campSvc.RegisterStudent(f.ctx, f.s2, open.ID, false)
	assert.NoError(t, err, "closing day is still open")
}

func TestCampServiceOneCommitteeCamp(t *testing.T) {
	f := newFixture(t)
	first := f.openCamp(t, campRequest("First"))

	later := campRequest("Later")
	later.StartDate, later.EndDate = mustDate("2027-01-10"), mustDate("2027-01-12")
	second := f.openCamp(t, later)

	_, err := f.campSvc.RegisterStudent(f.ctx, f.s1, first.ID, true)
	require.NoError(t, err)

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, second.ID, true)
	assert.True(t, errors.Is(err, appErrors.ErrState))
	assert.Empty(t, f.camp(t, second.ID).CommitteeIDs)

	// attending another camp is still allowed
	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, second.ID, false)
	require.NoError(t, err)

	registered := f.campSvc.RegisteredCamps(f.ctx, f.s1)
	require.Len(t, registered, 2)
	assert.Equal(t, models.CampRoleCommittee, registered[0].Role)
	assert.Equal(t, models.CampRoleAttendee, registered[1].Role)
}

func TestCampServiceDateClash(t *testing.T) {
	f := newFixture(t)
	first := f.openCamp(t, campRequest("First"))

	overlapping := campRequest("Overlapping")
	overlapping.StartDate, overlapping.EndDate = mustDate("2026-12-03"), mustDate("2026-12-05")
	second := f.openCamp(t, overlapping)

	_, err := f.campSvc.RegisterStudent(f.ctx, f.s1, first.ID, false)
	require.NoError(t, err)
	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, second.ID, false)
	assert.True(t, errors.Is(err, appErrors.ErrState))
}

func TestCampServiceWithdraw(t *testing.T) {
	f := newFixture(t)
	camp := f.openCamp(t, campRequest("Orientation"))

	_, err := f.campSvc.Withdraw(f.ctx, f.s1, camp.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, camp.ID, false)
	require.NoError(t, err)
	_, err = f.campSvc.RegisterStudent(f.ctx, f.s2, camp.ID, true)
	require.NoError(t, err)

	updated, err := f.campSvc.Withdraw(f.ctx, f.s1, camp.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.AttendeeIDs)
	assert.Equal(t, []string{"S1"}, updated.WithdrawnIDs)
	assert.Equal(t, 8, updated.RemainingAttendeeSlots())

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, camp.ID, false)
	assert.True(t, errors.Is(err, appErrors.ErrState), "withdrawn students cannot come back")

	_, err = f.campSvc.Withdraw(f.ctx, f.s2, camp.ID)
	assert.True(t, errors.Is(err, appErrors.ErrState), "committee cannot withdraw")
}

func TestCampServiceEditCamp(t *testing.T) {
	f := newFixture(t)
	camp := f.openCamp(t, campRequest("Orientation"))
	_, err := f.campSvc.RegisterStudent(f.ctx, f.s1, camp.ID, true)
	require.NoError(t, err)

	_, err = f.campSvc.EditCamp(f.ctx, f.ourin, camp.ID, models.CampEdit{Name: models.Ptr("Mine")})
	assert.True(t, errors.Is(err, appErrors.ErrAuthorization))

	_, err = f.campSvc.EditCamp(f.ctx, f.hukumar, "CAMP9", models.CampEdit{Name: models.Ptr("Mine")})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.campSvc.EditCamp(f.ctx, f.hukumar, camp.ID, models.CampEdit{CommitteeSlots: models.Ptr(0)})
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "committee pool below current committee")

	_, err = f.campSvc.EditCamp(f.ctx, f.hukumar, camp.ID, models.CampEdit{Faculty: models.Ptr(models.FacultyADM)})
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "participant outside the new faculty")

	_, err = f.campSvc.EditCamp(f.ctx, f.hukumar, camp.ID, models.CampEdit{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	edited, err := f.campSvc.EditCamp(f.ctx, f.hukumar, camp.ID, models.CampEdit{
		Name:       models.Ptr("Orientation 2026"),
		TotalSlots: models.Ptr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, "Orientation 2026", edited.Name)
	assert.Equal(t, 20, edited.TotalSlots)
	assert.Equal(t, "NS Hall", edited.Location)
	assert.Equal(t, edited, f.camp(t, camp.ID))

	f.today = mustDate("2026-12-01")
	_, err = f.campSvc.EditCamp(f.ctx, f.hukumar, camp.ID, models.CampEdit{Name: models.Ptr("Late")})
	assert.True(t, errors.Is(err, appErrors.ErrState))
}

func TestCampServiceRejectsUnsetLiteral(t *testing.T) {
	f := newFixture(t)
	req := campRequest("EMPTY")
	_, err := f.campSvc.CreateCamp(f.ctx, f.hukumar, req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, f.campSvc.ListAll(f.ctx))

	camp := f.openCamp(t, campRequest("Orientation"))
	_, err = f.campSvc.EditCamp(f.ctx, f.hukumar, camp.ID, models.CampEdit{Description: models.Ptr("EMPTY")})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, camp, f.camp(t, camp.ID))
}

func TestCampServiceToggleAndDelete(t *testing.T) {
	f := newFixture(t)
	camp := f.openCamp(t, campRequest("Orientation"))
	spare, err := f.campSvc.CreateCamp(f.ctx, f.hukumar, campRequest("Spare"))
	require.NoError(t, err)

	_, err = f.campSvc.ToggleVisibility(f.ctx, f.ourin, camp.ID)
	assert.True(t, errors.Is(err, appErrors.ErrAuthorization))

	_, err = f.campSvc.RegisterStudent(f.ctx, f.s1, camp.ID, false)
	require.NoError(t, err)
	err = f.campSvc.DeleteCamp(f.ctx, f.hukumar, camp.ID)
	assert.True(t, errors.Is(err, appErrors.ErrState))

	hidden, err := f.campSvc.ToggleVisibility(f.ctx, f.hukumar, camp.ID)
	require.NoError(t, err)
	assert.False(t, hidden.Visible)
	assert.Equal(t, []string{f.s1.ID}, hidden.AttendeeIDs)
	_, err = f.campSvc.RegisterStudent(f.ctx, f.s2, camp.ID, false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Empty(t, f.campSvc.ListVisible(f.ctx))
	assert.Len(t, f.campSvc.ListInvisible(f.ctx), 2)

	spare, err = f.campSvc.ToggleVisibility(f.ctx, f.hukumar, spare.ID)
	require.NoError(t, err)
	enquiry, err := f.requestSvc.Submit(f.ctx, f.s2, spare.ID, models.RequestPayload{Kind: models.RequestKindEnquiry, Question: "Is food provided?"})
	require.NoError(t, err)

	err = f.campSvc.DeleteCamp(f.ctx, f.ourin, spare.ID)
	assert.True(t, errors.Is(err, appErrors.ErrAuthorization))
	require.NoError(t, f.campSvc.DeleteCamp(f.ctx, f.hukumar, spare.ID))

	_, err = f.campSvc.Get(f.ctx, spare.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = f.requests.Read(f.ctx, enquiry.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound), "requests go with their camp")
}

func TestCampServiceListVisibleCampsFor(t *testing.T) {
	f := newFixture(t)
	scse := f.openCamp(t, campRequest("SCSE only"))

	everyone := campRequest("Everyone")
	everyone.Faculty = models.FacultyNTU
	ntu := f.openCamp(t, everyone)

	_, err := f.campSvc.CreateCamp(f.ctx, f.hukumar, campRequest("Hidden"))
	require.NoError(t, err)

	ids := func(camps []models.Camp) []string {
		out := make([]string, 0, len(camps))
		for _, c := range camps {
			out = append(out, c.ID)
		}
		return out
	}
	assert.Equal(t, []string{scse.ID, ntu.ID}, ids(f.campSvc.ListVisibleCampsFor(f.ctx, f.s1)))
	assert.Equal(t, []string{ntu.ID}, ids(f.campSvc.ListVisibleCampsFor(f.ctx, f.s3)))

	f.today = mustDate("2026-11-25")
	assert.Empty(t, f.campSvc.ListVisibleCampsFor(f.ctx, f.s1))
}

func TestSortCamps(t *testing.T) {
	camps := []models.Camp{
		{ID: "CAMP10", Name: "beta", Location: "Hall B", StartDate: mustDate("2026-12-03"), ClosingDate: mustDate("2026-11-01")},
		{ID: "CAMP2", Name: "Alpha", Location: "hall a", StartDate: mustDate("2026-12-01"), ClosingDate: mustDate("2026-11-05")},
		{ID: "CAMP9", Name: "Gamma", Location: "Annex", StartDate: mustDate("2026-12-02"), ClosingDate: mustDate("2026-11-03")},
	}
	order := func(camps []models.Camp) []string {
		out := make([]string, 0, len(camps))
		for _, c := range camps {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []string{"CAMP2", "CAMP9", "CAMP10"}, order(SortCamps(camps, SortByID)))
	assert.Equal(t, []string{"CAMP2", "CAMP10", "CAMP9"}, order(SortCamps(camps, SortByName)))
	assert.Equal(t, []string{"CAMP2", "CAMP9", "CAMP10"}, order(SortCamps(camps, SortByDate)))
	assert.Equal(t, []string{"CAMP10", "CAMP9", "CAMP2"}, order(SortCamps(camps, SortByClosingDate)))
	assert.Equal(t, []string{"CAMP9", "CAMP2", "CAMP10"}, order(SortCamps(camps, SortByLocation)))
	assert.Equal(t, "CAMP10", camps[0].ID, "input is left untouched")

	key, err := ParseCampSortKey(" Name ")
	require.NoError(t, err)
	assert.Equal(t, SortByName, key)
	key, err = ParseCampSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByID, key)
	_, err = ParseCampSortKey("size")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

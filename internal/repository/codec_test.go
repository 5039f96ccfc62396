package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/models"
	appErrors "github.com/noah-isme/cams/pkg/errors"
	"github.com/noah-isme/cams/pkg/storage"
)

func TestUserRepositoriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	students := NewStudentRepository(store, zap.NewNop(), nil)
	staff := NewStaffRepository(store, zap.NewNop(), nil)

	student := models.User{ID: "YCHERN", Name: "Chern", Email: "ychern@e.ntu.edu.sg", PasswordHash: "$2a$hash", Role: models.RoleStudent, Faculty: models.FacultySCSE, CommitteeCampID: "CAMP2", Points: 3}
	plain := models.User{ID: "KOH1", Name: "Koh", Email: "koh1@e.ntu.edu.sg", PasswordHash: "$2a$hash", Role: models.RoleStudent, Faculty: models.FacultyADM}
	member := models.User{ID: "HUKUMAR", Name: "Kumar", Email: "hukumar@ntu.edu.sg", PasswordHash: "$2a$hash", Role: models.RoleStaff, Faculty: models.FacultySCSE}

	for _, u := range []models.User{student, plain} {
		_, err := students.Create(ctx, u)
		require.NoError(t, err)
	}
	_, err = staff.Create(ctx, member)
	require.NoError(t, err)

	raw, err := store.Read(StudentFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "ID,Name,Email,Faculty,PasswordHash,CommitteeCampID,Points\n"))
	assert.Contains(t, string(raw), "KOH1,Koh,koh1@e.ntu.edu.sg,ADM,$2a$hash,EMPTY,0")

	reloadedStudents := NewStudentRepository(store, zap.NewNop(), nil)
	reloadedStaff := NewStaffRepository(store, zap.NewNop(), nil)
	require.NoError(t, reloadedStudents.Load(ctx))
	require.NoError(t, reloadedStaff.Load(ctx))

	for _, want := range []models.User{student, plain} {
		got, err := reloadedStudents.Read(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := reloadedStaff.Read(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, member, got)
}

func TestUserRepositoryRejectsWrongVariant(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	staff := NewStaffRepository(store, zap.NewNop(), nil)

	_, err = staff.Create(context.Background(), models.User{ID: "YCHERN", Role: models.RoleStudent, Faculty: models.FacultySCSE})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.True(t, staff.IsEmpty())
}

func TestRequestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewRequestRepository(store, zap.NewNop(), nil)

	enquiry := models.Request{ID: "ENQ1", Kind: models.RequestKindEnquiry, CampID: "CAMP1", SenderID: "YCHERN", Status: models.RequestStatusPending, Question: "Is lunch provided?"}
	answered := models.Request{ID: "ENQ2", Kind: models.RequestKindEnquiry, CampID: "CAMP1", SenderID: "YCHERN", ReplierID: "HUKUMAR", Status: models.RequestStatusApproved, Question: "Dress code?", Answer: "Smart casual"}
	start := date("2026-12-02")
	suggestion := models.Request{
		ID: "SUG1", Kind: models.RequestKindSuggestion, CampID: "CAMP1", SenderID: "YCHERN", Status: models.RequestStatusDenied, ReplierID: "HUKUMAR",
		Proposal: models.CampEdit{
			Name:           models.Ptr("Orientation, revised"),
			StartDate:      &start,
			Faculty:        models.Ptr(models.FacultyNTU),
			TotalSlots:     models.Ptr(0),
			CommitteeSlots: models.Ptr(4),
		},
	}
	for _, r := range []models.Request{enquiry, answered, suggestion} {
		_, err := repo.Create(ctx, r)
		require.NoError(t, err)
	}

	raw, err := store.Read(RequestFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ENQ1,ENQUIRY,CAMP1,YCHERN,EMPTY,PENDING,Is lunch provided?,EMPTY,EMPTY,EMPTY,EMPTY,EMPTY,NA,EMPTY,-1,-1,EMPTY", lines[1])

	reloaded := NewRequestRepository(store, zap.NewNop(), nil)
	require.NoError(t, reloaded.Load(ctx))
	for _, want := range []models.Request{enquiry, answered, suggestion} {
		got, err := reloaded.Read(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRequestRepositoryRejectsNegativeProposal(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewRequestRepository(store, zap.NewNop(), nil)

	_, err = repo.Create(context.Background(), models.Request{
		ID: "SUG1", Kind: models.RequestKindSuggestion, Status: models.RequestStatusPending,
		Proposal: models.CampEdit{TotalSlots: models.Ptr(-1)},
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestEncodeListRejectsSeparator(t *testing.T) {
	_, err := encodeList([]string{"a;b"})
	assert.Error(t, err)
	assert.Nil(t, decodeList(SentinelString))
	assert.Equal(t, []string{"a", "b"}, decodeList("a;b"))
}

func TestCodecsRejectUnsetLiteral(t *testing.T) {
	ctx := context.Background()
	camps, store := newTempCampRepo(t)

	named := sampleCamp("CAMP1")
	named.Name = SentinelString
	_, err := camps.Create(ctx, named)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.True(t, camps.IsEmpty())

	_, err = camps.Create(ctx, sampleCamp("CAMP1"))
	require.NoError(t, err)
	described := sampleCamp("CAMP1")
	described.Description = SentinelString
	assert.True(t, errors.Is(camps.Update(ctx, described), appErrors.ErrValidation))
	stored, err := camps.Read(ctx, "CAMP1")
	require.NoError(t, err)
	assert.Equal(t, sampleCamp("CAMP1"), stored)

	requests := NewRequestRepository(store, zap.NewNop(), nil)
	_, err = requests.Create(ctx, models.Request{
		ID: "ENQ1", Kind: models.RequestKindEnquiry, Status: models.RequestStatusPending,
		CampID: "CAMP1", SenderID: "S1", Question: SentinelString,
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = requests.Create(ctx, models.Request{
		ID: "SUG1", Kind: models.RequestKindSuggestion, Status: models.RequestStatusPending,
		CampID: "CAMP1", SenderID: "S1", Proposal: models.CampEdit{Location: models.Ptr(SentinelString)},
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.True(t, requests.IsEmpty())
}

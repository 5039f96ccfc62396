package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/models"
	"github.com/noah-isme/cams/internal/repository"
	"github.com/noah-isme/cams/pkg/storage"
)

type fixture struct {
	ctx      context.Context
	store    *storage.LocalStorage
	students *repository.UserRepository
	staff    *repository.UserRepository
	camps    *repository.CampRepository
	requests *repository.RequestRepository
	metrics  *MetricsService

	campSvc    *CampService
	requestSvc *RequestService
	today      time.Time

	hukumar models.User
	ourin   models.User
	s1      models.User
	s2      models.User
	s3      models.User
}

func mustDate(raw string) time.Time {
	d, err := models.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		ctx:     context.Background(),
		store:   store,
		metrics: NewMetricsService(),
		today:   mustDate("2026-11-01"),
	}
	f.students = repository.NewStudentRepository(store, zap.NewNop(), f.metrics)
	f.staff = repository.NewStaffRepository(store, zap.NewNop(), f.metrics)
	f.camps = repository.NewCampRepository(store, zap.NewNop(), f.metrics)
	f.requests = repository.NewRequestRepository(store, zap.NewNop(), f.metrics)

	clock := func() time.Time { return f.today }
	ids := repository.NewIDAllocator()
	validate := validator.New()
	f.campSvc = NewCampService(f.camps, f.requests, f.students, f.staff, ids, validate, zap.NewNop()).WithClock(clock)
	f.requestSvc = NewRequestService(f.requests, f.camps, f.students, f.campSvc, ids, validate, zap.NewNop()).WithClock(clock)

	f.hukumar = f.addUser(t, models.User{ID: "HUKUMAR", Name: "Kumar", Role: models.RoleStaff, Faculty: models.FacultySCSE})
	f.ourin = f.addUser(t, models.User{ID: "OURIN", Name: "Ourin", Role: models.RoleStaff, Faculty: models.FacultyADM})
	f.s1 = f.addUser(t, models.User{ID: "S1", Name: "Ann", Role: models.RoleStudent, Faculty: models.FacultySCSE})
	f.s2 = f.addUser(t, models.User{ID: "S2", Name: "Ben", Role: models.RoleStudent, Faculty: models.FacultySCSE})
	f.s3 = f.addUser(t, models.User{ID: "S3", Name: "Cai", Role: models.RoleStudent, Faculty: models.FacultyADM})
	return f
}

func (f *fixture) addUser(t *testing.T, u models.User) models.User {
	t.Helper()
	repo := f.students
	if u.IsStaff() {
		repo = f.staff
	}
	created, err := repo.Create(f.ctx, u)
	require.NoError(t, err)
	return created
}

func (f *fixture) student(t *testing.T, id string) models.User {
	t.Helper()
	u, err := f.students.Read(f.ctx, id)
	require.NoError(t, err)
	return u
}

func (f *fixture) camp(t *testing.T, id string) models.Camp {
	t.Helper()
	c, err := f.camps.Read(f.ctx, id)
	require.NoError(t, err)
	return c
}

func campRequest(name string) CreateCampRequest {
	return CreateCampRequest{
		Name:           name,
		StartDate:      mustDate("2026-12-01"),
		EndDate:        mustDate("2026-12-03"),
		ClosingDate:    mustDate("2026-11-20"),
		Faculty:        models.FacultySCSE,
		Location:       "NS Hall",
		TotalSlots:     10,
		CommitteeSlots: 2,
		Description:    "Freshmen orientation",
	}
}

// openCamp creates a camp owned by HUKUMAR and makes it visible.
func (f *fixture) openCamp(t *testing.T, req CreateCampRequest) models.Camp {
	t.Helper()
	camp, err := f.campSvc.CreateCamp(f.ctx, f.hukumar, req)
	require.NoError(t, err)
	camp, err = f.campSvc.ToggleVisibility(f.ctx, f.hukumar, camp.ID)
	require.NoError(t, err)
	require.True(t, camp.Visible)
	return camp
}

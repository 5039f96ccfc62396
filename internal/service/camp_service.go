package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/models"
	"github.com/noah-isme/cams/internal/repository"
	appErrors "github.com/noah-isme/cams/pkg/errors"
)

type campStore interface {
	Create(ctx context.Context, camp models.Camp) (models.Camp, error)
	Read(ctx context.Context, id string) (models.Camp, error)
	Update(ctx context.Context, camp models.Camp) error
	Delete(ctx context.Context, id string) error
	FindByRules(ctx context.Context, rules ...func(models.Camp) bool) []models.Camp
	IDs() []string
}

type requestStore interface {
	Create(ctx context.Context, request models.Request) (models.Request, error)
	Read(ctx context.Context, id string) (models.Request, error)
	Update(ctx context.Context, request models.Request) error
	Delete(ctx context.Context, id string) error
	FindByRules(ctx context.Context, rules ...func(models.Request) bool) []models.Request
	IDs() []string
}

type idAllocator interface {
	Next(prefix string, inUse []string) (string, error)
}

// CreateCampRequest is the staff-supplied definition of a new camp.
type CreateCampRequest struct {
	Name           string         `validate:"required"`
	StartDate      time.Time
	EndDate        time.Time
	ClosingDate    time.Time
	Faculty        models.Faculty `validate:"required,oneof=ADM EEE NBS SCSE SSS NTU"`
	Location       string         `validate:"required"`
	TotalSlots     int            `validate:"gte=0"`
	CommitteeSlots int            `validate:"gte=0,ltefield=TotalSlots"`
	Description    string
}

// RegisteredCamp pairs a camp with the role a student holds in it.
type RegisteredCamp struct {
	Camp models.Camp
	Role models.CampRole
}

// CampService owns camp lifecycle and registration rules.
type CampService struct {
	camps     campStore
	requests  requestStore
	students  userStore
	staff     userStore
	ids       idAllocator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCampService constructs a CampService.
func NewCampService(camps campStore, requests requestStore, students, staff userStore, ids idAllocator, validate *validator.Validate, logger *zap.Logger) *CampService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CampService{
		camps:     camps,
		requests:  requests,
		students:  students,
		staff:     staff,
		ids:       ids,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the source of "today" used for date rules.
func (s *CampService) WithClock(now func() time.Time) *CampService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateCamp validates the request and stores a new, initially hidden camp owned by staff.
func (s *CampService) CreateCamp(ctx context.Context, staff models.User, req CreateCampRequest) (models.Camp, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Camp{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid camp payload")
	}
	if _, err := s.staff.Read(ctx, staff.ID); err != nil || !staff.IsStaff() {
		return models.Camp{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("camp owner %s is not a staff member", staff.ID))
	}

	camp := models.Camp{
		Name:           strings.TrimSpace(req.Name),
		StaffID:        staff.ID,
		StartDate:      models.DateOf(req.StartDate),
		EndDate:        models.DateOf(req.EndDate),
		ClosingDate:    models.DateOf(req.ClosingDate),
		Faculty:        req.Faculty,
		Location:       strings.TrimSpace(req.Location),
		TotalSlots:     req.TotalSlots,
		CommitteeSlots: req.CommitteeSlots,
		Description:    strings.TrimSpace(req.Description),
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.ClosingDate.IsZero() {
		return models.Camp{}, appErrors.Clone(appErrors.ErrValidation, "camp dates are required")
	}
	if err := camp.Validate(); err != nil {
		return models.Camp{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid camp")
	}

	id, err := s.ids.Next(repository.PrefixCamp, s.camps.IDs())
	if err != nil {
		return models.Camp{}, err
	}
	camp.ID = id
	created, err := s.camps.Create(ctx, camp)
	if err != nil {
		return created, err
	}
	s.logger.Info("camp created", zap.String("camp_id", id), zap.String("staff_id", staff.ID))
	return created, nil
}

// EditCamp applies the set fields of edit to a camp the staff member owns.
func (s *CampService) EditCamp(ctx context.Context, staff models.User, campID string, edit models.CampEdit) (models.Camp, error) {
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return models.Camp{}, err
	}
	if err := checkOwner(staff, camp); err != nil {
		return models.Camp{}, err
	}
	return s.ApplyEdit(ctx, campID, edit)
}

// ApplyEdit merges edit into the stored camp. It is shared by direct edits and
// approved suggestions, so both go through the same checks. The camp must not
// have started and the result must satisfy every camp invariant.
func (s *CampService) ApplyEdit(ctx context.Context, campID string, edit models.CampEdit) (models.Camp, error) {
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return models.Camp{}, err
	}
	if camp.Started(s.now()) {
		return models.Camp{}, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("camp %s has already started", campID))
	}
	if edit.IsEmpty() {
		return models.Camp{}, appErrors.Clone(appErrors.ErrValidation, "no field to change")
	}

	updated := edit.ApplyTo(camp)
	updated.Name = strings.TrimSpace(updated.Name)
	if err := updated.Validate(); err != nil {
		return models.Camp{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid camp edit")
	}
	if edit.Faculty != nil && *edit.Faculty != models.FacultyNTU {
		if err := s.checkFacultyFits(ctx, updated); err != nil {
			return models.Camp{}, err
		}
	}

	if err := s.camps.Update(ctx, updated); err != nil {
		return updated, err
	}
	s.logger.Info("camp edited", zap.String("camp_id", campID))
	return updated, nil
}

// checkFacultyFits rejects narrowing a camp to a faculty some participant is not part of.
func (s *CampService) checkFacultyFits(ctx context.Context, camp models.Camp) error {
	for _, ids := range [][]string{camp.AttendeeIDs, camp.CommitteeIDs} {
		for _, id := range ids {
			student, err := s.students.Read(ctx, id)
			if err != nil {
				continue
			}
			if !camp.OpenTo(student.Faculty) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("participant %s is not from faculty %s", id, camp.Faculty))
			}
		}
	}
	return nil
}

// ToggleVisibility flips whether students can see the camp. Hiding keeps existing
// registrations and stops new ones.
func (s *CampService) ToggleVisibility(ctx context.Context, staff models.User, campID string) (models.Camp, error) {
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return models.Camp{}, err
	}
	if err := checkOwner(staff, camp); err != nil {
		return models.Camp{}, err
	}
	if camp.Started(s.now()) {
		return models.Camp{}, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("camp %s has already started", campID))
	}
	camp.Visible = !camp.Visible
	if err := s.camps.Update(ctx, camp); err != nil {
		return camp, err
	}
	s.logger.Info("camp visibility changed", zap.String("camp_id", campID), zap.Bool("visible", camp.Visible))
	return camp, nil
}

// DeleteCamp removes a camp nobody registered for, along with its requests.
func (s *CampService) DeleteCamp(ctx context.Context, staff models.User, campID string) error {
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return err
	}
	if err := checkOwner(staff, camp); err != nil {
		return err
	}
	if camp.RegistrationCount() > 0 {
		return appErrors.Clone(appErrors.ErrState, fmt.Sprintf("camp %s has registrations", campID))
	}
	for _, r := range s.requests.FindByRules(ctx, requestForCamp(campID)) {
		if err := s.requests.Delete(ctx, r.ID); err != nil {
			return err
		}
	}
	if err := s.camps.Delete(ctx, campID); err != nil {
		return err
	}
	s.logger.Info("camp deleted", zap.String("camp_id", campID), zap.String("staff_id", staff.ID))
	return nil
}

// ListVisibleCampsFor returns the camps the student may still register for.
func (s *CampService) ListVisibleCampsFor(ctx context.Context, student models.User) []models.Camp {
	today := s.now()
	return s.camps.FindByRules(ctx,
		func(c models.Camp) bool { return c.Visible },
		func(c models.Camp) bool { return !c.RegistrationClosed(today) },
		func(c models.Camp) bool { return c.OpenTo(student.Faculty) },
	)
}

// RegisterStudent adds the student to the attendee or the committee pool of a camp.
func (s *CampService) RegisterStudent(ctx context.Context, student models.User, campID string, asCommittee bool) (models.Camp, error) {
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return models.Camp{}, err
	}
	stored, err := s.students.Read(ctx, student.ID)
	if err != nil {
		return models.Camp{}, err
	}

	switch {
	case !camp.Visible:
		return models.Camp{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("camp %s is not open", campID))
	case camp.RegistrationClosed(s.now()):
		return models.Camp{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("registration for camp %s has closed", campID))
	case !camp.OpenTo(stored.Faculty):
		return models.Camp{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("camp %s is not open to faculty %s", campID, stored.Faculty))
	}

	if _, registered := camp.RoleOf(stored.ID); registered {
		return models.Camp{}, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("already registered for camp %s", campID))
	}
	if camp.HasWithdrawn(stored.ID) {
		return models.Camp{}, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("withdrew from camp %s earlier", campID))
	}
	if asCommittee && stored.CommitteeCampID != "" {
		return models.Camp{}, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("already a committee member of camp %s", stored.CommitteeCampID))
	}
	if clash := s.findClash(ctx, stored.ID, camp); clash != "" {
		return models.Camp{}, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("camp %s overlaps with registered camp %s", campID, clash))
	}

	if asCommittee {
		if camp.RemainingCommitteeSlots() <= 0 {
			return models.Camp{}, appErrors.Clone(appErrors.ErrCapacity, fmt.Sprintf("no committee slots left in camp %s", campID))
		}
		camp.CommitteeIDs = models.AddID(camp.CommitteeIDs, stored.ID)
	} else {
		if camp.RemainingAttendeeSlots() <= 0 {
			return models.Camp{}, appErrors.Clone(appErrors.ErrCapacity, fmt.Sprintf("no attendee slots left in camp %s", campID))
		}
		camp.AttendeeIDs = models.AddID(camp.AttendeeIDs, stored.ID)
	}

	if err := s.camps.Update(ctx, camp); err != nil {
		return camp, err
	}
	if asCommittee {
		stored.CommitteeCampID = camp.ID
		if err := s.students.Update(ctx, stored); err != nil {
			return camp, err
		}
	}
	s.logger.Info("student registered", zap.String("camp_id", campID), zap.String("student_id", stored.ID), zap.Bool("committee", asCommittee))
	return camp, nil
}

func (s *CampService) findClash(ctx context.Context, studentID string, target models.Camp) string {
	clashes := s.camps.FindByRules(ctx,
		func(c models.Camp) bool { return c.ID != target.ID },
		func(c models.Camp) bool { _, ok := c.RoleOf(studentID); return ok },
		func(c models.Camp) bool { return c.Overlaps(target) },
	)
	if len(clashes) == 0 {
		return ""
	}
	return clashes[0].ID
}

// Withdraw removes an attendee from a camp. The student may not register for it again.
func (s *CampService) Withdraw(ctx context.Context, student models.User, campID string) (models.Camp, error) {
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return models.Camp{}, err
	}
	role, registered := camp.RoleOf(student.ID)
	if !registered {
		return models.Camp{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("not registered for camp %s", campID))
	}
	if role == models.CampRoleCommittee {
		return models.Camp{}, appErrors.Clone(appErrors.ErrState, "committee members cannot withdraw")
	}
	camp.AttendeeIDs = models.RemoveID(camp.AttendeeIDs, student.ID)
	camp.WithdrawnIDs = models.AddID(camp.WithdrawnIDs, student.ID)
	if err := s.camps.Update(ctx, camp); err != nil {
		return camp, err
	}
	s.logger.Info("student withdrew", zap.String("camp_id", campID), zap.String("student_id", student.ID))
	return camp, nil
}

// Get returns a camp by id.
func (s *CampService) Get(ctx context.Context, campID string) (models.Camp, error) {
	return s.camps.Read(ctx, campID)
}

// ListAll returns every camp.
func (s *CampService) ListAll(ctx context.Context) []models.Camp {
	return s.camps.FindByRules(ctx)
}

// ListByStaff returns the camps created by the staff member.
func (s *CampService) ListByStaff(ctx context.Context, staffID string) []models.Camp {
	return s.camps.FindByRules(ctx, func(c models.Camp) bool { return c.StaffID == staffID })
}

// ListVisible returns camps students can see.
func (s *CampService) ListVisible(ctx context.Context) []models.Camp {
	return s.camps.FindByRules(ctx, func(c models.Camp) bool { return c.Visible })
}

// ListInvisible returns hidden camps.
func (s *CampService) ListInvisible(ctx context.Context) []models.Camp {
	return s.camps.FindByRules(ctx, func(c models.Camp) bool { return !c.Visible })
}

// RegisteredCamps returns the camps the student takes part in with their role.
func (s *CampService) RegisteredCamps(ctx context.Context, student models.User) []RegisteredCamp {
	out := make([]RegisteredCamp, 0)
	for _, camp := range s.camps.FindByRules(ctx) {
		if role, ok := camp.RoleOf(student.ID); ok {
			out = append(out, RegisteredCamp{Camp: camp, Role: role})
		}
	}
	return out
}

func checkOwner(staff models.User, camp models.Camp) error {
	if !staff.IsStaff() || camp.StaffID != staff.ID {
		return appErrors.Clone(appErrors.ErrAuthorization, fmt.Sprintf("camp %s belongs to another staff member", camp.ID))
	}
	return nil
}

func requestForCamp(campID string) func(models.Request) bool {
	return func(r models.Request) bool { return r.CampID == campID }
}

func isPersistence(err error) bool {
	return errors.Is(err, appErrors.ErrPersistence)
}

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

type campEditor interface {
	ApplyEdit(ctx context.Context, campID string, edit models.CampEdit) (models.Camp, error)
}

type enquiryPayload struct {
	Question string `validate:"required,max=1000"`
}

type replyPayload struct {
	Decision models.RequestStatus `validate:"required,oneof=APPROVED DENIED"`
}

// RequestService handles enquiries and suggestions between students and camp owners.
type RequestService struct {
	requests  requestStore
	camps     campStore
	students  userStore
	editor    campEditor
	ids       idAllocator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService constructs a RequestService.
func NewRequestService(requests requestStore, camps campStore, students userStore, editor campEditor, ids idAllocator, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequestService{
		requests:  requests,
		camps:     camps,
		students:  students,
		editor:    editor,
		ids:       ids,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the source of "today" used for date rules.
func (s *RequestService) WithClock(now func() time.Time) *RequestService {
	if now != nil {
		s.now = now
	}
	return s
}

// Submit files a new pending request from the student about a camp.
func (s *RequestService) Submit(ctx context.Context, student models.User, campID string, payload models.RequestPayload) (models.Request, error) {
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return models.Request{}, err
	}
	if !camp.Visible {
		return models.Request{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("camp %s is not open", campID))
	}
	if camp.RegistrationClosed(s.now()) {
		return models.Request{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("camp %s no longer takes requests", campID))
	}
	payload, err = s.checkPayload(payload)
	if err != nil {
		return models.Request{}, err
	}

	id, err := s.ids.Next(repository.PrefixForRequest(payload.Kind), s.requests.IDs())
	if err != nil {
		return models.Request{}, err
	}
	req := models.Request{
		ID:       id,
		Kind:     payload.Kind,
		CampID:   campID,
		SenderID: student.ID,
		Status:   models.RequestStatusPending,
		Question: payload.Question,
		Proposal: payload.Proposal,
	}
	created, err := s.requests.Create(ctx, req)
	if err != nil {
		return created, err
	}
	s.logger.Info("request submitted", zap.String("request_id", id), zap.String("camp_id", campID), zap.String("student_id", student.ID))

	if created.Kind == models.RequestKindSuggestion {
		if err := s.awardPoint(ctx, student.ID, campID); err != nil {
			return created, err
		}
	}
	return created, nil
}

// EditWhilePending replaces the content of the student's own pending request.
func (s *RequestService) EditWhilePending(ctx context.Context, student models.User, requestID string, payload models.RequestPayload) (models.Request, error) {
	req, err := s.pendingOwnRequest(ctx, student, requestID)
	if err != nil {
		return models.Request{}, err
	}
	if payload.Kind != req.Kind {
		return models.Request{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("request %s is a %s", requestID, strings.ToLower(string(req.Kind))))
	}
	payload, err = s.checkPayload(payload)
	if err != nil {
		return models.Request{}, err
	}
	req.Question = payload.Question
	req.Proposal = payload.Proposal
	if err := s.requests.Update(ctx, req); err != nil {
		return req, err
	}
	s.logger.Info("request edited", zap.String("request_id", requestID))
	return req, nil
}

// DeleteWhilePending withdraws the student's own pending request.
func (s *RequestService) DeleteWhilePending(ctx context.Context, student models.User, requestID string) error {
	if _, err := s.pendingOwnRequest(ctx, student, requestID); err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return err
	}
	s.logger.Info("request deleted", zap.String("request_id", requestID))
	return nil
}

// Respond records the camp owner's decision. Approving a suggestion applies its
// proposal to the camp; when the proposal no longer fits the camp the request
// stays pending.
func (s *RequestService) Respond(ctx context.Context, staff models.User, requestID string, decision models.RequestStatus, reply string) (models.Request, error) {
	req, err := s.requests.Read(ctx, requestID)
	if err != nil {
		return models.Request{}, err
	}
	camp, err := s.camps.Read(ctx, req.CampID)
	if err != nil {
		return models.Request{}, err
	}
	if err := checkOwner(staff, camp); err != nil {
		return models.Request{}, err
	}
	if !req.IsPending() {
		return models.Request{}, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("request %s was already answered", requestID))
	}
	if err := s.validator.Struct(replyPayload{Decision: decision}); err != nil {
		return models.Request{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, "decision must be APPROVED or DENIED")
	}
	reply = strings.TrimSpace(reply)
	if req.Kind == models.RequestKindEnquiry && reply == "" {
		return models.Request{}, appErrors.Clone(appErrors.ErrValidation, "an enquiry needs a reply")
	}
	if reply == repository.SentinelString {
		return models.Request{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("reply %q is reserved", reply))
	}

	var applyErr error
	if req.Kind == models.RequestKindSuggestion && decision == models.RequestStatusApproved {
		if _, applyErr = s.editor.ApplyEdit(ctx, req.CampID, req.Proposal); applyErr != nil && !isPersistence(applyErr) {
			s.logger.Debug("suggestion no longer applies", zap.String("request_id", requestID), zap.Error(applyErr))
			return models.Request{}, applyErr
		}
	}

	req.Status = decision
	req.ReplierID = staff.ID
	req.Answer = reply
	if err := s.requests.Update(ctx, req); err != nil {
		return req, err
	}
	s.logger.Info("request answered", zap.String("request_id", requestID), zap.String("status", string(decision)))

	if req.Kind == models.RequestKindSuggestion && decision == models.RequestStatusApproved {
		if err := s.awardPoint(ctx, req.SenderID, req.CampID); err != nil {
			return req, err
		}
	}
	return req, applyErr
}

// ListBySender returns every request the student sent.
func (s *RequestService) ListBySender(ctx context.Context, student models.User) []models.Request {
	return s.requests.FindByRules(ctx, func(r models.Request) bool { return r.SenderID == student.ID })
}

// ListForCamp returns every request about a camp the staff member owns.
func (s *RequestService) ListForCamp(ctx context.Context, staff models.User, campID string) ([]models.Request, error) {
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(staff, camp); err != nil {
		return nil, err
	}
	return s.requests.FindByRules(ctx, requestForCamp(campID)), nil
}

// ListPendingForStaff returns pending requests across all camps the staff member owns.
func (s *RequestService) ListPendingForStaff(ctx context.Context, staff models.User) []models.Request {
	owned := make(map[string]struct{})
	for _, camp := range s.camps.FindByRules(ctx, func(c models.Camp) bool { return c.StaffID == staff.ID }) {
		owned[camp.ID] = struct{}{}
	}
	return s.requests.FindByRules(ctx,
		func(r models.Request) bool { return r.IsPending() },
		func(r models.Request) bool { _, ok := owned[r.CampID]; return ok },
	)
}

func (s *RequestService) pendingOwnRequest(ctx context.Context, student models.User, requestID string) (models.Request, error) {
	req, err := s.requests.Read(ctx, requestID)
	if err != nil {
		return models.Request{}, err
	}
	if req.SenderID != student.ID {
		return models.Request{}, appErrors.Clone(appErrors.ErrAuthorization, fmt.Sprintf("request %s belongs to another student", requestID))
	}
	if !req.IsPending() {
		return models.Request{}, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("request %s was already answered", requestID))
	}
	return req, nil
}

// checkPayload normalises the payload and keeps only the part that matches its kind.
func (s *RequestService) checkPayload(payload models.RequestPayload) (models.RequestPayload, error) {
	switch payload.Kind {
	case models.RequestKindEnquiry:
		question := strings.TrimSpace(payload.Question)
		if err := s.validator.Struct(enquiryPayload{Question: question}); err != nil {
			return payload, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid enquiry")
		}
		return models.RequestPayload{Kind: payload.Kind, Question: question}, nil
	case models.RequestKindSuggestion:
		proposal := payload.Proposal.Clone()
		if proposal.IsEmpty() {
			return payload, appErrors.Clone(appErrors.ErrValidation, "a suggestion must change at least one field")
		}
		for _, field := range []*string{proposal.Name, proposal.Location, proposal.Description} {
			if field == nil {
				continue
			}
			*field = strings.TrimSpace(*field)
			if *field == "" || *field == repository.SentinelString {
				return payload, appErrors.Clone(appErrors.ErrValidation, "suggested text must not be empty")
			}
		}
		for _, n := range []*int{proposal.TotalSlots, proposal.CommitteeSlots} {
			if n != nil && *n < 0 {
				return payload, appErrors.Clone(appErrors.ErrValidation, "slot counts must not be negative")
			}
		}
		if proposal.Faculty != nil && !proposal.Faculty.Valid() {
			return payload, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown faculty %q", *proposal.Faculty))
		}
		return models.RequestPayload{Kind: payload.Kind, Proposal: proposal}, nil
	default:
		return payload, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown request type %q", payload.Kind))
	}
}

// awardPoint credits a committee member of the camp with one point.
func (s *RequestService) awardPoint(ctx context.Context, studentID, campID string) error {
	student, err := s.students.Read(ctx, studentID)
	if errors.Is(err, appErrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if student.CommitteeCampID != campID {
		return nil
	}
	student.Points++
	if err := s.students.Update(ctx, student); err != nil {
		return err
	}
	s.logger.Info("committee point awarded", zap.String("student_id", studentID), zap.Int("points", student.Points))
	return nil
}

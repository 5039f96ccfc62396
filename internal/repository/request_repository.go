package repository

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/models"
)

const RequestFile = "requests.csv"

// RequestRepository stores enquiries and suggestions side by side.
type RequestRepository = Repository[models.Request]

// NewRequestRepository returns the request repository.
func NewRequestRepository(storage recordStorage, logger *zap.Logger, observer CommitObserver) *RequestRepository {
	return New[models.Request]("requests", RequestFile, requestCodec{}, storage, logger, observer)
}

type requestCodec struct{}

func (requestCodec) Header() []string {
	return []string{
		"ID", "Type", "CampID", "SenderID", "ReplierID", "Status", "Question", "Answer",
		"CampName", "StartDate", "EndDate", "ClosingDate", "Faculty", "Location",
		"TotalSlots", "CommitteeSlots", "Description",
	}
}

func (requestCodec) Encode(r models.Request) (map[string]string, error) {
	if err := requireID(r.ID); err != nil {
		return nil, err
	}
	switch r.Kind {
	case models.RequestKindEnquiry, models.RequestKindSuggestion:
	default:
		return nil, fmt.Errorf("unknown request type %q", r.Kind)
	}
	if err := checkStatus(r.Status); err != nil {
		return nil, err
	}
	p := r.Proposal
	if err := checkText(r.CampID, r.SenderID, r.ReplierID, r.Question, r.Answer,
		optText(p.Name), optText(p.Location), optText(p.Description)); err != nil {
		return nil, err
	}
	faculty, err := encodeOptFaculty(p.Faculty)
	if err != nil {
		return nil, err
	}
	total, err := encodeOptInt(p.TotalSlots)
	if err != nil {
		return nil, err
	}
	committee, err := encodeOptInt(p.CommitteeSlots)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"ID":             r.ID,
		"Type":           string(r.Kind),
		"CampID":         encodeString(r.CampID),
		"SenderID":       encodeString(r.SenderID),
		"ReplierID":      encodeString(r.ReplierID),
		"Status":         string(r.Status),
		"Question":       encodeString(r.Question),
		"Answer":         encodeString(r.Answer),
		"CampName":       encodeOptString(p.Name),
		"StartDate":      encodeOptDate(p.StartDate),
		"EndDate":        encodeOptDate(p.EndDate),
		"ClosingDate":    encodeOptDate(p.ClosingDate),
		"Faculty":        faculty,
		"Location":       encodeOptString(p.Location),
		"TotalSlots":     total,
		"CommitteeSlots": committee,
		"Description":    encodeOptString(p.Description),
	}, nil
}

func (requestCodec) Decode(row map[string]string) (models.Request, error) {
	r := models.Request{
		ID:        row["ID"],
		Kind:      models.RequestKind(row["Type"]),
		CampID:    decodeString(row["CampID"]),
		SenderID:  decodeString(row["SenderID"]),
		ReplierID: decodeString(row["ReplierID"]),
		Status:    models.RequestStatus(row["Status"]),
		Question:  decodeString(row["Question"]),
		Answer:    decodeString(row["Answer"]),
	}
	if err := requireID(r.ID); err != nil {
		return models.Request{}, err
	}
	switch r.Kind {
	case models.RequestKindEnquiry, models.RequestKindSuggestion:
	default:
		return models.Request{}, fmt.Errorf("unknown request type %q", r.Kind)
	}
	if err := checkStatus(r.Status); err != nil {
		return models.Request{}, err
	}

	var err error
	p := &r.Proposal
	p.Name = decodeOptString(row["CampName"])
	if p.StartDate, err = decodeOptDate(row["StartDate"]); err != nil {
		return models.Request{}, err
	}
	if p.EndDate, err = decodeOptDate(row["EndDate"]); err != nil {
		return models.Request{}, err
	}
	if p.ClosingDate, err = decodeOptDate(row["ClosingDate"]); err != nil {
		return models.Request{}, err
	}
	if p.Faculty, err = decodeOptFaculty(row["Faculty"]); err != nil {
		return models.Request{}, err
	}
	p.Location = decodeOptString(row["Location"])
	if p.TotalSlots, err = decodeOptInt(row["TotalSlots"]); err != nil {
		return models.Request{}, err
	}
	if p.CommitteeSlots, err = decodeOptInt(row["CommitteeSlots"]); err != nil {
		return models.Request{}, err
	}
	p.Description = decodeOptString(row["Description"])
	return r, nil
}

func checkStatus(s models.RequestStatus) error {
	switch s {
	case models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusDenied:
		return nil
	}
	return fmt.Errorf("unknown request status %q", s)
}

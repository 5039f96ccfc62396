package repository

import (
	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/models"
)

const CampFile = "camps.csv"

// CampRepository stores camps together with their registrations.
type CampRepository = Repository[models.Camp]

// NewCampRepository returns the camp repository.
func NewCampRepository(storage recordStorage, logger *zap.Logger, observer CommitObserver) *CampRepository {
	return New[models.Camp]("camps", CampFile, campCodec{}, storage, logger, observer)
}

type campCodec struct{}

func (campCodec) Header() []string {
	return []string{
		"ID", "Name", "StaffID", "StartDate", "EndDate", "ClosingDate", "Faculty", "Location",
		"TotalSlots", "CommitteeSlots", "Description", "Visible", "Attendees", "Committee", "Withdrawn",
	}
}

func (campCodec) Encode(c models.Camp) (map[string]string, error) {
	if err := requireID(c.ID); err != nil {
		return nil, err
	}
	if err := checkText(c.Name, c.StaffID, c.Location, c.Description); err != nil {
		return nil, err
	}
	faculty, err := encodeFaculty(c.Faculty)
	if err != nil {
		return nil, err
	}
	attendees, err := encodeList(c.AttendeeIDs)
	if err != nil {
		return nil, err
	}
	committee, err := encodeList(c.CommitteeIDs)
	if err != nil {
		return nil, err
	}
	withdrawn, err := encodeList(c.WithdrawnIDs)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"ID":             c.ID,
		"Name":           encodeString(c.Name),
		"StaffID":        encodeString(c.StaffID),
		"StartDate":      encodeDate(c.StartDate),
		"EndDate":        encodeDate(c.EndDate),
		"ClosingDate":    encodeDate(c.ClosingDate),
		"Faculty":        faculty,
		"Location":       encodeString(c.Location),
		"TotalSlots":     encodeInt(c.TotalSlots),
		"CommitteeSlots": encodeInt(c.CommitteeSlots),
		"Description":    encodeString(c.Description),
		"Visible":        encodeBool(c.Visible),
		"Attendees":      attendees,
		"Committee":      committee,
		"Withdrawn":      withdrawn,
	}, nil
}

func (campCodec) Decode(row map[string]string) (models.Camp, error) {
	var (
		c   models.Camp
		err error
	)
	c.ID = row["ID"]
	if err = requireID(c.ID); err != nil {
		return models.Camp{}, err
	}
	c.Name = decodeString(row["Name"])
	c.StaffID = decodeString(row["StaffID"])
	if c.StartDate, err = decodeDate(row["StartDate"]); err != nil {
		return models.Camp{}, err
	}
	if c.EndDate, err = decodeDate(row["EndDate"]); err != nil {
		return models.Camp{}, err
	}
	if c.ClosingDate, err = decodeDate(row["ClosingDate"]); err != nil {
		return models.Camp{}, err
	}
	if c.Faculty, err = models.ParseFaculty(row["Faculty"]); err != nil {
		return models.Camp{}, err
	}
	c.Location = decodeString(row["Location"])
	if c.TotalSlots, err = decodeInt(row["TotalSlots"]); err != nil {
		return models.Camp{}, err
	}
	if c.CommitteeSlots, err = decodeInt(row["CommitteeSlots"]); err != nil {
		return models.Camp{}, err
	}
	c.Description = decodeString(row["Description"])
	if c.Visible, err = decodeBool(row["Visible"]); err != nil {
		return models.Camp{}, err
	}
	c.AttendeeIDs = decodeList(row["Attendees"])
	c.CommitteeIDs = decodeList(row["Committee"])
	c.WithdrawnIDs = decodeList(row["Withdrawn"])
	return c, nil
}

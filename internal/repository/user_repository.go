package repository

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/models"
)

const (
	StudentFile = "students.csv"
	StaffFile   = "staff.csv"
)

// UserRepository stores users of a single role.
type UserRepository = Repository[models.User]

// NewStudentRepository returns the repository holding student accounts.
func NewStudentRepository(storage recordStorage, logger *zap.Logger, observer CommitObserver) *UserRepository {
	return New[models.User]("students", StudentFile, userCodec{role: models.RoleStudent}, storage, logger, observer)
}

// NewStaffRepository returns the repository holding staff accounts.
func NewStaffRepository(storage recordStorage, logger *zap.Logger, observer CommitObserver) *UserRepository {
	return New[models.User]("staff", StaffFile, userCodec{role: models.RoleStaff}, storage, logger, observer)
}

type userCodec struct {
	role models.UserRole
}

func (c userCodec) Header() []string {
	header := []string{"ID", "Name", "Email", "Faculty", "PasswordHash"}
	if c.role == models.RoleStudent {
		header = append(header, "CommitteeCampID", "Points")
	}
	return header
}

func (c userCodec) Encode(u models.User) (map[string]string, error) {
	if u.Role != c.role {
		return nil, fmt.Errorf("user %s has role %s, repository holds %s", u.ID, u.Role, c.role)
	}
	if err := requireID(u.ID); err != nil {
		return nil, err
	}
	if err := checkText(u.Name, u.Email, u.PasswordHash, u.CommitteeCampID); err != nil {
		return nil, err
	}
	faculty, err := encodeFaculty(u.Faculty)
	if err != nil {
		return nil, err
	}
	row := map[string]string{
		"ID":           u.ID,
		"Name":         encodeString(u.Name),
		"Email":        encodeString(u.Email),
		"Faculty":      faculty,
		"PasswordHash": encodeString(u.PasswordHash),
	}
	if c.role == models.RoleStudent {
		if u.Points < 0 {
			return nil, fmt.Errorf("negative points for %s", u.ID)
		}
		row["CommitteeCampID"] = encodeString(u.CommitteeCampID)
		row["Points"] = encodeInt(u.Points)
	}
	return row, nil
}

func (c userCodec) Decode(row map[string]string) (models.User, error) {
	faculty, err := models.ParseFaculty(row["Faculty"])
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:           row["ID"],
		Name:         decodeString(row["Name"]),
		Email:        decodeString(row["Email"]),
		PasswordHash: decodeString(row["PasswordHash"]),
		Role:         c.role,
		Faculty:      faculty,
	}
	if err := requireID(u.ID); err != nil {
		return models.User{}, err
	}
	if c.role == models.RoleStudent {
		u.CommitteeCampID = decodeString(row["CommitteeCampID"])
		if u.Points, err = decodeInt(row["Points"]); err != nil {
			return models.User{}, err
		}
	}
	return u, nil
}

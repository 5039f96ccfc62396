package seed

import (
	"embed"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/cams/internal/models"
	"github.com/noah-isme/cams/pkg/export"
)

//go:embed data/*.csv
var files embed.FS

// Dataset is the first-run population of accounts.
type Dataset struct {
	Students []models.User
	Staff    []models.User
}

// Load parses the embedded account lists. Every account gets password hashed
// with the given bcrypt cost. User ids are the upper-cased local part of the email.
func Load(password string, cost int) (Dataset, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return Dataset{}, fmt.Errorf("hash default password: %w", err)
	}
	students, err := loadUsers("data/students.csv", models.RoleStudent, string(hash))
	if err != nil {
		return Dataset{}, err
	}
	staff, err := loadUsers("data/staff.csv", models.RoleStaff, string(hash))
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Students: students, Staff: staff}, nil
}

func loadUsers(name string, role models.UserRole, hash string) ([]models.User, error) {
	raw, err := files.ReadFile(name)
	if err != nil {
		return nil, err
	}
	data, err := export.NewCSVExporter().Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	users := make([]models.User, 0, len(data.Rows))
	for i, row := range data.Rows {
		faculty, err := models.ParseFaculty(row["Faculty"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", name, i+1, err)
		}
		email := strings.TrimSpace(row["Email"])
		local, _, ok := strings.Cut(email, "@")
		if !ok || local == "" {
			return nil, fmt.Errorf("%s row %d: invalid email %q", name, i+1, email)
		}
		users = append(users, models.User{
			ID:           strings.ToUpper(local),
			Name:         strings.TrimSpace(row["Name"]),
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			Faculty:      faculty,
		})
	}
	return users, nil
}

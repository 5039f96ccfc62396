package service

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/cams/internal/models"
	"github.com/noah-isme/cams/internal/repository"
	appErrors "github.com/noah-isme/cams/pkg/errors"
)

// CampSortKey selects the ordering used by SortCamps.
type CampSortKey string

const (
	SortByID          CampSortKey = "id"
	SortByName        CampSortKey = "name"
	SortByDate        CampSortKey = "date"
	SortByClosingDate CampSortKey = "closing"
	SortByLocation    CampSortKey = "location"
)

// CampSortKeys lists the supported keys.
var CampSortKeys = []CampSortKey{SortByID, SortByName, SortByDate, SortByClosingDate, SortByLocation}

// ParseCampSortKey maps user input to a sort key; the empty string means SortByID.
func ParseCampSortKey(raw string) (CampSortKey, error) {
	if raw == "" {
		return SortByID, nil
	}
	key := CampSortKey(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range CampSortKeys {
		if key == known {
			return key, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown sort key %q", raw))
}

// SortCamps returns a sorted copy of camps. Text keys compare case-insensitively
// under English collation. Ties keep their input order.
func SortCamps(camps []models.Camp, key CampSortKey) []models.Camp {
	out := make([]models.Camp, len(camps))
	copy(out, camps)

	col := collate.New(language.English, collate.IgnoreCase)
	var less func(a, b models.Camp) bool
	switch key {
	case SortByName:
		less = func(a, b models.Camp) bool { return col.CompareString(a.Name, b.Name) < 0 }
	case SortByDate:
		less = func(a, b models.Camp) bool { return a.StartDate.Before(b.StartDate) }
	case SortByClosingDate:
		less = func(a, b models.Camp) bool { return a.ClosingDate.Before(b.ClosingDate) }
	case SortByLocation:
		less = func(a, b models.Camp) bool { return col.CompareString(a.Location, b.Location) < 0 }
	default:
		less = lessByID
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func lessByID(a, b models.Camp) bool {
	na, okA := repository.NumericSuffix(a.ID)
	nb, okB := repository.NumericSuffix(b.ID)
	if okA && okB && na != nb {
		return na < nb
	}
	return a.ID < b.ID
}

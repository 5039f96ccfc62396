package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/cams/internal/models"
)

// Unset values are written as fixed literals so every row of a kind has the same width.
const (
	SentinelEnum   = "NA"
	SentinelInt    = "-1"
	SentinelString = "EMPTY"

	storedDateLayout = "20060102"
	listSeparator    = ";"
)

func encodeString(v string) string {
	if v == "" {
		return SentinelString
	}
	return v
}

// checkText fails when a value equals the unset literal and would read back empty.
func checkText(values ...string) error {
	for _, v := range values {
		if v == SentinelString {
			return fmt.Errorf("text %q is reserved", SentinelString)
		}
	}
	return nil
}

func optText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func decodeString(raw string) string {
	if raw == SentinelString {
		return ""
	}
	return raw
}

func encodeOptString(v *string) string {
	if v == nil {
		return SentinelString
	}
	return encodeString(*v)
}

func decodeOptString(raw string) *string {
	if raw == SentinelString {
		return nil
	}
	return &raw
}

func encodeDate(v time.Time) string {
	if v.IsZero() {
		return SentinelString
	}
	return v.UTC().Format(storedDateLayout)
}

func decodeDate(raw string) (time.Time, error) {
	if raw == SentinelString {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(storedDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return d, nil
}

func encodeOptDate(v *time.Time) string {
	if v == nil {
		return SentinelString
	}
	return encodeDate(*v)
}

func decodeOptDate(raw string) (*time.Time, error) {
	if raw == SentinelString {
		return nil, nil
	}
	d, err := decodeDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func encodeInt(v int) string {
	return strconv.Itoa(v)
}

func decodeInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return v, nil
}

func encodeOptInt(v *int) (string, error) {
	if v == nil {
		return SentinelInt, nil
	}
	if *v < 0 {
		return "", fmt.Errorf("negative value %d cannot be stored", *v)
	}
	return strconv.Itoa(*v), nil
}

func decodeOptInt(raw string) (*int, error) {
	if raw == SentinelInt {
		return nil, nil
	}
	v, err := decodeInt(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func encodeFaculty(f models.Faculty) (string, error) {
	if !f.Valid() {
		return "", fmt.Errorf("unknown faculty %q", f)
	}
	return string(f), nil
}

func encodeOptFaculty(f *models.Faculty) (string, error) {
	if f == nil {
		return SentinelEnum, nil
	}
	return encodeFaculty(*f)
}

func decodeOptFaculty(raw string) (*models.Faculty, error) {
	if raw == SentinelEnum {
		return nil, nil
	}
	f, err := models.ParseFaculty(raw)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func encodeBool(v bool) string {
	return strconv.FormatBool(v)
}

func decodeBool(raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
	return v, nil
}

func encodeList(ids []string) (string, error) {
	if len(ids) == 0 {
		return SentinelString, nil
	}
	for _, id := range ids {
		if id == "" || strings.Contains(id, listSeparator) {
			return "", fmt.Errorf("id %q cannot be stored in a list", id)
		}
	}
	return strings.Join(ids, listSeparator), nil
}

func decodeList(raw string) []string {
	if raw == SentinelString || raw == "" {
		return nil
	}
	return strings.Split(raw, listSeparator)
}

// requireID rejects ids that would not survive a round trip.
func requireID(id string) error {
	if id == "" || id == SentinelString || strings.TrimSpace(id) != id {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}

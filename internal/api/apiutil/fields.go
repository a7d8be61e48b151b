package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func ParseNonNegativeInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be 0 or greater", field)
	}
	return value, nil
}

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// IDFromPath parses the {id} path value of the request route.
func IDFromPath(r *http.Request) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue("id"), "id")
}

func FormatPriceCents(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

// ParseTimeField accepts RFC 3339 or local datetime forms and returns UTC.
func ParseTimeField(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if layout == time.RFC3339 {
			parsed, err := time.Parse(layout, raw)
			if err == nil {
				return parsed.UTC(), nil
			}
			continue
		}
		parsed, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s must be a valid datetime", field)
}

// ParseDateField accepts a bare "2006-01-02" date.
func ParseDateField(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a valid date (YYYY-MM-DD)", field)
	}
	return parsed, nil
}

// ParseMonthField accepts "2006-01" and returns the first instant of that
// month in UTC.
func ParseMonthField(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	parsed, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a valid month (YYYY-MM)", field)
	}
	return parsed, nil
}

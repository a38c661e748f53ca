package core

import (
	"strings"
	"time"
)

// RawDraft carries the free-form transaction fields as submitted over the
// wire, before any coercion.
type RawDraft struct {
	Type        string
	Date        string
	Amount      string
	Description string
	Payer       string
	WithdrawnBy string
	Notes       string
}

// dateLayouts are tried in order when coercing the raw date field.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate coerces an ISO-8601 date or date-time string to a UTC instant
// at second precision.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, NewValidationError("date", "must not be empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, NewValidationError("date", "not a valid ISO-8601 date")
}

// ParseDraft coerces and validates raw input into a Draft, failing with a
// ValidationError that names the offending field. Both payer and withdrawnBy
// are kept when submitted; only the one matching the type is used downstream.
func ParseDraft(raw RawDraft) (Draft, error) {
	cents, err := ParseDecimalToCents(raw.Amount)
	if err != nil {
		return Draft{}, err
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Draft{}, err
	}
	d := Draft{
		Amount:      Money{Cents: cents},
		Type:        TransactionType(strings.TrimSpace(raw.Type)),
		Description: strings.TrimSpace(raw.Description),
		Payer:       strings.TrimSpace(raw.Payer),
		WithdrawnBy: strings.TrimSpace(raw.WithdrawnBy),
		Date:        date,
		Notes:       strings.TrimSpace(raw.Notes),
	}
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

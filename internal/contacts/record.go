package contacts

import (
	"fmt"
	"strings"
)

// ClearSentinel is the literal argument value callers pass to clear a
// field. It is translated into a non-nil zero value on Update; a field
// that is simply absent from an update is never cleared.
const ClearSentinel = "__clear__"

// Birthday is a calendar date with an optional year. A zero Year means
// the year is unknown, which is common for contact birthdays.
type Birthday struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// IsZero reports whether the birthday is completely unset.
func (b Birthday) IsZero() bool {
	return b.Year == 0 && b.Month == 0 && b.Day == 0
}

// String renders the birthday as yyyy-mm-dd, or --mm-dd when the year
// is unknown. This matches the text form accepted by ParseBirthday.
func (b Birthday) String() string {
	if b.Year != 0 {
		return fmt.Sprintf("%04d-%02d-%02d", b.Year, b.Month, b.Day)
	}
	return fmt.Sprintf("--%02d-%02d", b.Month, b.Day)
}

// Validate checks that the birthday is a real calendar date. A zero
// year is allowed; day 29 of February is accepted for year-less
// birthdays since some year the contact was born in had one.
func (b Birthday) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return &ValidationError{Field: "birthday", Reason: fmt.Sprintf("month %d out of range", b.Month)}
	}
	if b.Year < 0 || b.Year > 9999 {
		return &ValidationError{Field: "birthday", Reason: fmt.Sprintf("year %d out of range", b.Year)}
	}
	year := b.Year
	if year == 0 {
		// Leap year so recurring Feb 29 birthdays validate.
		year = 2000
	}
	if b.Day < 1 || b.Day > daysInMonth(year, b.Month) {
		return &ValidationError{Field: "birthday", Reason: fmt.Sprintf("day %d out of range for month %d", b.Day, b.Month)}
	}
	return nil
}

// ParseBirthday parses yyyy-mm-dd or --mm-dd (no year) into a Birthday.
func ParseBirthday(s string) (Birthday, error) {
	s = strings.TrimSpace(s)
	var b Birthday
	var err error
	if strings.HasPrefix(s, "--") {
		_, err = fmt.Sscanf(s, "--%d-%d", &b.Month, &b.Day)
	} else {
		_, err = fmt.Sscanf(s, "%d-%d-%d", &b.Year, &b.Month, &b.Day)
	}
	if err != nil {
		return Birthday{}, &ValidationError{Field: "birthday", Reason: fmt.Sprintf("cannot parse %q, expected yyyy-mm-dd or --mm-dd", s)}
	}
	if err := b.Validate(); err != nil {
		return Birthday{}, err
	}
	return b, nil
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
}

// Record is a flat projection of a remote contact. ResourceName is
// assigned by the remote service on creation and is immutable
// afterwards; Etag is the optimistic-concurrency marker required for
// updates.
type Record struct {
	ResourceName string    `json:"resourceName,omitempty"`
	Etag         string    `json:"etag,omitempty"`
	GivenName    string    `json:"givenName,omitempty"`
	FamilyName   string    `json:"familyName,omitempty"`
	Emails       []string  `json:"emails,omitempty"`
	Phones       []string  `json:"phones,omitempty"`
	Birthday     *Birthday `json:"birthday,omitempty"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	Note         string    `json:"note,omitempty"`
}

// DisplayName returns the full name, falling back to whichever name
// part is present.
func (r Record) DisplayName() string {
	return strings.TrimSpace(r.GivenName + " " + r.FamilyName)
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Emails != nil {
		out.Emails = append([]string(nil), r.Emails...)
	}
	if r.Phones != nil {
		out.Phones = append([]string(nil), r.Phones...)
	}
	if r.Birthday != nil {
		b := *r.Birthday
		out.Birthday = &b
	}
	return out
}

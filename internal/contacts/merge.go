package contacts

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// phoneShape accepts international and local number forms: digits with
// optional +, separators, and grouping parentheses.
var phoneShape = regexp.MustCompile(`^\+?[0-9()\-. /]{3,30}$`)

// Update is a partial update over a Record. A nil field is absent and
// carries the existing value over unchanged; a non-nil pointer to the
// zero value clears the field. This keeps "clear" distinct from
// "absent" across the merge.
type Update struct {
	GivenName  *string
	FamilyName *string
	Emails     *[]string
	Phones     *[]string
	Birthday   *Birthday // non-nil zero value clears the birthday
	PhotoURL   *string
	Note       *string
}

// IsEmpty reports whether the update touches no fields at all.
func (u Update) IsEmpty() bool {
	return u.GivenName == nil && u.FamilyName == nil && u.Emails == nil &&
		u.Phones == nil && u.Birthday == nil && u.PhotoURL == nil && u.Note == nil
}

// FieldMask returns the People API update paths for the fields this
// update touches, in a stable order. The photo is not part of the mask:
// it is written through the dedicated photo endpoint.
func (u Update) FieldMask() []string {
	var mask []string
	if u.GivenName != nil || u.FamilyName != nil {
		mask = append(mask, "names")
	}
	if u.Emails != nil {
		mask = append(mask, "emailAddresses")
	}
	if u.Phones != nil {
		mask = append(mask, "phoneNumbers")
	}
	if u.Birthday != nil {
		mask = append(mask, "birthdays")
	}
	if u.Note != nil {
		mask = append(mask, "biographies")
	}
	return mask
}

// Validate checks the shape of every field the update touches. Cleared
// fields are always valid.
func (u Update) Validate() error {
	if u.Emails != nil {
		for _, e := range *u.Emails {
			if err := validateEmail(e); err != nil {
				return err
			}
		}
	}
	if u.Phones != nil {
		for _, p := range *u.Phones {
			if !phoneShape.MatchString(strings.TrimSpace(p)) {
				return &ValidationError{Field: "phone", Reason: fmt.Sprintf("%q is not a plausible phone number", p)}
			}
		}
	}
	if u.Birthday != nil && !u.Birthday.IsZero() {
		if err := u.Birthday.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateEmail(e string) error {
	addr, err := mail.ParseAddress(e)
	if err != nil {
		return &ValidationError{Field: "email", Reason: fmt.Sprintf("%q is not a valid address", e)}
	}
	// Reject display-name forms; the contact field holds a bare address.
	if addr.Address != e {
		return &ValidationError{Field: "email", Reason: fmt.Sprintf("%q must be a bare address", e)}
	}
	return nil
}

// Merge applies a partial update to an existing record and returns the
// fully-populated result, ready to submit. Fields the update does not
// touch are carried over unchanged; touched fields overwrite, and a
// cleared field is emptied. ResourceName and Etag always carry over.
//
// Merge is idempotent: merging the same update twice yields the same
// record as merging it once.
func Merge(existing Record, u Update) (Record, error) {
	if err := u.Validate(); err != nil {
		return Record{}, err
	}

	out := existing.Clone()
	if u.GivenName != nil {
		out.GivenName = *u.GivenName
	}
	if u.FamilyName != nil {
		out.FamilyName = *u.FamilyName
	}
	if u.Emails != nil {
		out.Emails = append([]string(nil), *u.Emails...)
	}
	if u.Phones != nil {
		out.Phones = append([]string(nil), *u.Phones...)
	}
	if u.Birthday != nil {
		if u.Birthday.IsZero() {
			out.Birthday = nil
		} else {
			b := *u.Birthday
			out.Birthday = &b
		}
	}
	if u.PhotoURL != nil {
		out.PhotoURL = *u.PhotoURL
	}
	if u.Note != nil {
		out.Note = *u.Note
	}
	return out, nil
}

// UpdateFromRecord converts a parsed record (e.g., an imported vCard)
// into an update that sets every field the record carries. Empty fields
// are treated as absent, not cleared, so importing a sparse card never
// wipes data from an existing contact.
func UpdateFromRecord(r Record) Update {
	var u Update
	if r.GivenName != "" {
		u.GivenName = &r.GivenName
	}
	if r.FamilyName != "" {
		u.FamilyName = &r.FamilyName
	}
	if len(r.Emails) > 0 {
		emails := append([]string(nil), r.Emails...)
		u.Emails = &emails
	}
	if len(r.Phones) > 0 {
		phones := append([]string(nil), r.Phones...)
		u.Phones = &phones
	}
	if r.Birthday != nil {
		b := *r.Birthday
		u.Birthday = &b
	}
	if r.PhotoURL != "" {
		u.PhotoURL = &r.PhotoURL
	}
	if r.Note != "" {
		u.Note = &r.Note
	}
	return u
}

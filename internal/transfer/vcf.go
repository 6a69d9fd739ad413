package transfer

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/teemow/contactkeeper/internal/contacts"
)

// EncodeVCF writes records as a vCard 4.0 stream, one card per contact.
// The contact resource name travels in the UID property so an exported
// card can be traced back to its remote contact.
func EncodeVCF(w io.Writer, records []contacts.Record) error {
	enc := vcard.NewEncoder(w)
	for i, r := range records {
		card := make(vcard.Card)
		if r.GivenName != "" || r.FamilyName != "" {
			card.AddName(&vcard.Name{
				GivenName:  r.GivenName,
				FamilyName: r.FamilyName,
			})
		}
		card.SetValue(vcard.FieldFormattedName, formattedName(r))
		for _, e := range r.Emails {
			card.AddValue(vcard.FieldEmail, e)
		}
		for _, ph := range r.Phones {
			card.AddValue(vcard.FieldTelephone, ph)
		}
		if r.Birthday != nil {
			card.SetValue(vcard.FieldBirthday, vcfBirthday(*r.Birthday))
		}
		if r.PhotoURL != "" {
			card.SetValue(vcard.FieldPhoto, r.PhotoURL)
		}
		if r.Note != "" {
			card.SetValue(vcard.FieldNote, r.Note)
		}
		if r.ResourceName != "" {
			card.SetValue(vcard.FieldUID, r.ResourceName)
		}
		vcard.ToV4(card)
		if err := enc.Encode(card); err != nil {
			return &FormatError{Format: FormatVCF, Line: i + 1, Reason: err.Error()}
		}
	}
	return nil
}

// DecodeVCF reads a vCard stream. A card with an unparseable birthday
// becomes an entry with a non-nil Err; a broken stream ends the decode
// because the card boundaries cannot be recovered.
func DecodeVCF(r io.Reader) ([]Entry, error) {
	dec := vcard.NewDecoder(r)
	var entries []Entry
	for line := 1; ; line++ {
		card, err := dec.Decode()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, &FormatError{Format: FormatVCF, Line: line, Reason: err.Error()}
		}

		entry := Entry{Line: line}
		if name := card.Name(); name != nil {
			entry.Record.GivenName = name.GivenName
			entry.Record.FamilyName = name.FamilyName
		}
		if entry.Record.GivenName == "" && entry.Record.FamilyName == "" {
			// fall back to FN for cards that only carry a formatted name
			entry.Record.GivenName = card.PreferredValue(vcard.FieldFormattedName)
		}
		entry.Record.Emails = cleanValues(card.Values(vcard.FieldEmail))
		entry.Record.Phones = cleanValues(card.Values(vcard.FieldTelephone))
		entry.Record.PhotoURL = card.Value(vcard.FieldPhoto)
		entry.Record.Note = card.Value(vcard.FieldNote)
		entry.Record.ResourceName = card.Value(vcard.FieldUID)

		if raw := card.Value(vcard.FieldBirthday); raw != "" {
			birthday, err := parseVCFBirthday(raw)
			if err != nil {
				entry.Err = &FormatError{Format: FormatVCF, Line: line, Reason: fmt.Sprintf("birthday: %v", err)}
				entries = append(entries, entry)
				continue
			}
			entry.Record.Birthday = &birthday
		}
		entries = append(entries, entry)
	}
}

// formattedName always yields a non-empty FN since the vCard format
// requires one per card.
func formattedName(r contacts.Record) string {
	if name := r.DisplayName(); name != "" {
		return name
	}
	if len(r.Emails) > 0 {
		return r.Emails[0]
	}
	return "Unnamed"
}

// vcfBirthday renders the compact vCard 4.0 date form: yyyymmdd, or
// --mmdd when the year is unknown.
func vcfBirthday(b contacts.Birthday) string {
	if b.Year != 0 {
		return fmt.Sprintf("%04d%02d%02d", b.Year, b.Month, b.Day)
	}
	return fmt.Sprintf("--%02d%02d", b.Month, b.Day)
}

// parseVCFBirthday accepts both the compact vCard forms (yyyymmdd,
// --mmdd) and the dashed forms other producers emit.
func parseVCFBirthday(s string) (contacts.Birthday, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "-") {
		if len(s) == 8 {
			s = s[:4] + "-" + s[4:6] + "-" + s[6:]
		}
	} else if strings.HasPrefix(s, "--") && !strings.Contains(s[2:], "-") {
		if len(s) == 6 {
			s = "--" + s[2:4] + "-" + s[4:]
		}
	}
	return contacts.ParseBirthday(s)
}

func cleanValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

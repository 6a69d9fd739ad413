package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/teemow/contactkeeper/internal/contacts"
)

// csvHeader is the canonical column layout. Decoding maps columns by
// name, so files with reordered or extra columns still decode.
var csvHeader = []string{
	"given_name",
	"family_name",
	"emails",
	"phones",
	"birthday",
	"photo_url",
	"resource_name",
	"notes",
}

// listSeparator joins multi-valued fields inside one CSV cell
const listSeparator = "; "

// EncodeCSV writes records as CSV with a header row.
func EncodeCSV(w io.Writer, records []contacts.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return &FormatError{Format: FormatCSV, Reason: err.Error()}
	}
	for _, r := range records {
		birthday := ""
		if r.Birthday != nil {
			birthday = r.Birthday.String()
		}
		row := []string{
			r.GivenName,
			r.FamilyName,
			strings.Join(r.Emails, listSeparator),
			strings.Join(r.Phones, listSeparator),
			birthday,
			r.PhotoURL,
			r.ResourceName,
			r.Note,
		}
		if err := cw.Write(row); err != nil {
			return &FormatError{Format: FormatCSV, Reason: err.Error()}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &FormatError{Format: FormatCSV, Reason: err.Error()}
	}
	return nil
}

// DecodeCSV reads a CSV contact file. Malformed rows become entries
// with a non-nil Err instead of aborting the decode; only an unusable
// header fails the whole file.
func DecodeCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &FormatError{Format: FormatCSV, Reason: "missing header row"}
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["given_name"]; !ok {
		if _, ok := columns["family_name"]; !ok {
			return nil, &FormatError{Format: FormatCSV, Reason: "header has neither given_name nor family_name column"}
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []Entry
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return entries, nil
		}
		entry := Entry{Line: line}
		if err != nil {
			entry.Err = &FormatError{Format: FormatCSV, Line: line, Reason: err.Error()}
			entries = append(entries, entry)
			continue
		}

		entry.Record = contacts.Record{
			GivenName:    cell(row, "given_name"),
			FamilyName:   cell(row, "family_name"),
			Emails:       splitList(cell(row, "emails")),
			Phones:       splitList(cell(row, "phones")),
			PhotoURL:     cell(row, "photo_url"),
			ResourceName: cell(row, "resource_name"),
			Note:         cell(row, "notes"),
		}
		if raw := cell(row, "birthday"); raw != "" {
			birthday, err := contacts.ParseBirthday(raw)
			if err != nil {
				entry.Err = &FormatError{Format: FormatCSV, Line: line, Reason: fmt.Sprintf("birthday: %v", err)}
				entries = append(entries, entry)
				continue
			}
			entry.Record.Birthday = &birthday
		}
		entries = append(entries, entry)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// looksLikeCSV sniffs whether data starts with our CSV header, used to
// detect the format when the caller does not name one.
func looksLikeCSV(data []byte) bool {
	firstLine, _, _ := strings.Cut(string(data), "\n")
	return strings.Contains(strings.ToLower(firstLine), "given_name") ||
		strings.Contains(strings.ToLower(firstLine), "family_name")
}

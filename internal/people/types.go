package people

import (
	people "google.golang.org/api/people/v1"

	"github.com/teemow/contactkeeper/internal/contacts"
)

const (
	// searchReadMask selects the person fields returned by search results
	searchReadMask = "names,emailAddresses,phoneNumbers,photos,birthdays"

	// personFields selects the full field set for get and list operations
	personFields = "names,emailAddresses,phoneNumbers,photos,birthdays,biographies"
)

// SearchPage is one page of search results. An empty NextPageToken
// marks the end of the result set.
type SearchPage struct {
	Records       []contacts.Record `json:"records"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

// toRecord converts a People API person to our contact record type
func toRecord(p *people.Person) contacts.Record {
	if p == nil {
		return contacts.Record{}
	}

	record := contacts.Record{
		ResourceName: p.ResourceName,
		Etag:         p.Etag,
	}

	if len(p.Names) > 0 {
		record.GivenName = p.Names[0].GivenName
		record.FamilyName = p.Names[0].FamilyName
	}

	for _, e := range p.EmailAddresses {
		if e.Value != "" {
			record.Emails = append(record.Emails, e.Value)
		}
	}
	for _, ph := range p.PhoneNumbers {
		if ph.Value != "" {
			record.Phones = append(record.Phones, ph.Value)
		}
	}

	if len(p.Birthdays) > 0 && p.Birthdays[0].Date != nil {
		d := p.Birthdays[0].Date
		if d.Month != 0 && d.Day != 0 {
			record.Birthday = &contacts.Birthday{
				Year:  int(d.Year),
				Month: int(d.Month),
				Day:   int(d.Day),
			}
		}
	}

	if len(p.Photos) > 0 {
		record.PhotoURL = p.Photos[0].Url
	}
	if len(p.Biographies) > 0 {
		record.Note = p.Biographies[0].Value
	}

	return record
}

// toPerson converts a contact record to a People API person payload.
// Empty fields are omitted entirely: combined with a field mask naming
// them, omission is how the remote service clears a field.
func toPerson(r contacts.Record) *people.Person {
	p := &people.Person{Etag: r.Etag}

	if r.GivenName != "" || r.FamilyName != "" {
		p.Names = []*people.Name{{
			GivenName:  r.GivenName,
			FamilyName: r.FamilyName,
		}}
	}
	for _, e := range r.Emails {
		p.EmailAddresses = append(p.EmailAddresses, &people.EmailAddress{Value: e})
	}
	for _, ph := range r.Phones {
		p.PhoneNumbers = append(p.PhoneNumbers, &people.PhoneNumber{Value: ph})
	}
	if r.Birthday != nil {
		p.Birthdays = []*people.Birthday{{
			Date: &people.Date{
				Year:  int64(r.Birthday.Year),
				Month: int64(r.Birthday.Month),
				Day:   int64(r.Birthday.Day),
			},
		}}
	}
	if r.Note != "" {
		p.Biographies = []*people.Biography{{
			Value:       r.Note,
			ContentType: "TEXT_PLAIN",
		}}
	}

	return p
}

package people

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	people "google.golang.org/api/people/v1"

	"github.com/teemow/contactkeeper/internal/contacts"
)

func TestToRecordIgnoresPartialBirthday(t *testing.T) {
	p := &people.Person{
		ResourceName: "people/c1",
		Birthdays:    []*people.Birthday{{Date: &people.Date{Year: 1990}}},
	}
	got := toRecord(p)
	assert.Nil(t, got.Birthday)
}

func TestToRecordYearlessBirthday(t *testing.T) {
	p := &people.Person{
		ResourceName: "people/c1",
		Birthdays:    []*people.Birthday{{Date: &people.Date{Month: 3, Day: 14}}},
	}
	got := toRecord(p)
	require.NotNil(t, got.Birthday)
	assert.Equal(t, "--03-14", got.Birthday.String())
}

func TestToPersonOmitsEmptyFields(t *testing.T) {
	p := toPerson(contacts.Record{ResourceName: "people/c1", Etag: "etag-1"})

	assert.Equal(t, "etag-1", p.Etag)
	assert.Nil(t, p.Names)
	assert.Nil(t, p.EmailAddresses)
	assert.Nil(t, p.PhoneNumbers)
	assert.Nil(t, p.Birthdays)
	assert.Nil(t, p.Biographies)
}

func TestToPersonRoundTrip(t *testing.T) {
	r := contacts.Record{
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Emails:     []string{"ada@example.com", "al@example.org"},
		Phones:     []string{"+1 555 0100"},
		Birthday:   &contacts.Birthday{Year: 1815, Month: 12, Day: 10},
		Note:       "pioneer",
	}

	got := toRecord(toPerson(r))
	assert.Equal(t, r.GivenName, got.GivenName)
	assert.Equal(t, r.FamilyName, got.FamilyName)
	assert.Equal(t, r.Emails, got.Emails)
	assert.Equal(t, r.Phones, got.Phones)
	assert.Equal(t, r.Birthday, got.Birthday)
	assert.Equal(t, r.Note, got.Note)
}

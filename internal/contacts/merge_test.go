package contacts

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestMerge_CarriesAbsentFields(t *testing.T) {
	existing := Record{
		ResourceName: "people/c1",
		Etag:         "etag-1",
		GivenName:    "Ada",
		FamilyName:   "Lovelace",
		Emails:       []string{"ada@example.com"},
		Phones:       []string{"+44 20 7946 0000"},
		Birthday:     &Birthday{Year: 1815, Month: 12, Day: 10},
		Note:         "mathematician",
	}

	merged, err := Merge(existing, Update{GivenName: strPtr("Augusta")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if merged.GivenName != "Augusta" {
		t.Errorf("expected given name 'Augusta', got %q", merged.GivenName)
	}
	if merged.FamilyName != "Lovelace" {
		t.Errorf("expected family name carried over, got %q", merged.FamilyName)
	}
	if len(merged.Emails) != 1 || merged.Emails[0] != "ada@example.com" {
		t.Errorf("expected emails carried over, got %v", merged.Emails)
	}
	if merged.ResourceName != "people/c1" || merged.Etag != "etag-1" {
		t.Errorf("expected resource name and etag preserved, got %q/%q", merged.ResourceName, merged.Etag)
	}
	if merged.Birthday == nil || merged.Birthday.Year != 1815 {
		t.Errorf("expected birthday carried over, got %v", merged.Birthday)
	}
}

func TestMerge_ClearIsDistinctFromAbsent(t *testing.T) {
	existing := Record{
		GivenName: "Ada",
		Note:      "mathematician",
		Birthday:  &Birthday{Month: 12, Day: 10},
		Emails:    []string{"ada@example.com"},
	}

	// Absent note: unchanged.
	merged, err := Merge(existing, Update{GivenName: strPtr("Augusta")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Note != "mathematician" {
		t.Errorf("absent note should carry over, got %q", merged.Note)
	}

	// Cleared note, birthday and emails: emptied.
	merged, err = Merge(existing, Update{
		Note:     strPtr(""),
		Birthday: &Birthday{},
		Emails:   &[]string{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Note != "" {
		t.Errorf("cleared note should be empty, got %q", merged.Note)
	}
	if merged.Birthday != nil {
		t.Errorf("cleared birthday should be nil, got %v", merged.Birthday)
	}
	if len(merged.Emails) != 0 {
		t.Errorf("cleared emails should be empty, got %v", merged.Emails)
	}
	if merged.GivenName != "Ada" {
		t.Errorf("untouched given name should carry over, got %q", merged.GivenName)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	existing := Record{
		ResourceName: "people/c2",
		GivenName:    "Grace",
		Emails:       []string{"old@example.com"},
		Note:         "to be cleared",
	}
	update := Update{
		FamilyName: strPtr("Hopper"),
		Emails:     &[]string{"grace@example.com"},
		Birthday:   &Birthday{Year: 1906, Month: 12, Day: 9},
		Note:       strPtr(""),
	}

	once, err := Merge(existing, update)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Merge(once, update)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMerge_Validation(t *testing.T) {
	tests := []struct {
		name   string
		update Update
		ok     bool
	}{
		{"valid email", Update{Emails: &[]string{"a@example.com"}}, true},
		{"malformed email", Update{Emails: &[]string{"not-an-email"}}, false},
		{"display name email", Update{Emails: &[]string{"Ada <ada@example.com>"}}, false},
		{"valid phone", Update{Phones: &[]string{"+1 (555) 123-4567"}}, true},
		{"bogus phone", Update{Phones: &[]string{"call me maybe"}}, false},
		{"valid birthday", Update{Birthday: &Birthday{Month: 2, Day: 29}}, true},
		{"month out of range", Update{Birthday: &Birthday{Month: 13, Day: 1}}, false},
		{"day out of range", Update{Birthday: &Birthday{Year: 2001, Month: 2, Day: 29}}, false},
		{"clear birthday always valid", Update{Birthday: &Birthday{}}, true},
		{"clear emails always valid", Update{Emails: &[]string{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(Record{}, tt.update)
			if tt.ok && err != nil {
				t.Errorf("expected success, got %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected a validation error")
				}
				var vErr *ValidationError
				if !asValidation(err, &vErr) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}

func asValidation(err error, target **ValidationError) bool {
	v, ok := err.(*ValidationError)
	if ok {
		*target = v
	}
	return ok
}

func TestUpdate_FieldMask(t *testing.T) {
	u := Update{
		GivenName: strPtr("Ada"),
		Emails:    &[]string{"ada@example.com"},
		Note:      strPtr("note"),
	}
	mask := u.FieldMask()
	want := []string{"names", "emailAddresses", "biographies"}
	if !reflect.DeepEqual(mask, want) {
		t.Errorf("expected mask %v, got %v", want, mask)
	}

	if got := (Update{}).FieldMask(); len(got) != 0 {
		t.Errorf("expected empty mask for empty update, got %v", got)
	}

	// Photo is written via the dedicated endpoint, never the mask.
	if got := (Update{PhotoURL: strPtr("https://example.com/p.jpg")}).FieldMask(); len(got) != 0 {
		t.Errorf("photo must not appear in the field mask, got %v", got)
	}
}

func TestUpdateFromRecord_SparseFieldsAreAbsent(t *testing.T) {
	u := UpdateFromRecord(Record{GivenName: "Ada", Emails: []string{"ada@example.com"}})
	if u.GivenName == nil || *u.GivenName != "Ada" {
		t.Errorf("expected given name set, got %v", u.GivenName)
	}
	if u.FamilyName != nil {
		t.Error("empty family name must be absent, not clear")
	}
	if u.Phones != nil {
		t.Error("empty phones must be absent, not clear")
	}
	if u.Note != nil {
		t.Error("empty note must be absent, not clear")
	}
}

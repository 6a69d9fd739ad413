package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/contactkeeper/internal/contacts"
	"github.com/teemow/contactkeeper/internal/people"
	"github.com/teemow/contactkeeper/internal/toolstore"
)

type fakeDirectory struct {
	records  []contacts.Record
	created  []contacts.Record
	updated  map[string]contacts.Update
	rejected map[string]error
}

func (f *fakeDirectory) ListAll(ctx context.Context) ([]contacts.Record, error) {
	return f.records, nil
}

func (f *fakeDirectory) Update(ctx context.Context, resourceName string, update contacts.Update) (*contacts.Record, error) {
	for i := range f.records {
		if f.records[i].ResourceName == resourceName {
			if f.updated == nil {
				f.updated = map[string]contacts.Update{}
			}
			f.updated[resourceName] = update
			return &f.records[i], nil
		}
	}
	return nil, &people.NotFoundError{Resource: resourceName}
}

func (f *fakeDirectory) Create(ctx context.Context, record contacts.Record) (*contacts.Record, error) {
	if err, ok := f.rejected[record.DisplayName()]; ok {
		return nil, err
	}
	created := record.Clone()
	created.ResourceName = fmt.Sprintf("people/new-%d", len(f.created)+1)
	f.created = append(f.created, created)
	return &created, nil
}

type fakeStorage struct {
	uploads map[string][]byte
	files   map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		uploads: map[string][]byte{},
		files:   map[string][]byte{},
	}
}

func (f *fakeStorage) Upload(ctx context.Context, fileName string, content []byte, contentType string) (*toolstore.FileInfo, error) {
	f.uploads[fileName] = content
	return &toolstore.FileInfo{
		StoragePath: "tools/dev/contactkeeper/" + fileName,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(content)),
	}, nil
}

func (f *fakeStorage) DownloadURL(ctx context.Context, fileName string) (string, error) {
	return "https://storage.example.com/" + fileName, nil
}

func (f *fakeStorage) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	data, ok := f.files[rawURL]
	if !ok {
		return nil, &toolstore.StorageError{Op: "fetch", Path: rawURL, Status: 404}
	}
	return data, nil
}

func sampleRecords() []contacts.Record {
	return []contacts.Record{
		{
			ResourceName: "people/c2",
			GivenName:    "Ben",
			FamilyName:   "Byte",
			Phones:       []string{"+1 555 0101"},
		},
		{
			ResourceName: "people/c1",
			GivenName:    "Ada",
			FamilyName:   "Lovelace",
			Emails:       []string{"ada@example.com", "al@example.org"},
			Phones:       []string{"+1 555 0100"},
			Birthday:     &contacts.Birthday{Year: 1815, Month: 12, Day: 10},
			Note:         "pioneer",
		},
	}
}

func TestExportCSVSortedAndUploaded(t *testing.T) {
	dir := &fakeDirectory{records: sampleRecords()}
	store := newFakeStorage()
	p := NewPipeline(dir, store, nil)

	result, err := p.Export(context.Background(), FormatCSV, "contacts.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "contacts.csv", result.FileName)
	assert.Equal(t, "https://storage.example.com/contacts.csv", result.DownloadURL)

	data := store.uploads["contacts.csv"]
	require.NotEmpty(t, data)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	// sorted by resource name: c1 before c2
	assert.Contains(t, lines[1], "people/c1")
	assert.Contains(t, lines[2], "people/c2")
	assert.Contains(t, lines[1], "ada@example.com; al@example.org")
	assert.Contains(t, lines[1], "1815-12-10")
}

func TestExportDefaultFileName(t *testing.T) {
	dir := &fakeDirectory{}
	store := newFakeStorage()
	p := NewPipeline(dir, store, nil)

	result, err := p.Export(context.Background(), FormatVCF, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.FileName, "contacts_export_"))
	assert.True(t, strings.HasSuffix(result.FileName, ".vcf"))
}

func TestCSVRoundTrip(t *testing.T) {
	records := sampleRecords()
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, records))

	entries, err := DecodeCSV(&buf)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for i, entry := range entries {
		require.NoError(t, entry.Err)
		assert.Equal(t, records[i].ResourceName, entry.Record.ResourceName)
		assert.Equal(t, records[i].GivenName, entry.Record.GivenName)
		assert.Equal(t, records[i].Emails, entry.Record.Emails)
		assert.Equal(t, records[i].Phones, entry.Record.Phones)
		assert.Equal(t, records[i].Birthday, entry.Record.Birthday)
		assert.Equal(t, records[i].Note, entry.Record.Note)
	}
}

func TestVCFRoundTrip(t *testing.T) {
	records := sampleRecords()
	var buf bytes.Buffer
	require.NoError(t, EncodeVCF(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCARD")
	assert.Contains(t, out, "UID:people/c1")
	assert.Contains(t, out, "BDAY:18151210")

	entries, err := DecodeVCF(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for i, entry := range entries {
		require.NoError(t, entry.Err)
		assert.Equal(t, records[i].ResourceName, entry.Record.ResourceName)
		assert.Equal(t, records[i].GivenName, entry.Record.GivenName)
		assert.Equal(t, records[i].FamilyName, entry.Record.FamilyName)
		assert.Equal(t, records[i].Emails, entry.Record.Emails)
		assert.Equal(t, records[i].Phones, entry.Record.Phones)
		assert.Equal(t, records[i].Birthday, entry.Record.Birthday)
		assert.Equal(t, records[i].Note, entry.Record.Note)
	}
}

func TestVCFYearlessBirthday(t *testing.T) {
	records := []contacts.Record{{
		GivenName: "Cleo",
		Birthday:  &contacts.Birthday{Month: 2, Day: 29},
	}}
	var buf bytes.Buffer
	require.NoError(t, EncodeVCF(&buf, records))
	assert.Contains(t, buf.String(), "BDAY:--0229")

	entries, err := DecodeVCF(&buf)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Record.Birthday)
	assert.Equal(t, "--02-29", entries[0].Record.Birthday.String())
}

func TestDecodeCSVBadRowIsolated(t *testing.T) {
	input := strings.Join([]string{
		"given_name,family_name,emails,phones,birthday,photo_url,resource_name,notes",
		"Ada,Lovelace,ada@example.com,,1815-12-10,,,",
		"Bad,Row,,,not-a-date,,,",
		"Ben,Byte,,+1 555 0101,,,,",
	}, "\n")

	entries, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.NoError(t, entries[0].Err)
	assert.Error(t, entries[1].Err)
	assert.NoError(t, entries[2].Err)
	assert.Equal(t, "Ben", entries[2].Record.GivenName)
}

func TestDecodeCSVMissingHeader(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("a,b,c\n1,2,3\n"))
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, FormatCSV, ferr.Format)
}

func TestImportCreatesContacts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, sampleRecords()))

	dir := &fakeDirectory{}
	store := newFakeStorage()
	store.files["https://files.example.com/contacts.csv"] = buf.Bytes()
	p := NewPipeline(dir, store, nil)

	summary, err := p.Import(context.Background(), "https://files.example.com/contacts.csv", FormatCSV, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, dir.created, 2)
	// stale exported identity must not leak into the recreated contacts
	for _, created := range dir.created {
		assert.True(t, strings.HasPrefix(created.ResourceName, "people/new-"))
		assert.Empty(t, created.Etag)
	}
}

func TestImportUpdatesExisting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, sampleRecords()))

	// people/c1 still exists remotely, people/c2 is gone
	dir := &fakeDirectory{records: []contacts.Record{
		{ResourceName: "people/c1", GivenName: "Ada"},
	}}
	store := newFakeStorage()
	store.files["https://files.example.com/contacts.csv"] = buf.Bytes()
	p := NewPipeline(dir, store, nil)

	summary, err := p.Import(context.Background(), "https://files.example.com/contacts.csv", FormatCSV, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Failed)

	update, ok := dir.updated["people/c1"]
	require.True(t, ok)
	require.NotNil(t, update.GivenName)
	assert.Equal(t, "Ada", *update.GivenName)
	require.Len(t, dir.created, 1)
	assert.Equal(t, "Ben", dir.created[0].GivenName)
}

func TestImportLimitSkipsRest(t *testing.T) {
	records := make([]contacts.Record, 5)
	for i := range records {
		records[i] = contacts.Record{GivenName: fmt.Sprintf("Contact%d", i+1)}
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, records))

	dir := &fakeDirectory{}
	store := newFakeStorage()
	store.files["https://files.example.com/bulk.csv"] = buf.Bytes()
	p := NewPipeline(dir, store, nil)

	summary, err := p.Import(context.Background(), "https://files.example.com/bulk.csv", FormatCSV, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
}

func TestImportPartialFailure(t *testing.T) {
	input := strings.Join([]string{
		"given_name,family_name,emails,phones,birthday,photo_url,resource_name,notes",
		"Ada,Lovelace,ada@example.com,,,,,",
		"Bad,Date,,,13-45,,,",
		"Rejected,User,,,,,,",
		",,,,,,,",
		"Ben,Byte,,+1 555 0101,,,,",
	}, "\n")

	dir := &fakeDirectory{rejected: map[string]error{
		"Rejected User": errors.New("quota exceeded"),
	}}
	store := newFakeStorage()
	store.files["https://files.example.com/mixed.csv"] = []byte(input)
	p := NewPipeline(dir, store, nil)

	summary, err := p.Import(context.Background(), "https://files.example.com/mixed.csv", FormatCSV, 0)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 3, summary.Failed)
	require.Len(t, summary.Failures, 3)

	reasons := map[int]string{}
	for _, f := range summary.Failures {
		reasons[f.Line] = f.Reason
	}
	assert.Contains(t, reasons[2], "birthday")
	assert.Contains(t, reasons[3], "quota exceeded")
	assert.Contains(t, reasons[4], "no name, email, or phone")
}

func TestImportTruncatedVCFCountedAsFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeVCF(&buf, []contacts.Record{{GivenName: "Ada"}}))
	// a second card the stream cuts off before END:VCARD
	buf.WriteString("BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Cut Off\r\n")

	dir := &fakeDirectory{}
	store := newFakeStorage()
	store.files["https://files.example.com/cut.vcf"] = buf.Bytes()
	p := NewPipeline(dir, store, nil)

	summary, err := p.Import(context.Background(), "https://files.example.com/cut.vcf", FormatVCF, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 2, summary.Failures[0].Line)
	assert.Contains(t, summary.Failures[0].Reason, "END")
}

func TestImportDetectsFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeVCF(&buf, sampleRecords()))

	dir := &fakeDirectory{}
	store := newFakeStorage()
	store.files["https://files.example.com/export"] = buf.Bytes()
	p := NewPipeline(dir, store, nil)

	summary, err := p.Import(context.Background(), "https://files.example.com/export", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"vcf", FormatVCF, false},
		{"vCard", FormatVCF, false},
		{"xlsx", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

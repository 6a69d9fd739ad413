package transfer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/teemow/contactkeeper/internal/contacts"
	"github.com/teemow/contactkeeper/internal/logging"
	"github.com/teemow/contactkeeper/internal/people"
	"github.com/teemow/contactkeeper/internal/toolstore"
)

// Format names a transfer file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatVCF Format = "vcf"
)

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "vcf", "vcard":
		return FormatVCF, nil
	default:
		return "", &contacts.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported format %q, expected csv or vcf", s)}
	}
}

// ContentType returns the MIME type files of this format are stored with.
func (f Format) ContentType() string {
	if f == FormatVCF {
		return "text/vcard"
	}
	return "text/csv"
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Entry is one decoded contact from a transfer file. A non-nil Err
// marks an entry the decoder could not turn into a usable record.
type Entry struct {
	// Line is the 1-based entry position: the data row for CSV, the
	// card for vCard
	Line int

	// Record is the decoded contact, zero when Err is set
	Record contacts.Record

	// Err is the decode failure for this entry, if any
	Err error
}

// Directory is the slice of the contacts client the pipeline needs.
type Directory interface {
	ListAll(ctx context.Context) ([]contacts.Record, error)
	Create(ctx context.Context, record contacts.Record) (*contacts.Record, error)
	Update(ctx context.Context, resourceName string, update contacts.Update) (*contacts.Record, error)
}

// Storage is the slice of the host storage client the pipeline needs.
type Storage interface {
	Upload(ctx context.Context, fileName string, content []byte, contentType string) (*toolstore.FileInfo, error)
	DownloadURL(ctx context.Context, fileName string) (string, error)
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Pipeline moves contacts between the remote directory and host storage.
type Pipeline struct {
	dir    Directory
	store  Storage
	logger *slog.Logger
}

// NewPipeline creates a transfer pipeline.
func NewPipeline(dir Directory, store Storage, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{dir: dir, store: store, logger: logger}
}

// ExportResult describes a completed export.
type ExportResult struct {
	FileName    string `json:"fileName"`
	Format      Format `json:"format"`
	Count       int    `json:"count"`
	Size        int64  `json:"size"`
	StoragePath string `json:"storagePath,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// Export serializes the full contact set and uploads it to host
// storage. Records are sorted by resource name so repeated exports of
// an unchanged contact set produce identical files.
func (p *Pipeline) Export(ctx context.Context, format Format, fileName string) (*ExportResult, error) {
	records, err := p.dir.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ResourceName < records[j].ResourceName
	})

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = EncodeCSV(&buf, records)
	case FormatVCF:
		err = EncodeVCF(&buf, records)
	default:
		return nil, &contacts.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, err
	}

	if fileName == "" {
		fileName = fmt.Sprintf("contacts_export_%s.%s", time.Now().UTC().Format("20060102_150405"), format.Ext())
	}

	info, err := p.store.Upload(ctx, fileName, buf.Bytes(), format.ContentType())
	if err != nil {
		return nil, err
	}
	downloadURL, err := p.store.DownloadURL(ctx, fileName)
	if err != nil {
		return nil, err
	}

	p.logger.Info("contacts exported",
		logging.Operation("transfer.export"),
		logging.Format(string(format)),
		"count", len(records),
		"file_name", fileName,
	)
	return &ExportResult{
		FileName:    fileName,
		Format:      format,
		Count:       len(records),
		Size:        info.Size,
		StoragePath: info.StoragePath,
		DownloadURL: downloadURL,
	}, nil
}

// ImportFailure records one entry that could not be imported.
type ImportFailure struct {
	// Line is the entry's 1-based position: the data row for CSV, the
	// card for vCard
	Line int `json:"line"`

	// Name is the contact's display name, if one could be decoded
	Name string `json:"name,omitempty"`

	// Reason describes why the entry failed
	Reason string `json:"reason"`
}

// ImportSummary reports the outcome of an import run. Every entry in
// the source file lands in exactly one of Created, Updated, Skipped,
// or Failed.
type ImportSummary struct {
	Total    int             `json:"total"`
	Created  int             `json:"created"`
	Updated  int             `json:"updated"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

// Import fetches a contact file from a URL, decodes it, and applies
// each entry. An entry carrying a contact resource name (the UID of an
// exported vCard, or the resource_name column of an exported CSV)
// updates that contact; anything else is created new, so re-importing
// an export never duplicates. The limit caps how many entries are
// attempted; entries beyond it are counted as skipped. One failing
// entry never aborts the rest of the run.
func (p *Pipeline) Import(ctx context.Context, sourceURL string, format Format, limit int) (*ImportSummary, error) {
	if sourceURL == "" {
		return nil, &contacts.ValidationError{Field: "source_url", Reason: "must not be empty"}
	}

	data, err := p.store.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	if format == "" {
		format = detectFormat(sourceURL, data)
	}

	var entries []Entry
	switch format {
	case FormatCSV:
		entries, err = DecodeCSV(bytes.NewReader(data))
	case FormatVCF:
		entries, err = DecodeVCF(bytes.NewReader(data))
	default:
		return nil, &contacts.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		if len(entries) == 0 {
			return nil, err
		}
		// A broken stream ends the decode early; the cut-off entry
		// still has to show up in the summary.
		entries = append(entries, Entry{Line: len(entries) + 1, Err: err})
	}

	summary := &ImportSummary{Total: len(entries)}
	for i, entry := range entries {
		if limit > 0 && i >= limit {
			summary.Skipped = summary.Total - i
			break
		}
		if entry.Err != nil {
			p.fail(summary, entry, entry.Err.Error())
			continue
		}

		record := entry.Record.Clone()
		record.Etag = ""

		if record.DisplayName() == "" && len(record.Emails) == 0 && len(record.Phones) == 0 {
			p.fail(summary, entry, "entry has no name, email, or phone")
			continue
		}
		update := contacts.UpdateFromRecord(record)
		if verr := update.Validate(); verr != nil {
			p.fail(summary, entry, verr.Error())
			continue
		}

		if strings.HasPrefix(record.ResourceName, "people/") {
			_, uerr := p.dir.Update(ctx, record.ResourceName, update)
			if uerr == nil {
				summary.Updated++
				continue
			}
			if !people.IsNotFound(uerr) {
				p.fail(summary, entry, uerr.Error())
				continue
			}
			// The exported contact no longer exists; recreate it.
		}

		record.ResourceName = ""
		if _, cerr := p.dir.Create(ctx, record); cerr != nil {
			p.fail(summary, entry, cerr.Error())
			continue
		}
		summary.Created++
	}

	p.logger.Info("contacts imported",
		logging.Operation("transfer.import"),
		logging.Format(string(format)),
		"total", summary.Total,
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (p *Pipeline) fail(summary *ImportSummary, entry Entry, reason string) {
	summary.Failed++
	summary.Failures = append(summary.Failures, ImportFailure{
		Line:   entry.Line,
		Name:   entry.Record.DisplayName(),
		Reason: reason,
	})
}

// detectFormat guesses the file format from the source URL extension,
// falling back to content sniffing.
func detectFormat(sourceURL string, data []byte) Format {
	lower := strings.ToLower(sourceURL)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV
	case strings.HasSuffix(lower, ".vcf"), strings.HasSuffix(lower, ".vcard"):
		return FormatVCF
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("BEGIN:VCARD")) {
		return FormatVCF
	}
	if looksLikeCSV(data) {
		return FormatCSV
	}
	return FormatVCF
}

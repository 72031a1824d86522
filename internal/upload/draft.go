package upload

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/pubdex/internal/shared"
)

// FieldName identifies a metadata field in the outgoing form.
type FieldName string

const (
	FieldTitle   FieldName = "title"
	FieldAuthors FieldName = "authors"
	FieldYear    FieldName = "year"
	FieldJournal FieldName = "journal"
	FieldDOI     FieldName = "doi"
)

// doiHint is the client-side DOI shape check: 10.<4+ digits>/<suffix>.
// It is a hint, not a hard block; the server is authoritative.
var doiHint = regexp.MustCompile(`^10\.\d{4,}/\S+$`)

// Attachment is a file selected for upload.
type Attachment struct {
	Name string
	Data []byte
}

// Draft is the in-progress upload form data. Transient: it is destroyed on
// successful submit or explicit cancel, never persisted.
type Draft struct {
	Title   string
	Authors string
	Year    string
	Journal string
	DOI     string
	File    *Attachment
	BibTeX  *Attachment
}

// FieldsRequired reports whether the four metadata fields are mandatory.
// Attaching a BibTeX file relaxes them: the server extracts metadata instead.
func (d Draft) FieldsRequired() bool {
	return d.BibTeX == nil
}

// RequiredFields returns the set of fields that must be non-empty before the
// draft can be submitted. DOI is never required.
func (d Draft) RequiredFields() []FieldName {
	if !d.FieldsRequired() {
		return nil
	}
	return []FieldName{FieldTitle, FieldAuthors, FieldYear, FieldJournal}
}

// missingFields returns the required fields that are still empty.
func (d Draft) missingFields() []FieldName {
	var missing []FieldName
	for _, field := range d.RequiredFields() {
		if strings.TrimSpace(d.fieldValue(field)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func (d Draft) fieldValue(field FieldName) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldAuthors:
		return d.Authors
	case FieldYear:
		return d.Year
	case FieldJournal:
		return d.Journal
	case FieldDOI:
		return d.DOI
	default:
		return ""
	}
}

// Validate checks the draft in submission order: a primary document first,
// then metadata completeness when required. DOI shape problems are reported
// by [Draft.Warnings], not here.
func (d Draft) Validate() error {
	if d.File == nil {
		return shared.ErrMissingFile
	}

	if missing := d.missingFields(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return fmt.Errorf("%w: %s", shared.ErrIncompleteMetadata, strings.Join(names, ", "))
	}

	return nil
}

// Valid reports whether the draft would pass [Draft.Validate].
func (d Draft) Valid() bool {
	return d.Validate() == nil
}

// Warnings returns non-blocking advisories, currently only a malformed DOI.
func (d Draft) Warnings() []string {
	var warnings []string
	if doi := strings.TrimSpace(d.DOI); doi != "" && !doiHint.MatchString(doi) {
		warnings = append(warnings, fmt.Sprintf("DOI %q does not look like 10.xxxx/suffix; the server may reject it", doi))
	}
	return warnings
}

// Payload is the outgoing submission, ready for multipart encoding.
type Payload struct {
	Fields map[string]string
	File   Attachment
	BibTeX *Attachment
}

// BuildPayload validates the draft and assembles the outgoing form.
// A metadata field is included only when it is non-empty or required: in
// BibTeX mode empty fields are omitted entirely so the server's extracted
// values are not overwritten by blanks.
func (d Draft) BuildPayload() (*Payload, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	required := d.FieldsRequired()
	fields := make(map[string]string)
	for _, field := range []FieldName{FieldTitle, FieldAuthors, FieldYear, FieldJournal} {
		value := strings.TrimSpace(d.fieldValue(field))
		if value != "" || required {
			fields[string(field)] = value
		}
	}
	if doi := strings.TrimSpace(d.DOI); doi != "" {
		fields[string(FieldDOI)] = doi
	}

	return &Payload{Fields: fields, File: *d.File, BibTeX: d.BibTeX}, nil
}

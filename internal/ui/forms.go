package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/desertthunder/pubdex/internal/upload"
)

// loginFields holds the huh-bound values for the login form.
type loginFields struct {
	email    string
	password string
}

func newLoginForm(f *loginFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&f.email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.password),
		).Title("Sign in"),
	)
}

// uploadFields holds the huh-bound values for the upload form. Paths are
// resolved to attachments when the form completes.
type uploadFields struct {
	filePath   string
	bibtexPath string
	title      string
	authors    string
	year       string
	journal    string
	doi        string
}

func newUploadForm(f *uploadFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Document path (PDF/DOCX/LaTeX)").Value(&f.filePath),
			huh.NewInput().Title("BibTeX path (optional)").Description("Attaching one makes the metadata fields optional").Value(&f.bibtexPath),
		).Title("Files"),
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&f.title),
			huh.NewInput().Title("Authors (comma separated)").Value(&f.authors),
			huh.NewInput().Title("Year").Value(&f.year),
			huh.NewInput().Title("Journal/Conference").Value(&f.journal),
			huh.NewInput().Title("DOI (optional)").Placeholder("10.1000/182").Value(&f.doi),
		).Title("Publication information"),
	)
}

// buildForm turns completed upload fields into a submission form, reading
// the selected files from disk.
func (f *uploadFields) buildForm() (*upload.Form, error) {
	form := upload.NewForm()

	err := form.Edit(func(d *upload.Draft) {
		d.Title = strings.TrimSpace(f.title)
		d.Authors = strings.TrimSpace(f.authors)
		d.Year = strings.TrimSpace(f.year)
		d.Journal = strings.TrimSpace(f.journal)
		d.DOI = strings.TrimSpace(f.doi)
	})
	if err != nil {
		return nil, err
	}

	file, err := readAttachment(f.filePath)
	if err != nil {
		return nil, err
	}
	bibtex, err := readAttachment(f.bibtexPath)
	if err != nil {
		return nil, err
	}

	if err := form.Edit(func(d *upload.Draft) {
		d.File = file
		d.BibTeX = bibtex
	}); err != nil {
		return nil, err
	}

	return form, nil
}

func readAttachment(path string) (*upload.Attachment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := path
	if idx := strings.LastIndexAny(path, "/\\"); idx >= 0 {
		name = path[idx+1:]
	}

	return &upload.Attachment{Name: name, Data: data}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/pubdex/internal/shared"
	"github.com/desertthunder/pubdex/internal/upload"
	"github.com/urfave/cli/v3"
)

func readAttachment(path string) (*upload.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &upload.Attachment{Name: filepath.Base(path), Data: data}, nil
}

// Upload submits a document with its metadata. Without a BibTeX file the
// title, authors, year and journal flags are required; with one they are
// optional overrides.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return shared.ErrUnauthenticated
	}

	filePath := cmd.String("file")
	form := upload.NewForm()

	err := form.Edit(func(d *upload.Draft) {
		d.Title = cmd.String("title")
		d.Authors = cmd.String("authors")
		d.Year = cmd.String("year")
		d.Journal = cmd.String("journal")
		d.DOI = cmd.String("doi")
	})
	if err != nil {
		return err
	}

	file, err := readAttachment(filePath)
	if err != nil {
		return err
	}
	if err := form.Edit(func(d *upload.Draft) { d.File = file }); err != nil {
		return err
	}

	if bibtexPath := cmd.String("bibtex"); bibtexPath != "" {
		bibtex, err := readAttachment(bibtexPath)
		if err != nil {
			return err
		}
		if err := form.Edit(func(d *upload.Draft) { d.BibTeX = bibtex }); err != nil {
			return err
		}
	}

	if cmd.Bool("suggest") {
		suggestion, err := upload.Suggest(filePath)
		if err != nil {
			r.logger.Warn("could not scan PDF for metadata", "err", err)
		} else {
			err := form.Edit(func(d *upload.Draft) {
				if d.Title == "" && suggestion.Title != "" {
					d.Title = suggestion.Title
					r.logger.Info("prefilled title from PDF", "title", suggestion.Title)
				}
				if d.DOI == "" && suggestion.DOI != "" {
					d.DOI = suggestion.DOI
					r.logger.Info("prefilled DOI from PDF", "doi", suggestion.DOI)
				}
			})
			if err != nil {
				return err
			}
		}
	}

	pub, err := r.coordinator.Upload(ctx, form)
	if err != nil {
		if errors.Is(err, shared.ErrIncompleteMetadata) {
			r.writePlainln("Provide --title, --authors, --year and --journal, or a --bibtex file.")
		}
		return err
	}

	return r.writePlainln("✓ Uploaded %q (id %d)", pub.Title, pub.ID)
}

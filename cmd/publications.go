package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/pubdex/internal/formatter"
	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/repositories"
	"github.com/desertthunder/pubdex/internal/shared"
	"github.com/urfave/cli/v3"
)

func queryFromFlags(cmd *cli.Command) (models.Query, error) {
	q := models.Query{
		Search:  cmd.String("search"),
		OrderBy: models.OrderBy(cmd.String("order")),
	}
	if raw := cmd.String("order"); raw != "" && !q.OrderBy.Valid() {
		return q, fmt.Errorf("%w: unknown sort order %q", shared.ErrValidation, raw)
	}
	return q.Normalized(), nil
}

// fetchList retrieves publications from the API, snapshotting successful
// results locally and falling back to the last snapshot when offline.
func (r *Runner) fetchList(ctx context.Context, scope repositories.Scope, q models.Query) ([]models.Publication, bool, error) {
	var (
		pubs []models.Publication
		err  error
	)

	if scope == repositories.ScopeMine {
		pubs, err = r.pubs.Mine(ctx, q.OrderBy)
	} else {
		pubs, err = r.pubs.List(ctx, q)
	}

	if err == nil {
		if r.cache != nil {
			if cacheErr := r.cache.Put(scope, q, pubs); cacheErr != nil {
				r.logger.Warn("failed to snapshot publication list", "err", cacheErr)
			}
		}
		return pubs, false, nil
	}

	if r.cache != nil && errors.Is(err, shared.ErrNetwork) {
		cached, cachedAt, cacheErr := r.cache.Get(scope, q)
		if cacheErr == nil {
			r.logger.Warn("API unreachable, using cached snapshot", "cached_at", cachedAt)
			return cached, true, nil
		}
	}

	return nil, false, err
}

func (r *Runner) renderPublications(pubs []models.Publication, fromCache bool) error {
	if len(pubs) == 0 {
		return r.writePlainln("No publications found.")
	}

	for _, pub := range pubs {
		year := ""
		if pub.Year != nil {
			year = fmt.Sprintf(" (%d)", *pub.Year)
		}
		r.writePlainln("%4d  %s%s", pub.ID, pub.Title, year)
		if authors := pub.AuthorNames(); authors != "" {
			r.writePlainln("      %s", authors)
		}
	}

	r.writePlainln("")
	if fromCache {
		return r.writePlainln("%d publications (cached)", len(pubs))
	}
	return r.writePlainln("%d publications", len(pubs))
}

// PubsList lists repository publications, optionally filtered and sorted.
func (r *Runner) PubsList(ctx context.Context, cmd *cli.Command) error {
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	pubs, fromCache, err := r.fetchList(ctx, repositories.ScopeAll, q)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(pubs, true)
	}
	return r.renderPublications(pubs, fromCache)
}

// PubsMine lists the signed-in user's publications.
func (r *Runner) PubsMine(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return shared.ErrUnauthenticated
	}

	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	pubs, fromCache, err := r.fetchList(ctx, repositories.ScopeMine, q)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(pubs, true)
	}
	return r.renderPublications(pubs, fromCache)
}

func publicationID(cmd *cli.Command) (int, error) {
	raw := cmd.StringArg("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: publication id required", shared.ErrValidation)
	}
	return id, nil
}

// PubsDelete removes one of the user's publications.
func (r *Runner) PubsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := publicationID(cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		r.writePlain("Delete publication %d? This cannot be undone. [y/N] ", id)
		var answer string
		fmt.Fscanln(os.Stdin, &answer)
		if !strings.EqualFold(answer, "y") {
			return r.writePlainln("Aborted.")
		}
	}

	if err := r.coordinator.Delete(ctx, id); err != nil {
		return err
	}

	return r.writePlainln("✓ Deleted publication %d", id)
}

// PubsDownload saves a publication's document to disk.
func (r *Runner) PubsDownload(ctx context.Context, cmd *cli.Command) error {
	id, err := publicationID(cmd)
	if err != nil {
		return err
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		dir := r.config.Download.Dir
		if dir == "" {
			dir = "."
		}
		outputPath = filepath.Join(dir, fmt.Sprintf("publication_%d.pdf", id))
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	n, err := r.pubs.Download(ctx, id, f)
	if err != nil {
		os.Remove(outputPath)
		return err
	}

	r.logger.Info("document saved", "path", outputPath, "bytes", n)
	return r.writePlainln("✓ Saved %s (%d bytes)", outputPath, n)
}

// PubsExport writes a publication list as CSV, Markdown or plain text.
func (r *Runner) PubsExport(ctx context.Context, cmd *cli.Command) error {
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	scope := repositories.ScopeAll
	title := "Publications"
	if cmd.Bool("mine") {
		if !r.session.Authenticated() {
			return shared.ErrUnauthenticated
		}
		scope = repositories.ScopeMine
		title = "My Publications"
	}

	pubs, _, err := r.fetchList(ctx, scope, q)
	if err != nil {
		return err
	}

	var data []byte
	switch format := cmd.String("format"); format {
	case "csv":
		data, err = formatter.ExportToCSV(pubs)
	case "markdown", "md":
		data, err = formatter.ExportToMarkdown(title, pubs)
	case "text", "txt":
		data, err = formatter.ExportToText(pubs)
	default:
		return fmt.Errorf("%w: unknown export format %q", shared.ErrValidation, format)
	}
	if err != nil {
		return err
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return r.writePlainln("✓ Exported %d publications to %s", len(pubs), outputPath)
	}

	_, err = r.output.Write(data)
	return err
}

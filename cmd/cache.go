package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// CacheList prints the stored publication list snapshots.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("local database unavailable, nothing cached")
	}

	entries, err := r.cache.List()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return r.writePlainln("No snapshots stored.")
	}

	for _, entry := range entries {
		search := entry.Query.Search
		if search == "" {
			search = "-"
		}
		r.writePlainln("%-5s %-12s search=%-20s %3d publications  %s",
			entry.Scope, entry.Query.OrderBy, search, entry.Count,
			entry.CachedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// CacheClear deletes all stored snapshots.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("local database unavailable, nothing cached")
	}

	if err := r.cache.Clear(); err != nil {
		return err
	}

	return r.writePlainln("✓ Snapshots cleared")
}

package upload

import (
	"errors"
	"testing"

	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/shared"
)

func completeForm() *Form {
	f := NewForm()
	f.Edit(func(d *Draft) {
		d.File = pdfAttachment()
		d.Title = "A Study"
		d.Authors = "Doe, J."
		d.Year = "2023"
		d.Journal = "Nature"
	})
	return f
}

func TestForm(t *testing.T) {
	t.Run("starts in editing state", func(t *testing.T) {
		f := NewForm()
		if f.Phase() != Editing {
			t.Errorf("expected editing, got %v", f.Phase())
		}
	})

	t.Run("BeginSubmit", func(t *testing.T) {
		t.Run("valid draft moves to submitting", func(t *testing.T) {
			f := completeForm()
			p, err := f.BeginSubmit()
			if err != nil {
				t.Fatalf("expected payload, got %v", err)
			}
			if p == nil {
				t.Fatal("expected non-nil payload")
			}
			if f.Phase() != Submitting {
				t.Errorf("expected submitting, got %v", f.Phase())
			}
		})

		t.Run("invalid draft fails and records the error", func(t *testing.T) {
			f := NewForm()
			_, err := f.BeginSubmit()
			if !errors.Is(err, shared.ErrMissingFile) {
				t.Fatalf("expected ErrMissingFile, got %v", err)
			}
			if f.Phase() != Failed {
				t.Errorf("expected failed, got %v", f.Phase())
			}
			if !errors.Is(f.Err(), shared.ErrMissingFile) {
				t.Errorf("expected recorded error, got %v", f.Err())
			}
		})

		t.Run("double submit is rejected", func(t *testing.T) {
			f := completeForm()
			if _, err := f.BeginSubmit(); err != nil {
				t.Fatalf("first submit failed: %v", err)
			}
			if _, err := f.BeginSubmit(); !errors.Is(err, shared.ErrAlreadyInProgress) {
				t.Errorf("expected ErrAlreadyInProgress, got %v", err)
			}
		})
	})

	t.Run("Edit", func(t *testing.T) {
		t.Run("rejected while submitting", func(t *testing.T) {
			f := completeForm()
			f.BeginSubmit()
			err := f.Edit(func(d *Draft) { d.Title = "changed" })
			if !errors.Is(err, shared.ErrAlreadyInProgress) {
				t.Errorf("expected ErrAlreadyInProgress, got %v", err)
			}
			if f.Draft().Title != "A Study" {
				t.Error("expected draft to be untouched")
			}
		})

		t.Run("after failure returns to editing and clears the error", func(t *testing.T) {
			f := NewForm()
			f.BeginSubmit()
			if f.Phase() != Failed {
				t.Fatalf("expected failed, got %v", f.Phase())
			}

			if err := f.Edit(func(d *Draft) { d.File = pdfAttachment() }); err != nil {
				t.Fatalf("expected edit after failure to succeed, got %v", err)
			}
			if f.Phase() != Editing {
				t.Errorf("expected editing, got %v", f.Phase())
			}
			if f.Err() != nil {
				t.Errorf("expected stale error cleared, got %v", f.Err())
			}
		})

		t.Run("rejected after success", func(t *testing.T) {
			f := completeForm()
			f.BeginSubmit()
			f.Complete(&models.Publication{ID: 1, Title: "A Study"}, nil)

			err := f.Edit(func(d *Draft) { d.Title = "changed" })
			if !errors.Is(err, shared.ErrDraftComplete) {
				t.Errorf("expected ErrDraftComplete, got %v", err)
			}
		})
	})

	t.Run("Complete", func(t *testing.T) {
		t.Run("success is terminal", func(t *testing.T) {
			f := completeForm()
			f.BeginSubmit()
			f.Complete(&models.Publication{ID: 7, Title: "A Study"}, nil)

			if f.Phase() != Succeeded {
				t.Errorf("expected succeeded, got %v", f.Phase())
			}
			if f.Result() == nil || f.Result().ID != 7 {
				t.Errorf("expected stored result, got %v", f.Result())
			}
			if _, err := f.BeginSubmit(); !errors.Is(err, shared.ErrDraftComplete) {
				t.Errorf("expected ErrDraftComplete on resubmit, got %v", err)
			}
		})

		t.Run("failure is recoverable via retry", func(t *testing.T) {
			f := completeForm()
			f.BeginSubmit()
			f.Complete(nil, shared.ErrServer)

			if f.Phase() != Failed {
				t.Fatalf("expected failed, got %v", f.Phase())
			}
			if err := f.Retry(); err != nil {
				t.Fatalf("expected retry to succeed, got %v", err)
			}
			if f.Phase() != Editing {
				t.Errorf("expected editing after retry, got %v", f.Phase())
			}

			// The draft survives the failure, so a resubmit works as-is.
			if _, err := f.BeginSubmit(); err != nil {
				t.Errorf("expected resubmit to succeed, got %v", err)
			}
		})

		t.Run("ignored outside of submitting", func(t *testing.T) {
			f := completeForm()
			f.Complete(&models.Publication{ID: 1}, nil)
			if f.Phase() != Editing {
				t.Errorf("expected completion to be ignored while editing, got %v", f.Phase())
			}
		})
	})
}

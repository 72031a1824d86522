package upload

import (
	"sync"

	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/shared"
)

// Phase is the submission lifecycle state of a form.
type Phase int

const (
	Editing Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "editing"
	}
}

// Form tracks one draft through editing -> submitting -> succeeded|failed.
// Failed is recoverable: the next edit or an explicit Retry returns to
// editing. Succeeded is terminal for this draft; another upload needs a
// fresh form.
type Form struct {
	mu     sync.Mutex
	draft  Draft
	phase  Phase
	err    error
	result *models.Publication
}

// NewForm creates an empty form in the editing state.
func NewForm() *Form {
	return &Form{}
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Phase returns the current lifecycle state.
func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Err returns the failure from the last submission attempt, if any.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Result returns the created publication after a successful submit.
func (f *Form) Result() *models.Publication {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Edit applies fn to the draft. Editing a failed form returns it to the
// editing state and clears the stale error. Edits are rejected while a
// submission is in flight or after it has succeeded.
func (f *Form) Edit(fn func(*Draft)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.phase {
	case Submitting:
		return shared.ErrAlreadyInProgress
	case Succeeded:
		return shared.ErrDraftComplete
	case Failed:
		f.phase = Editing
		f.err = nil
	}

	fn(&f.draft)
	return nil
}

// Retry returns a failed form to the editing state without changing the draft.
func (f *Form) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.phase {
	case Submitting:
		return shared.ErrAlreadyInProgress
	case Succeeded:
		return shared.ErrDraftComplete
	}

	f.phase = Editing
	f.err = nil
	return nil
}

// BeginSubmit validates the draft and moves the form to submitting,
// guarding against a double submit. On success it returns the assembled
// payload; the caller performs the I/O and reports back via [Form.Complete].
func (f *Form) BeginSubmit() (*Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.phase {
	case Submitting:
		return nil, shared.ErrAlreadyInProgress
	case Succeeded:
		return nil, shared.ErrDraftComplete
	}

	payload, err := f.draft.BuildPayload()
	if err != nil {
		f.phase = Failed
		f.err = err
		return nil, err
	}

	f.phase = Submitting
	f.err = nil
	return payload, nil
}

// Complete records the outcome of an in-flight submission.
func (f *Form) Complete(pub *models.Publication, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != Submitting {
		return
	}

	if err != nil {
		f.phase = Failed
		f.err = err
		return
	}

	f.phase = Succeeded
	f.result = pub
}

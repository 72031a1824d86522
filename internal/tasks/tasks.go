package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pubdex/internal/collection"
	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/services"
	"github.com/desertthunder/pubdex/internal/session"
	"github.com/desertthunder/pubdex/internal/shared"
	"github.com/desertthunder/pubdex/internal/upload"
)

// PublicationMutator is the API surface the coordinator drives.
// Implemented by [services.PublicationAPI].
type PublicationMutator interface {
	Upload(ctx context.Context, body *services.MultipartBody) (*models.Publication, error)
	Delete(ctx context.Context, id int) (string, error)
}

// Coordinator executes uploads and deletes, keeping the collection view
// models consistent afterwards. At most one mutation of a given kind is in
// flight at a time; a second submit is rejected locally.
type Coordinator struct {
	mu       sync.Mutex
	inflight map[string]struct{}

	session *session.Store
	api     PublicationMutator
	all     *collection.ViewModel
	mine    *collection.ViewModel
	logger  *log.Logger
}

// NewCoordinator wires the coordinator to the session store, the publication
// API, and the two view models it must invalidate after mutations. Either
// view model may be nil.
func NewCoordinator(sess *session.Store, api PublicationMutator, all, mine *collection.ViewModel, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Coordinator{
		inflight: make(map[string]struct{}),
		session:  sess,
		api:      api,
		all:      all,
		mine:     mine,
		logger:   logger,
	}
}

// SetLogger replaces the coordinator's logger.
func (c *Coordinator) SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// Upload submits the form's draft. Preconditions are checked locally before
// any network I/O: a present token, then draft validity (primary file,
// metadata completeness). On success both the global and the "my
// publications" lists are invalidated and refetched, strictly after the
// success response.
func (c *Coordinator) Upload(ctx context.Context, form *upload.Form) (*models.Publication, error) {
	if !c.session.Authenticated() {
		return nil, shared.ErrUnauthenticated
	}

	if !c.begin("upload") {
		return nil, shared.ErrAlreadyInProgress
	}
	defer c.end("upload")

	payload, err := form.BeginSubmit()
	if err != nil {
		return nil, err
	}

	for _, warning := range form.Draft().Warnings() {
		c.logger.Warn(warning)
	}

	pub, err := c.api.Upload(ctx, toMultipart(payload))
	if err != nil {
		err = c.translate(err)
		form.Complete(nil, err)
		return nil, err
	}

	form.Complete(pub, nil)
	c.logger.Info("publication uploaded", "id", pub.ID, "title", pub.Title)

	c.reload(ctx, c.all)
	c.reload(ctx, c.mine)

	return pub, nil
}

// Delete removes a publication by id and invalidates the "my publications"
// list on success. A NotFound from the server (already deleted, or not
// owned) is a normal reportable failure, not a fatal one.
func (c *Coordinator) Delete(ctx context.Context, id int) error {
	if !c.session.Authenticated() {
		return shared.ErrUnauthenticated
	}

	key := fmt.Sprintf("delete:%d", id)
	if !c.begin(key) {
		return shared.ErrAlreadyInProgress
	}
	defer c.end(key)

	message, err := c.api.Delete(ctx, id)
	if err != nil {
		return c.translate(err)
	}

	c.logger.Info("publication deleted", "id", id, "message", message)
	c.reload(ctx, c.mine)

	return nil
}

// translate maps an Unauthorized gateway error to a terminal session expiry,
// clearing the session so subsequent actions present as logged out instead
// of retrying with a dead token. Everything else passes through.
func (c *Coordinator) translate(err error) error {
	var apiErr *shared.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == shared.KindUnauthorized {
		c.session.SignOut()
		if apiErr.Detail != "" {
			return fmt.Errorf("%w: %s", shared.ErrSessionExpired, apiErr.Detail)
		}
		return shared.ErrSessionExpired
	}
	return err
}

// reload invalidates vm and runs the refetch, sequenced after the mutation's
// success response.
func (c *Coordinator) reload(ctx context.Context, vm *collection.ViewModel) {
	if vm == nil {
		return
	}
	if load := vm.Invalidate(); load != nil {
		load(ctx)
	}
}

func (c *Coordinator) begin(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[key]; busy {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Coordinator) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// toMultipart converts a validated payload into the gateway's wire shape.
func toMultipart(p *upload.Payload) *services.MultipartBody {
	body := &services.MultipartBody{
		Fields: p.Fields,
		Files: []services.FilePart{
			{Field: "file", Name: p.File.Name, Data: p.File.Data},
		},
	}
	if p.BibTeX != nil {
		body.Files = append(body.Files, services.FilePart{Field: "bibtex", Name: p.BibTeX.Name, Data: p.BibTeX.Data})
	}
	return body
}

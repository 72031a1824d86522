package collection

import (
	"context"
	"sync"

	"github.com/desertthunder/pubdex/internal/models"
)

// Phase is the load state of a view model.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failure
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

// LoadState is a snapshot of the view model: the phase, the query it belongs
// to, and either data or an error.
type LoadState struct {
	Phase        Phase
	Query        models.Query
	Publications []models.Publication
	Err          error
}

// Fetcher retrieves the publications for a query.
type Fetcher func(ctx context.Context, q models.Query) ([]models.Publication, error)

// ViewModel binds a query to a publication list. Loads are identified by a
// monotonically increasing sequence number; a response whose sequence no
// longer matches was superseded and is dropped rather than applied, so the
// displayed result always reflects the newest query.
type ViewModel struct {
	mu    sync.Mutex
	fetch Fetcher
	query models.Query
	seq   uint64
	state LoadState
}

// New creates an idle view model over the given fetcher with the default query.
func New(fetch Fetcher) *ViewModel {
	q := models.Query{OrderBy: models.OrderDefault}
	return &ViewModel{
		fetch: fetch,
		query: q,
		state: LoadState{Phase: Idle, Query: q},
	}
}

// State returns the current snapshot.
func (vm *ViewModel) State() LoadState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Query returns the query the view model is currently bound to.
func (vm *ViewModel) Query() models.Query {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.query
}

// Observe binds the view model to q and returns the resulting state plus a
// load closure for the caller to run (synchronously or from a goroutine or
// tea.Cmd). The closure is nil when no fetch is needed: re-observing an
// equal query that is in flight or already loaded starts nothing. A
// different query supersedes the previous one.
func (vm *ViewModel) Observe(q models.Query) (LoadState, func(ctx context.Context)) {
	q = q.Normalized()

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if q == vm.query {
		switch vm.state.Phase {
		case Loading, Success:
			return vm.state, nil
		}
		return vm.begin(q)
	}

	vm.query = q
	return vm.begin(q)
}

// Invalidate discards the cached result and returns a load closure for the
// current query, regardless of cache state. Used after a successful mutation
// so the list reflects the new truth.
func (vm *ViewModel) Invalidate() func(ctx context.Context) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	_, load := vm.begin(vm.query)
	return load
}

// HandleSort applies a click on a sort dimension ("date" or "title"):
// the active dimension flips direction, a new dimension resets to its
// default direction. Returns the same pair as [ViewModel.Observe].
func (vm *ViewModel) HandleSort(dimension string) (LoadState, func(ctx context.Context)) {
	vm.mu.Lock()
	next := vm.query
	next.OrderBy = next.OrderBy.Toggle(dimension)
	vm.mu.Unlock()

	return vm.Observe(next)
}

// SetSearch replaces the free-text search, keeping the sort key.
func (vm *ViewModel) SetSearch(search string) (LoadState, func(ctx context.Context)) {
	vm.mu.Lock()
	next := vm.query
	next.Search = search
	vm.mu.Unlock()

	return vm.Observe(next)
}

// begin starts a new load generation. Callers hold vm.mu.
func (vm *ViewModel) begin(q models.Query) (LoadState, func(ctx context.Context)) {
	vm.seq++
	seq := vm.seq
	vm.state = LoadState{Phase: Loading, Query: q}
	return vm.state, vm.run(seq, q)
}

// run returns the closure that performs the fetch for one generation and
// applies the result only if that generation is still current.
func (vm *ViewModel) run(seq uint64, q models.Query) func(ctx context.Context) {
	return func(ctx context.Context) {
		pubs, err := vm.fetch(ctx, q)

		vm.mu.Lock()
		defer vm.mu.Unlock()

		if seq != vm.seq {
			// Superseded while in flight; drop the stale response.
			return
		}

		if err != nil {
			vm.state = LoadState{Phase: Failure, Query: q, Err: err}
			return
		}

		vm.state = LoadState{Phase: Success, Query: q, Publications: pubs}
	}
}

package collection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/pubdex/internal/models"
)

// recordingFetcher returns canned results per query and records the order
// of fetches it served.
type recordingFetcher struct {
	mu      sync.Mutex
	results map[models.Query][]models.Publication
	errs    map[models.Query]error
	calls   []models.Query
}

func newRecordingFetcher() *recordingFetcher {
	return &recordingFetcher{
		results: make(map[models.Query][]models.Publication),
		errs:    make(map[models.Query]error),
	}
}

func (f *recordingFetcher) fetch(ctx context.Context, q models.Query) ([]models.Publication, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	if err := f.errs[q]; err != nil {
		return nil, err
	}
	return f.results[q], nil
}

func (f *recordingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func pubList(titles ...string) []models.Publication {
	pubs := make([]models.Publication, len(titles))
	for i, title := range titles {
		pubs[i] = models.Publication{ID: i + 1, Title: title}
	}
	return pubs
}

func TestViewModel(t *testing.T) {
	ctx := context.Background()

	t.Run("starts idle with the default query", func(t *testing.T) {
		vm := New(newRecordingFetcher().fetch)

		state := vm.State()
		if state.Phase != Idle {
			t.Errorf("expected idle, got %v", state.Phase)
		}
		if state.Query.OrderBy != models.OrderDateDesc {
			t.Errorf("expected date_desc default, got %v", state.Query.OrderBy)
		}
	})

	t.Run("Observe", func(t *testing.T) {
		t.Run("first observation loads", func(t *testing.T) {
			f := newRecordingFetcher()
			q := models.Query{OrderBy: models.OrderDateDesc}
			f.results[q] = pubList("First", "Second")
			vm := New(f.fetch)

			state, load := vm.Observe(q)
			if state.Phase != Loading {
				t.Errorf("expected loading, got %v", state.Phase)
			}
			if load == nil {
				t.Fatal("expected a load closure")
			}

			load(ctx)

			state = vm.State()
			if state.Phase != Success {
				t.Fatalf("expected success, got %v (err %v)", state.Phase, state.Err)
			}
			if len(state.Publications) != 2 {
				t.Errorf("expected 2 publications, got %d", len(state.Publications))
			}
		})

		t.Run("equal query does not refetch", func(t *testing.T) {
			f := newRecordingFetcher()
			q := models.Query{OrderBy: models.OrderDateDesc}
			f.results[q] = pubList("First")
			vm := New(f.fetch)

			_, load := vm.Observe(q)
			load(ctx)

			state, load := vm.Observe(q)
			if load != nil {
				t.Error("expected no load closure for an already loaded query")
			}
			if state.Phase != Success {
				t.Errorf("expected cached success, got %v", state.Phase)
			}
			if f.callCount() != 1 {
				t.Errorf("expected 1 fetch, got %d", f.callCount())
			}
		})

		t.Run("equal query in flight is not duplicated", func(t *testing.T) {
			f := newRecordingFetcher()
			q := models.Query{OrderBy: models.OrderDateDesc}
			vm := New(f.fetch)

			_, first := vm.Observe(q)
			if first == nil {
				t.Fatal("expected initial load closure")
			}

			// Same query again before the first load has run.
			state, second := vm.Observe(q)
			if second != nil {
				t.Error("expected no second closure while in flight")
			}
			if state.Phase != Loading {
				t.Errorf("expected loading, got %v", state.Phase)
			}
		})

		t.Run("stale response is dropped", func(t *testing.T) {
			f := newRecordingFetcher()
			q1 := models.Query{Search: "neural", OrderBy: models.OrderDateDesc}
			q2 := models.Query{Search: "quantum", OrderBy: models.OrderDateDesc}
			f.results[q1] = pubList("Neural Networks")
			f.results[q2] = pubList("Quantum Computing")
			vm := New(f.fetch)

			_, load1 := vm.Observe(q1)
			_, load2 := vm.Observe(q2)

			// The newer query's response lands first; the older one arrives
			// late and must not overwrite it.
			load2(ctx)
			load1(ctx)

			state := vm.State()
			if state.Query.Search != "quantum" {
				t.Errorf("expected newest query to win, got %q", state.Query.Search)
			}
			if len(state.Publications) != 1 || state.Publications[0].Title != "Quantum Computing" {
				t.Errorf("expected quantum results, got %v", state.Publications)
			}
		})

		t.Run("failure state carries the error", func(t *testing.T) {
			f := newRecordingFetcher()
			q := models.Query{OrderBy: models.OrderDateDesc}
			wantErr := errors.New("connection refused")
			f.errs[q] = wantErr
			vm := New(f.fetch)

			_, load := vm.Observe(q)
			load(ctx)

			state := vm.State()
			if state.Phase != Failure {
				t.Fatalf("expected failure, got %v", state.Phase)
			}
			if !errors.Is(state.Err, wantErr) {
				t.Errorf("expected fetch error, got %v", state.Err)
			}
		})

		t.Run("failed query is retried on re-observe", func(t *testing.T) {
			f := newRecordingFetcher()
			q := models.Query{OrderBy: models.OrderDateDesc}
			f.errs[q] = errors.New("boom")
			vm := New(f.fetch)

			_, load := vm.Observe(q)
			load(ctx)

			delete(f.errs, q)
			f.results[q] = pubList("Recovered")

			_, load = vm.Observe(q)
			if load == nil {
				t.Fatal("expected a retry closure after failure")
			}
			load(ctx)

			if state := vm.State(); state.Phase != Success {
				t.Errorf("expected recovery, got %v (err %v)", state.Phase, state.Err)
			}
		})
	})

	t.Run("Invalidate", func(t *testing.T) {
		f := newRecordingFetcher()
		q := models.Query{OrderBy: models.OrderDateDesc}
		f.results[q] = pubList("First")
		vm := New(f.fetch)

		_, load := vm.Observe(q)
		load(ctx)

		f.results[q] = pubList("First", "Second")

		reload := vm.Invalidate()
		if reload == nil {
			t.Fatal("expected invalidate to force a reload")
		}
		reload(ctx)

		state := vm.State()
		if len(state.Publications) != 2 {
			t.Errorf("expected refreshed data, got %d publications", len(state.Publications))
		}
		if f.callCount() != 2 {
			t.Errorf("expected 2 fetches, got %d", f.callCount())
		}
	})

	t.Run("HandleSort", func(t *testing.T) {
		run := func(t *testing.T, vm *ViewModel, dimension string, want models.OrderBy) {
			t.Helper()
			state, load := vm.HandleSort(dimension)
			if state.Query.OrderBy != want {
				t.Errorf("expected %v, got %v", want, state.Query.OrderBy)
			}
			if load != nil {
				load(ctx)
			}
		}

		t.Run("same dimension flips direction", func(t *testing.T) {
			vm := New(newRecordingFetcher().fetch)

			run(t, vm, "date", models.OrderDateAsc)
			run(t, vm, "date", models.OrderDateDesc)
		})

		t.Run("new dimension resets to its default", func(t *testing.T) {
			vm := New(newRecordingFetcher().fetch)

			run(t, vm, "title", models.OrderTitleAsc)
			run(t, vm, "title", models.OrderTitleDesc)
			run(t, vm, "date", models.OrderDateDesc)
		})

		t.Run("sort keeps the search filter", func(t *testing.T) {
			vm := New(newRecordingFetcher().fetch)

			_, load := vm.SetSearch("neural")
			load(ctx)

			state, load := vm.HandleSort("title")
			if load != nil {
				load(ctx)
			}
			if state.Query.Search != "neural" {
				t.Errorf("expected search to survive sorting, got %q", state.Query.Search)
			}
		})
	})

	t.Run("SetSearch", func(t *testing.T) {
		t.Run("new search triggers a load", func(t *testing.T) {
			f := newRecordingFetcher()
			vm := New(f.fetch)

			state, load := vm.SetSearch("transformers")
			if load == nil {
				t.Fatal("expected a load closure")
			}
			if state.Query.Search != "transformers" {
				t.Errorf("expected bound search, got %q", state.Query.Search)
			}
			load(ctx)
		})

		t.Run("whitespace is normalized before comparison", func(t *testing.T) {
			f := newRecordingFetcher()
			vm := New(f.fetch)

			_, load := vm.SetSearch("neural")
			load(ctx)

			_, load = vm.SetSearch("  neural  ")
			if load != nil {
				t.Error("expected trimmed search to match the current query")
			}
		})
	})
}

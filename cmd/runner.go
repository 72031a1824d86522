package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pubdex/internal/collection"
	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/repositories"
	"github.com/desertthunder/pubdex/internal/services"
	"github.com/desertthunder/pubdex/internal/session"
	"github.com/desertthunder/pubdex/internal/shared"
	"github.com/desertthunder/pubdex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	logger      *log.Logger
	output      io.Writer
	httpClient  *http.Client
	db          *sql.DB
	gateway     *services.Gateway
	session     *session.Store
	auth        *services.AuthAPI
	pubs        *services.PublicationAPI
	coordinator *tasks.Coordinator
	all         *collection.ViewModel
	mine        *collection.ViewModel
	cache       *repositories.PublicationCacheRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration.
//
// The local database backs session persistence and list snapshots; if it
// cannot be opened the runner still works, with an in-memory session only.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		db:         opts.DB,
	}

	if r.db == nil && opts.Config.Database.Path != "" {
		db, err := shared.NewDatabase(opts.Config.Database.Path)
		if err != nil {
			r.logger.Warn("failed to open local database, session will not persist", "err", err)
		} else {
			shared.ConfigureDatabase(db, opts.Config.Database.MaxOpenConns, opts.Config.Database.MaxIdleConns)
			if err := shared.RunMigrations(db); err != nil {
				r.logger.Warn("failed to migrate local database, session will not persist", "err", err)
				db.Close()
			} else {
				r.db = db
			}
		}
	}

	var tokenStore session.TokenStore
	if r.db != nil {
		tokenStore = repositories.NewSessionRepository(r.db)
		r.cache = repositories.NewPublicationCacheRepository(r.db)
	}

	r.session = session.NewStore(tokenStore, shared.WithLogger(r.logger, "component", "session"))

	r.gateway = services.NewGateway(opts.Config.API.BaseURL, r.httpClient, r.session, shared.WithLogger(r.logger, "component", "gateway"))
	r.gateway.SetTimeout(opts.Config.API.Timeout())
	r.gateway.SetRateLimit(opts.Config.API.RequestsPerSecond)

	r.auth = services.NewAuthAPI(r.gateway)
	r.pubs = services.NewPublicationAPI(r.gateway)

	r.all = collection.New(r.pubs.List)
	r.mine = collection.New(func(ctx context.Context, q models.Query) ([]models.Publication, error) {
		return r.pubs.Mine(ctx, q.OrderBy)
	})

	r.coordinator = tasks.NewCoordinator(r.session, r.pubs, r.all, r.mine, shared.WithLogger(r.logger, "component", "tasks"))

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, pubsCommand, uploadCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger and re-derives the component
// loggers from it, so the session store, gateway and coordinator follow the
// new sink and level.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.session.SetLogger(shared.WithLogger(l, "component", "session"))
	r.gateway.SetLogger(shared.WithLogger(l, "component", "gateway"))
	r.coordinator.SetLogger(shared.WithLogger(l, "component", "tasks"))
}

// Close releases the local database handle, if any.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

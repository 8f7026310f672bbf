package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/policysim/internal/dataset"
	"github.com/raysh454/policysim/internal/logging"
)

// Application is the global runtime state container.
// It holds config and the services shared across commands (logger, dataset
// store, dashboard, file watcher). Pass Application into modules that need
// access to the global state rather than using package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	Store     *dataset.Store
	Dashboard *Dashboard

	// Watcher is nil unless dataset.watch is enabled.
	Watcher *dataset.Watcher

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication builds the dataset source and the services on top of it.
// Nothing is loaded until Start.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("app")
	}

	src, err := dataset.NewSource(cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("configuring dataset source: %w", err)
	}
	return NewApplicationWithSource(cfg, logger, src), nil
}

// NewApplicationWithSource wires the application around an existing source.
func NewApplicationWithSource(cfg *Config, logger logging.Logger, src dataset.Source) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	store := dataset.NewStore(src, logger.With(logging.Field{Key: "component", Value: "dataset"}))

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Dashboard: NewDashboard(store, logger),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start performs the initial dataset load and, when configured, begins
// watching the dataset file. A failed initial load is returned as is so
// callers can tell schema errors apart.
func (a *Application) Start(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application starting", logging.Field{Key: "source", Value: a.Store.Source().Describe()})

	if _, err := a.Store.Reload(ctx); err != nil {
		return fmt.Errorf("initial dataset load: %w", err)
	}

	if a.Config.Dataset.Watch {
		csvSrc, ok := a.Store.Source().(*dataset.CSVSource)
		if !ok {
			return errors.New("dataset watch is only supported for csv sources")
		}
		w, err := dataset.NewWatcher(a.Store, csvSrc.Path, a.Config.Dataset.Debounce,
			a.Logger.With(logging.Field{Key: "component", Value: "watcher"}))
		if err != nil {
			return err
		}
		if err := w.Start(a.ctx); err != nil {
			w.Stop()
			return err
		}
		a.Watcher = w
	}
	return nil
}

// Context is cancelled by Shutdown.
func (a *Application) Context() context.Context {
	return a.ctx
}

// Shutdown stops background work. It is safe to call more than once.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if a.Watcher != nil {
			a.Watcher.Stop()
			a.Watcher = nil
		}
	}()

	// cancel internal ctx to signal local components/tests
	a.cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

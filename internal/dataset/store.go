package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/model"
)

// ErrNoSource is returned by Reload on a store built without a Source.
var ErrNoSource = errors.New("dataset store has no source")

// Store holds the current dataset snapshot. Readers get the pointer that was
// current when they asked and keep it for the rest of their evaluation; a
// reload swaps in a new snapshot and never touches the old one.
type Store struct {
	source Source
	logger logging.Logger

	current atomic.Pointer[model.Dataset]

	// mu serialises reloads and guards subscribers.
	mu      sync.Mutex
	subs    map[int]chan *model.Dataset
	nextSub int
}

// NewStore returns an empty store reading from source.
func NewStore(source Source, logger logging.Logger) *Store {
	return &Store{
		source: source,
		logger: logger,
		subs:   make(map[int]chan *model.Dataset),
	}
}

// Current returns the active snapshot or nil before the first load.
func (s *Store) Current() *model.Dataset {
	return s.current.Load()
}

// Source returns the configured source (nil for in-memory stores).
func (s *Store) Source() Source {
	return s.source
}

// Reload loads a new snapshot. On failure the previous snapshot stays active.
func (s *Store) Reload(ctx context.Context) (*model.Dataset, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.source.Load(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("dataset reload failed; keeping previous snapshot",
				logging.Field{Key: "source", Value: s.source.Describe()},
				logging.Field{Key: "error", Value: err.Error()})
		}
		return nil, err
	}
	s.swap(ds)
	if s.logger != nil {
		s.logger.Info("dataset loaded",
			logging.Field{Key: "source", Value: ds.Source},
			logging.Field{Key: "dataset_id", Value: ds.ID},
			logging.Field{Key: "records", Value: len(ds.Records)},
			logging.Field{Key: "has_probability", Value: ds.HasProbability})
	}
	return ds, nil
}

// Set installs ds directly, bypassing the source.
func (s *Store) Set(ds *model.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(ds)
}

// swap must be called with mu held.
func (s *Store) swap(ds *model.Dataset) {
	s.current.Store(ds)
	for _, ch := range s.subs {
		// Latest wins: replace an unread notification instead of blocking.
		select {
		case ch <- ds:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ds:
			default:
			}
		}
	}
}

// Subscribe returns a channel that receives every new snapshot and a
// function that unsubscribes and closes it.
func (s *Store) Subscribe() (<-chan *model.Dataset, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan *model.Dataset, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

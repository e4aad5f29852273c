package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
)

// Searcher runs one symbol search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Asset, error)
}

// Result is what a Session delivers for a dispatched query.
type Result struct {
	Query  string
	Assets []model.Asset
	Err    error
}

// Session feeds user input through a Debouncer into a Searcher. Each dispatch
// cancels the search still in flight and results of superseded searches are
// dropped, so deliver only ever sees the newest query's outcome.
type Session struct {
	searcher  Searcher
	deliver   func(Result)
	debouncer *Debouncer[string]
	logger    zerolog.Logger

	base context.Context

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger used for dropped and failed searches.
func WithSessionLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a Session whose searches derive from ctx. deliver is
// called with the session lock held, so calls never overlap.
func NewSession(ctx context.Context, searcher Searcher, delay time.Duration, deliver func(Result), opts ...SessionOption) *Session {
	s := &Session{
		searcher: searcher,
		deliver:  deliver,
		logger:   zerolog.Nop(),
		base:     ctx,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debouncer = NewDebouncer(delay, s.dispatch)
	return s
}

// Input submits the current text of the search box.
func (s *Session) Input(query string) {
	s.debouncer.Push(strings.TrimSpace(query))
}

func (s *Session) dispatch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if query == "" {
		s.deliver(Result{Query: query, Assets: []model.Asset{}})
		return
	}

	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx, cancel, gen, query)
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, query string) {
	defer s.wg.Done()
	defer cancel()

	assets, err := s.searcher.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen {
		s.logger.Debug().Str("query", query).Msg("dropping superseded search result")
		return
	}
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("live search failed")
	}
	s.deliver(Result{Query: query, Assets: assets, Err: err})
}

// Close stops the session, cancels the search in flight and waits for it to return.
func (s *Session) Close() {
	s.debouncer.Close()

	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
)

// DefaultDebounce is the settle delay between the last filter edit and the
// fetch it triggers.
const DefaultDebounce = 400 * time.Millisecond

// Page is one page of the public listing as served over the API.
type Page struct {
	Rooms      []domain.RoomRecord `json:"rooms"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

type Fetcher interface {
	Fetch(ctx context.Context, filter domain.ListingFilter, cursor string) (*Page, error)
}

// State is what a browse view renders.
type State struct {
	Filter     domain.ListingFilter
	Rooms      []domain.RoomRecord
	NextCursor string
	Loading    bool
	Err        error
	Generation uint64
}

// HasMore reports whether LoadMore can fetch another page.
func (s State) HasMore() bool { return s.NextCursor != "" }

var ErrNoMorePages = errors.New("no more pages")

// Session is an infinite-scroll listing that re-fetches when the filter set
// changes. Each filter change starts a new generation; responses that come
// back for an older generation are dropped, so a slow page can never be
// appended to the list of a newer filter set.
type Session struct {
	fetcher  Fetcher
	delay    time.Duration
	onChange func(State)

	mu          sync.Mutex
	gen         uint64
	timer       *time.Timer
	loadingMore bool
	state       State
	closed      bool
}

// NewSession creates a session. onChange, if set, is called with a snapshot
// after every state change, from the goroutine that produced it.
func NewSession(fetcher Fetcher, delay time.Duration, onChange func(State)) *Session {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Session{fetcher: fetcher, delay: delay, onChange: onChange}
}

// SetFilter normalizes raw and, when it differs from the current filter set,
// discards the cursor and schedules a first-page fetch after the settle
// delay. A pending fetch from an earlier edit is cancelled. Setting the same
// filter set again is a no-op.
func (s *Session) SetFilter(raw domain.RawListingFilter) error {
	filter, err := raw.Normalize()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.state.Generation != 0 && s.state.Filter.Equal(filter) {
		s.mu.Unlock()
		return nil
	}
	gen := s.bump(filter)
	s.timer = time.AfterFunc(s.delay, func() { s.fetchFirst(gen, filter) })
	snapshot := s.snapshot()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Refresh reloads the first page for the current filter immediately.
func (s *Session) Refresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	filter := s.state.Filter
	gen := s.bump(filter)
	snapshot := s.snapshot()
	s.mu.Unlock()

	s.notify(snapshot)
	go s.fetchFirst(gen, filter)
}

// LoadMore fetches the page after the current cursor. It is a no-op while
// another LoadMore or a first-page fetch is in flight.
func (s *Session) LoadMore() error {
	s.mu.Lock()
	if s.closed || s.loadingMore || s.state.Loading {
		s.mu.Unlock()
		return nil
	}
	if s.state.NextCursor == "" {
		s.mu.Unlock()
		return ErrNoMorePages
	}
	gen, filter, cursor := s.gen, s.state.Filter, s.state.NextCursor
	s.loadingMore = true
	s.mu.Unlock()

	go s.fetchMore(gen, filter, cursor)
	return nil
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Close stops any pending fetch; responses still in flight are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// bump starts a new generation for filter. Callers hold s.mu.
func (s *Session) bump(filter domain.ListingFilter) uint64 {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.loadingMore = false
	s.state = State{Filter: filter, Rooms: s.state.Rooms, Loading: true, Generation: s.gen}
	return s.gen
}

func (s *Session) fetchFirst(gen uint64, filter domain.ListingFilter) {
	page, err := s.fetcher.Fetch(context.Background(), filter, "")

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		logger.Debug("Dropping stale listing page", "generation", gen)
		return
	}
	s.timer = nil
	s.state.Loading = false
	s.state.Err = err
	if err == nil {
		s.state.Rooms = page.Rooms
		s.state.NextCursor = page.NextCursor
	}
	snapshot := s.snapshot()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Session) fetchMore(gen uint64, filter domain.ListingFilter, cursor string) {
	page, err := s.fetcher.Fetch(context.Background(), filter, cursor)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		logger.Debug("Dropping stale listing page", "generation", gen, "cursor", cursor)
		return
	}
	s.loadingMore = false
	s.state.Err = err
	if err == nil {
		s.state.Rooms = append(s.state.Rooms, page.Rooms...)
		s.state.NextCursor = page.NextCursor
	}
	snapshot := s.snapshot()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Session) snapshot() State {
	out := s.state
	out.Rooms = append([]domain.RoomRecord(nil), s.state.Rooms...)
	return out
}

func (s *Session) notify(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

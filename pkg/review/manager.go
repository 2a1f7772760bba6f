package review

import (
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/logger"
	"github.com/ontoserver/collabclient/pkg/models"
)

type Event int

const (
	ChangeReviewed Event = iota
	ReviewsCleared
	ReviewsCommitted
)

func (e Event) String() string {
	switch e {
	case ChangeReviewed:
		return "change_reviewed"
	case ReviewsCleared:
		return "reviews_cleared"
	case ReviewsCommitted:
		return "reviews_committed"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

type Listener func(Event)

// Manager holds the review status of every change of one diff.
// Every change starts Pending. Statuses move freely between Pending, Accepted
// and Rejected until they are committed.
type Manager struct {
	mu        sync.Mutex
	changes   []Change
	status    map[uuid.UUID]Status
	listeners map[int]Listener
	nextID    int
	logger    logger.Logger
}

type Option func(m *Manager)

func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

func NewManager(changes []Change, opts ...Option) *Manager {
	m := &Manager{
		changes:   append([]Change(nil), changes...),
		status:    make(map[uuid.UUID]Status, len(changes)),
		listeners: make(map[int]Listener),
		logger:    logger.Discard(),
	}
	for _, c := range changes {
		m.status[c.ID] = Pending
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Changes returns the changes under review in diff order.
func (m *Manager) Changes() []Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Change(nil), m.changes...)
}

// Listen registers l and returns a function that unregisters it.
func (m *Manager) Listen(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// emit must be called without mu held.
func (m *Manager) emit(e Event) {
	m.mu.Lock()
	listeners := make([]Listener, 0, len(m.listeners))
	for i := 0; i < m.nextID; i++ {
		if l, ok := m.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(e)
	}
}

// SetReviewStatus sets the status of every given change. Nothing changes if
// one of them is not part of the review.
func (m *Manager) SetReviewStatus(status Status, changes ...Change) error {
	if status < Pending || status > Rejected {
		return fmt.Errorf("invalid review status %v", status)
	}

	m.mu.Lock()
	for _, c := range changes {
		if _, ok := m.status[c.ID]; !ok {
			m.mu.Unlock()
			return fmt.Errorf("%w: %s", constants.ErrUnknownChange, c.ID)
		}
	}
	for _, c := range changes {
		m.status[c.ID] = status
	}
	m.mu.Unlock()

	m.emit(ChangeReviewed)
	return nil
}

// Status returns the status of c. Unknown changes are Pending.
func (m *Manager) Status(c Change) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status[c.ID]
}

// HasUncommittedReviews reports whether any change is Accepted or Rejected.
func (m *Manager) HasUncommittedReviews() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, st := range m.status {
		if st != Pending {
			return true
		}
	}
	return false
}

// ReviewOntologyChanges returns the edits of the accepted changes in diff order.
func (m *Manager) ReviewOntologyChanges() []models.Edit {
	m.mu.Lock()
	defer m.mu.Unlock()

	var edits []models.Edit
	for _, c := range m.changes {
		if m.status[c.ID] == Accepted {
			edits = append(edits, c.Edit)
		}
	}
	return edits
}

// ClearUncommittedReviews sets every change back to Pending. The document is
// not touched.
func (m *Manager) ClearUncommittedReviews() {
	m.mu.Lock()
	for id := range m.status {
		m.status[id] = Pending
	}
	m.mu.Unlock()

	m.emit(ReviewsCleared)
}

package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/colony-counter-mcp/internal/annotation"
	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// ErrNotFound is returned for an unknown session or image id.
var ErrNotFound = errors.New("not found")

// Record is the server-side state of one registered image.
type Record struct {
	ImageID   string    `json:"image_id"`
	SessionID string    `json:"session_id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`

	// Params is the parameter set of the last detection, nil before the
	// first one.
	Params *detection.Params `json:"parameters,omitempty"`

	// Set is the last automatic detection output.
	Set *detection.ColonySet `json:"-"`

	// Log holds the manual edits. It outlives parameter changes.
	Log *annotation.Log `json:"-"`

	// Colonies is the last reconciled list, used to keep ids stable.
	Colonies []detection.Colony `json:"colonies,omitempty"`
}

// Detected reports whether the image has been through detection.
func (r *Record) Detected() bool {
	return r.Set != nil
}

// Summary tallies the last reconciled list.
func (r *Record) Summary() annotation.Summary {
	return annotation.Summarize(r.Colonies)
}

func (r *Record) clone() Record {
	c := *r
	if r.Params != nil {
		p := *r.Params
		c.Params = &p
	}
	if r.Log != nil {
		c.Log = r.Log.Clone()
	}
	c.Colonies = append([]detection.Colony(nil), r.Colonies...)
	return c
}

// Store keeps sessions and their image records in memory.
//
// Store is safe for concurrent use. Records handed out by Get and Session
// are copies; mutate state through Update.
type Store struct {
	mu       sync.RWMutex
	records  map[string]*Record
	sessions map[string][]string
	order    []string
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		records:  make(map[string]*Record),
		sessions: make(map[string][]string),
		now:      time.Now,
	}
}

// NewSession allocates an empty session and returns its id.
func (s *Store) NewSession() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = nil
	s.order = append(s.order, id)
	s.mu.Unlock()
	return id
}

// Register adds an image to a session. An empty sessionID creates a new
// session. The returned record is a copy.
func (s *Store) Register(sessionID, filename, path string, width, height int) (Record, error) {
	if width <= 0 || height <= 0 {
		return Record{}, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if sessionID == "" {
		sessionID = s.NewSession()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return Record{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	r := &Record{
		ImageID:   uuid.NewString(),
		SessionID: sessionID,
		Filename:  filename,
		Path:      path,
		Width:     width,
		Height:    height,
		CreatedAt: s.now(),
		Log:       annotation.NewLog(width, height),
	}
	s.records[r.ImageID] = r
	s.sessions[sessionID] = append(s.sessions[sessionID], r.ImageID)
	return r.clone(), nil
}

// Get returns a copy of the record for imageID.
func (s *Store) Get(imageID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[imageID]
	if !ok {
		return Record{}, fmt.Errorf("image %s: %w", imageID, ErrNotFound)
	}
	return r.clone(), nil
}

// Update runs fn on the live record under the store lock. If fn returns an
// error the record is left as it was.
func (s *Store) Update(imageID string, fn func(r *Record) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[imageID]
	if !ok {
		return Record{}, fmt.Errorf("image %s: %w", imageID, ErrNotFound)
	}

	work := r.clone()
	if err := fn(&work); err != nil {
		return r.clone(), err
	}
	*r = work
	return r.clone(), nil
}

// Session returns copies of the session's records in registration order.
func (s *Store) Session(sessionID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.records[id].clone())
	}
	return out, nil
}

// Sessions returns all session ids in creation order.
func (s *Store) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Remove drops an image from its session.
func (s *Store) Remove(imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[imageID]
	if !ok {
		return fmt.Errorf("image %s: %w", imageID, ErrNotFound)
	}
	delete(s.records, imageID)
	ids := s.sessions[r.SessionID]
	for i, id := range ids {
		if id == imageID {
			s.sessions[r.SessionID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

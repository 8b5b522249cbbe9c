package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Session accumulates extracted cards across paginated passes, deduplicating
// by job id (falling back to title) and flushing the full set to one
// timestamped JSON file after every addition.
type Session struct {
	mu      sync.Mutex
	runID   string
	path    string
	started time.Time
	seen    map[string]struct{}
	cards   []Card
	logger  *zap.Logger
}

type sessionFile struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Count     int       `json:"count"`
	Jobs      []Card    `json:"jobs"`
}

// NewSession creates the extraction file under dir.
func NewSession(dir string, logger *zap.Logger) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating extraction dir %q: %w", dir, err)
	}

	runID := uuid.NewString()
	now := time.Now()
	name := fmt.Sprintf("extraction_%s_%s.json", now.Format("20060102_150405"), runID[:8])

	s := &Session{
		runID:   runID,
		path:    filepath.Join(dir, name),
		started: now,
		seen:    make(map[string]struct{}),
		logger:  logger.Named("extraction").With(zap.String("run_id", runID)),
	}
	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	s.logger.Info("Extraction session started", zap.String("path", s.path))
	return s, nil
}

// Add merges cards into the session, returning how many were new and the
// running total. Duplicates across paginated calls are silently dropped.
func (s *Session) Add(cards []Card) (added, total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range cards {
		key := card.ID
		if key == "" {
			key = card.Title
		}
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.cards = append(s.cards, card)
		added++
	}

	if added > 0 {
		if err := s.flushLocked(); err != nil {
			return added, len(s.cards), err
		}
	}
	s.logger.Info("Extraction pass merged", zap.Int("new", added), zap.Int("total", len(s.cards)))
	return added, len(s.cards), nil
}

// Count returns the number of distinct jobs collected so far.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// Path returns the extraction file location.
func (s *Session) Path() string { return s.path }

func (s *Session) flushLocked() error {
	payload := sessionFile{
		RunID:     s.runID,
		StartedAt: s.started,
		UpdatedAt: time.Now(),
		Count:     len(s.cards),
		Jobs:      s.cards,
	}
	buf, err := codec.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding extraction session: %w", err)
	}
	if err := os.WriteFile(s.path, buf, 0o644); err != nil {
		return fmt.Errorf("writing extraction file: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kreosurvey/internal/modules/survey/domain"
	surveyout "kreosurvey/internal/modules/survey/port/out"
	"kreosurvey/internal/platform/clock"
	apperrors "kreosurvey/internal/platform/errors"
	"kreosurvey/internal/platform/id"
	"kreosurvey/internal/platform/schedule"
)

// Local mirror keys.
const (
	KeyResponses      = "kreo_survey_responses"
	KeyCurrentSection = "kreo_survey_current_section"
	KeySessionID      = "kreo_survey_session_id"
	KeyNavigatedAway  = "kreo_survey_navigated_away"
	KeyCompleted      = "kreo_survey_completed"
)

const DefaultDebounce = 10 * time.Second

// Snapshot is what Hydrate recovered from the local mirror.
type Snapshot struct {
	Responses      domain.Responses
	CurrentSection domain.Section
	SessionID      string
	NavigatedAway  bool
	Completed      bool
}

type SaveStatus struct {
	IsSaving  bool
	LastSaved time.Time
	LastError error
	SessionID string
}

// Synchronizer owns the in-memory responses, mirrors every change locally
// and pushes to the remote store after a quiet period or on demand.
type Synchronizer struct {
	clock    clock.Clock
	ids      id.Generator
	mirror   surveyout.LocalMirror
	remote   surveyout.ResponseStore
	sched    schedule.Scheduler
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	responses domain.Responses
	current   domain.Section
	sessionID string
	inFlight  int
	lastSaved time.Time
	lastErr   error
	pending   schedule.Timer
	gen       uint64
	closed    bool
	wg        sync.WaitGroup
}

func NewSynchronizer(clk clock.Clock, ids id.Generator, mirror surveyout.LocalMirror, remote surveyout.ResponseStore, sched schedule.Scheduler, debounce time.Duration, logger *slog.Logger) *Synchronizer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Synchronizer{
		clock:     clk,
		ids:       ids,
		mirror:    mirror,
		remote:    remote,
		sched:     sched,
		debounce:  debounce,
		logger:    logger,
		responses: domain.Responses{},
		current:   domain.MainOrder[0],
	}
}

// Hydrate loads the local mirror into memory. A corrupt responses payload is
// logged and treated as no saved data.
func (s *Synchronizer) Hydrate(ctx context.Context) (Snapshot, error) {
	rawResponses, ok, err := s.mirror.Get(ctx, KeyResponses)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read mirrored responses: %w", err)
	}
	responses := domain.Responses{}
	if ok {
		decoded, err := domain.DecodeResponses(rawResponses)
		if err != nil {
			s.logger.Warn("discarding corrupt local responses", "error", err)
		} else {
			responses = decoded
		}
	}

	current := domain.MainOrder[0]
	rawSection, ok, err := s.mirror.Get(ctx, KeyCurrentSection)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read mirrored section: %w", err)
	}
	if ok && domain.IsMainSection(rawSection) {
		current = domain.Section(rawSection)
	}

	sessionID, _, err := s.mirror.Get(ctx, KeySessionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read session id: %w", err)
	}
	navigated, _, err := s.mirror.Get(ctx, KeyNavigatedAway)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read navigated flag: %w", err)
	}
	completed, _, err := s.mirror.Get(ctx, KeyCompleted)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read completed flag: %w", err)
	}

	s.mu.Lock()
	s.responses = responses
	s.current = current
	s.sessionID = sessionID
	s.mu.Unlock()

	s.logger.Debug("hydrated survey state", "sections", len(responses), "current_section", current, "session_id", sessionID)
	return Snapshot{
		Responses:      responses.Clone(),
		CurrentSection: current,
		SessionID:      sessionID,
		NavigatedAway:  navigated == "true",
		Completed:      completed == "true",
	}, nil
}

func (s *Synchronizer) Responses() domain.Responses {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses.Clone()
}

// UpdateResponses replaces the answers of section, mirrors the full map and
// re-arms the debounced push. Mirror failures are returned. Answers that
// cannot be encoded leave the in-memory state untouched.
func (s *Synchronizer) UpdateResponses(ctx context.Context, section domain.Section, data domain.Answers) error {
	if !domain.IsMainSection(string(section)) {
		return fmt.Errorf("unknown section %q", section)
	}
	s.mu.Lock()
	next := s.responses.Clone()
	next[section] = data.Clone()
	encoded, err := next.Encode()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	s.responses = next
	s.mu.Unlock()
	if err := s.mirror.Set(ctx, KeyResponses, encoded); err != nil {
		return fmt.Errorf("mirror responses: %w", err)
	}
	s.arm()
	return nil
}

// SetCurrentSection records the active main section in the local mirror.
func (s *Synchronizer) SetCurrentSection(ctx context.Context, section domain.Section) error {
	s.mu.Lock()
	s.current = section
	s.mu.Unlock()
	if err := s.mirror.Set(ctx, KeyCurrentSection, string(section)); err != nil {
		return fmt.Errorf("mirror current section: %w", err)
	}
	return nil
}

func (s *Synchronizer) SetNavigatedAway(ctx context.Context, navigated bool) error {
	if !navigated {
		return s.mirror.Remove(ctx, KeyNavigatedAway)
	}
	return s.mirror.Set(ctx, KeyNavigatedAway, "true")
}

func (s *Synchronizer) arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.pending != nil {
		s.pending.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending = s.sched.AfterFunc(s.debounce, func() { s.debounceFired(gen) })
}

func (s *Synchronizer) debounceFired(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()
	_ = s.PushRemote(context.Background())
}

// PushRemote upserts the current responses. It is a no-op while nothing has
// been answered. Failures are logged, recorded in the status and returned;
// no retry is scheduled.
func (s *Synchronizer) PushRemote(ctx context.Context) error {
	_, err := s.push(ctx)
	return err
}

// push reports the session id the upsert ran under, or "" when nothing was
// pushed.
func (s *Synchronizer) push(ctx context.Context) (string, error) {
	s.mu.Lock()
	if len(s.responses) == 0 {
		s.mu.Unlock()
		return "", nil
	}
	sessionID, err := s.ensureSessionIDLocked(ctx)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	draft := surveyout.Draft{SessionID: sessionID, Sections: s.responses.Clone(), CurrentSection: s.current}
	s.inFlight++
	s.mu.Unlock()

	err = s.remote.Upsert(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if err != nil {
		s.lastErr = err
		s.logger.Warn("remote save failed", "session_id", sessionID, "error", err)
		return "", fmt.Errorf("push responses: %w", err)
	}
	s.lastErr = nil
	s.lastSaved = s.clock.Now()
	s.logger.Debug("remote save complete", "session_id", sessionID, "sections", len(draft.Sections))
	return sessionID, nil
}

// PushAsync starts a tracked background push.
func (s *Synchronizer) PushAsync() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		_ = s.PushRemote(context.Background())
	}()
}

// MarkCompleted records completion locally and, in the background, pushes
// the final answers and flips the remote status. Remote failures are only
// logged.
func (s *Synchronizer) MarkCompleted(ctx context.Context) error {
	if err := s.mirror.Set(ctx, KeyCompleted, "true"); err != nil {
		return fmt.Errorf("mirror completed flag: %w", err)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		bg := context.Background()
		sessionID, err := s.push(bg)
		if err != nil || sessionID == "" {
			return
		}
		if err := s.remote.MarkCompleted(bg, sessionID); err != nil {
			s.logger.Warn("mark completed failed", "session_id", sessionID, "error", err)
			return
		}
		s.logger.Info("survey completed", "session_id", sessionID)
	}()
	return nil
}

// Reset discards every answer, the mirror entries and the cached session id.
// In-flight pushes are left to finish.
func (s *Synchronizer) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
	s.responses = domain.Responses{}
	s.current = domain.MainOrder[0]
	s.sessionID = ""
	s.lastSaved = time.Time{}
	s.lastErr = nil
	s.mu.Unlock()
	if err := s.mirror.Remove(ctx, KeyResponses, KeyCurrentSection, KeySessionID, KeyNavigatedAway, KeyCompleted); err != nil {
		return fmt.Errorf("clear local mirror: %w", err)
	}
	s.logger.Info("survey reset")
	return nil
}

func (s *Synchronizer) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SaveStatus{IsSaving: s.inFlight > 0, LastSaved: s.lastSaved, LastError: s.lastErr, SessionID: s.sessionID}
}

// Remote fetches the server copy of this session. It reports false when
// no session id has been assigned yet.
func (s *Synchronizer) Remote(ctx context.Context) (surveyout.RemoteRecord, bool, error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == "" {
		return surveyout.RemoteRecord{}, false, nil
	}
	record, err := s.remote.Fetch(ctx, sessionID)
	if err != nil {
		return surveyout.RemoteRecord{}, false, err
	}
	return record, true, nil
}

// Close cancels the pending debounce without firing it and waits for
// background pushes to finish.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until background pushes started so far have finished.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

func (s *Synchronizer) ensureSessionIDLocked(ctx context.Context) (string, error) {
	if s.sessionID != "" {
		return s.sessionID, nil
	}
	sessionID := s.ids.New()
	if err := s.mirror.Set(ctx, KeySessionID, sessionID); err != nil {
		return "", fmt.Errorf("mirror session id: %w", err)
	}
	s.sessionID = sessionID
	return sessionID, nil
}

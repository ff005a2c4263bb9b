package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"kreosurvey/internal/modules/survey/domain"
	surveyout "kreosurvey/internal/modules/survey/port/out"
	"kreosurvey/internal/modules/survey/service"
	apperrors "kreosurvey/internal/platform/errors"
	"kreosurvey/internal/platform/logging"
	"kreosurvey/internal/platform/schedule"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

type memoryMirror struct {
	mu     sync.Mutex
	values map[string]string
	failOn string
}

func newMemoryMirror() *memoryMirror {
	return &memoryMirror{values: map[string]string{}}
}

func (m *memoryMirror) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryMirror) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failOn {
		return errors.New("disk full")
	}
	m.values[key] = value
	return nil
}

func (m *memoryMirror) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type fakeRemote struct {
	mu        sync.Mutex
	drafts    []surveyout.Draft
	completed []string
	err       error
}

func (f *fakeRemote) Upsert(_ context.Context, draft surveyout.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.drafts = append(f.drafts, draft)
	return nil
}

func (f *fakeRemote) MarkCompleted(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.completed = append(f.completed, sessionID)
	return nil
}

func (f *fakeRemote) Fetch(_ context.Context, sessionID string) (surveyout.RemoteRecord, error) {
	return surveyout.RemoteRecord{SessionID: sessionID, CompletionStatus: "in_progress"}, nil
}

func (f *fakeRemote) pushes() []surveyout.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]surveyout.Draft(nil), f.drafts...)
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSync(mirror *memoryMirror, remote *fakeRemote, sched schedule.Scheduler) *service.Synchronizer {
	return service.NewSynchronizer(fakeClock{now: t0}, fakeID{}, mirror, remote, sched, 10*time.Second, logging.Discard())
}

func TestRapidUpdatesProduceOneDebouncedPush(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sched := schedule.NewManual()
	remote := &fakeRemote{}
	s := newSync(newMemoryMirror(), remote, sched)

	if err := s.UpdateResponses(ctx, domain.SectionGamingHabits, domain.Answers{"hours_per_week": float64(5)}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	sched.Advance(2 * time.Second)
	if err := s.UpdateResponses(ctx, domain.SectionGamingHabits, domain.Answers{"hours_per_week": float64(9)}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	sched.Advance(8 * time.Second)
	if got := len(remote.pushes()); got != 0 {
		t.Fatalf("first timer must have been cancelled, got %d pushes", got)
	}
	sched.Advance(2 * time.Second)
	pushes := remote.pushes()
	if len(pushes) != 1 {
		t.Fatalf("expected exactly one push at the 10s mark, got %d", len(pushes))
	}
	if got := pushes[0].Sections[domain.SectionGamingHabits]["hours_per_week"]; got != float64(9) {
		t.Fatalf("expected second payload to win, got %v", got)
	}
	sched.Advance(time.Minute)
	if got := len(remote.pushes()); got != 1 {
		t.Fatalf("no further pushes expected, got %d", got)
	}
	if st := s.Status(); !st.LastSaved.Equal(t0) || st.IsSaving {
		t.Fatalf("expected saved status at t0, got %+v", st)
	}
}

func TestPushRemoteWithEmptyResponsesIsNoop(t *testing.T) {
	t.Parallel()
	mirror := newMemoryMirror()
	remote := &fakeRemote{}
	s := newSync(mirror, remote, schedule.NewManual())
	if err := s.PushRemote(context.Background()); err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(remote.pushes()) != 0 {
		t.Fatalf("empty responses must not create a remote record")
	}
	if _, ok := mirror.values[service.KeySessionID]; ok {
		t.Fatalf("session id must not be assigned before the first real push")
	}
}

func TestUpdateThenHydrateRoundTrips(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mirror := newMemoryMirror()
	data := domain.Answers{"platforms": []string{"PC", "Mobile"}, "favorite_game": `He said "go"`, "play_mode": "Solo"}
	first := newSync(mirror, &fakeRemote{}, schedule.NewManual())
	if err := first.UpdateResponses(ctx, domain.SectionGamingPreferences, data); err != nil {
		t.Fatalf("update: %v", err)
	}
	first.Close()

	reloaded := newSync(mirror, &fakeRemote{}, schedule.NewManual())
	snap, err := reloaded.Hydrate(ctx)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if !reflect.DeepEqual(snap.Responses[domain.SectionGamingPreferences], data) {
		t.Fatalf("expected %v after reload, got %v", data, snap.Responses[domain.SectionGamingPreferences])
	}
}

func TestHydrateTreatsCorruptMirrorAsEmpty(t *testing.T) {
	t.Parallel()
	mirror := newMemoryMirror()
	mirror.values[service.KeyResponses] = "{broken"
	mirror.values[service.KeyCurrentSection] = "not_a_section"
	s := newSync(mirror, &fakeRemote{}, schedule.NewManual())
	snap, err := s.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("hydrate must not fail on corrupt data: %v", err)
	}
	if len(snap.Responses) != 0 || snap.CurrentSection != domain.SectionDemographics {
		t.Fatalf("expected empty state at first section, got %+v", snap)
	}
}

func TestPushFailureKeepsStateAndLastSaved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mirror := newMemoryMirror()
	remote := &fakeRemote{err: errors.New("offline")}
	s := newSync(mirror, remote, schedule.NewManual())
	if err := s.UpdateResponses(ctx, domain.SectionDemographics, domain.Answers{"age": float64(20)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.PushRemote(ctx); err == nil {
		t.Fatalf("expected push error to be reported to direct callers")
	}
	st := s.Status()
	if !st.LastSaved.IsZero() || st.LastError == nil {
		t.Fatalf("expected unsaved status with error, got %+v", st)
	}
	if _, ok := mirror.values[service.KeyResponses]; !ok {
		t.Fatalf("local mirror must survive remote failure")
	}
	if len(s.Responses()) != 1 {
		t.Fatalf("in-memory responses must survive remote failure")
	}

	remote.mu.Lock()
	remote.err = nil
	remote.mu.Unlock()
	if err := s.PushRemote(ctx); err != nil {
		t.Fatalf("recovered push: %v", err)
	}
	if st := s.Status(); st.LastError != nil || st.LastSaved.IsZero() {
		t.Fatalf("expected recovered status, got %+v", st)
	}
}

func TestMirrorWriteFailurePropagates(t *testing.T) {
	t.Parallel()
	mirror := newMemoryMirror()
	mirror.failOn = service.KeyResponses
	s := newSync(mirror, &fakeRemote{}, schedule.NewManual())
	if err := s.UpdateResponses(context.Background(), domain.SectionDemographics, domain.Answers{"age": float64(20)}); err == nil {
		t.Fatalf("expected mirror failure to propagate")
	}
}

func TestSessionIDIsStableUntilReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mirror := newMemoryMirror()
	remote := &fakeRemote{}
	s := newSync(mirror, remote, schedule.NewManual())
	_ = s.UpdateResponses(ctx, domain.SectionDemographics, domain.Answers{"age": float64(20)})
	_ = s.PushRemote(ctx)
	_ = s.PushRemote(ctx)
	pushes := remote.pushes()
	if len(pushes) != 2 || pushes[0].SessionID != "sess-1" || pushes[1].SessionID != "sess-1" {
		t.Fatalf("expected two pushes under the same id, got %+v", pushes)
	}
	if mirror.values[service.KeySessionID] != "sess-1" {
		t.Fatalf("session id must be cached in the mirror")
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(s.Responses()) != 0 || s.Status().SessionID != "" {
		t.Fatalf("reset must clear responses and session id")
	}
	for _, key := range []string{service.KeyResponses, service.KeyCurrentSection, service.KeySessionID} {
		if _, ok := mirror.values[key]; ok {
			t.Fatalf("reset must clear mirror key %s", key)
		}
	}
}

func TestResetCancelsPendingDebounce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sched := schedule.NewManual()
	remote := &fakeRemote{}
	s := newSync(newMemoryMirror(), remote, sched)
	_ = s.UpdateResponses(ctx, domain.SectionDemographics, domain.Answers{"age": float64(20)})
	_ = s.Reset(ctx)
	sched.Advance(time.Minute)
	if len(remote.pushes()) != 0 {
		t.Fatalf("reset must cancel the pending push")
	}
}

func TestCloseCancelsDebounceWithoutFiring(t *testing.T) {
	t.Parallel()
	sched := schedule.NewManual()
	remote := &fakeRemote{}
	s := newSync(newMemoryMirror(), remote, sched)
	_ = s.UpdateResponses(context.Background(), domain.SectionDemographics, domain.Answers{"age": float64(20)})
	s.Close()
	sched.Advance(time.Minute)
	if len(remote.pushes()) != 0 {
		t.Fatalf("teardown must clear the timer without firing")
	}
	if sched.Pending() != 0 {
		t.Fatalf("expected no pending timers after close")
	}
}

func TestMarkCompletedPushesThenMarks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mirror := newMemoryMirror()
	remote := &fakeRemote{}
	s := newSync(mirror, remote, schedule.NewManual())
	_ = s.UpdateResponses(ctx, domain.SectionFutureGaming, domain.Answers{"next_purchase": "Mouse"})
	if err := s.MarkCompleted(ctx); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	s.Wait()
	if len(remote.pushes()) != 1 || len(remote.completed) != 1 || remote.completed[0] != "sess-1" {
		t.Fatalf("expected final push and completion, got pushes=%d completed=%v", len(remote.pushes()), remote.completed)
	}
	if mirror.values[service.KeyCompleted] != "true" {
		t.Fatalf("expected completion flag in mirror")
	}
}

func TestMarkCompletedSwallowsRemoteFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	remote := &fakeRemote{err: errors.New("offline")}
	s := newSync(newMemoryMirror(), remote, schedule.NewManual())
	_ = s.UpdateResponses(ctx, domain.SectionFutureGaming, domain.Answers{"next_purchase": "Mouse"})
	if err := s.MarkCompleted(ctx); err != nil {
		t.Fatalf("remote failure must not surface: %v", err)
	}
	s.Wait()
	if len(remote.completed) != 0 {
		t.Fatalf("nothing should be recorded while offline")
	}
}

func TestUpdateRejectsNonFiniteNumberWithoutCommitting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mirror := newMemoryMirror()
	s := newSync(mirror, &fakeRemote{}, schedule.NewManual())
	first := domain.Answers{"age": float64(20), "gender": "Male"}
	if err := s.UpdateResponses(ctx, domain.SectionDemographics, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	saved := mirror.values[service.KeyResponses]

	err := s.UpdateResponses(ctx, domain.SectionDemographics, domain.Answers{"age": math.NaN(), "gender": "Male"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if got := s.Responses()[domain.SectionDemographics]; !reflect.DeepEqual(got, first) {
		t.Fatalf("rejected update must leave %v in memory, got %v", first, got)
	}
	if mirror.values[service.KeyResponses] != saved {
		t.Fatalf("rejected update must not touch the mirror")
	}
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (g *seqID) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("sess-%d", g.n)
}

// hookedRemote runs onFirstUpsert once, before the first upsert is recorded.
type hookedRemote struct {
	*fakeRemote
	once          sync.Once
	onFirstUpsert func()
}

func (h *hookedRemote) Upsert(ctx context.Context, draft surveyout.Draft) error {
	h.once.Do(h.onFirstUpsert)
	return h.fakeRemote.Upsert(ctx, draft)
}

func TestMarkCompletedMarksTheSessionItPushed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := &fakeRemote{}
	remote := &hookedRemote{fakeRemote: base}
	s := service.NewSynchronizer(fakeClock{now: t0}, &seqID{}, newMemoryMirror(), remote, schedule.NewManual(), 10*time.Second, logging.Discard())
	t.Cleanup(s.Close)

	remote.onFirstUpsert = func() {
		if err := s.Reset(ctx); err != nil {
			t.Errorf("reset: %v", err)
			return
		}
		if err := s.UpdateResponses(ctx, domain.SectionDemographics, domain.Answers{"age": float64(30)}); err != nil {
			t.Errorf("update after reset: %v", err)
			return
		}
		if err := s.PushRemote(ctx); err != nil {
			t.Errorf("push after reset: %v", err)
		}
	}
	if err := s.UpdateResponses(ctx, domain.SectionFutureGaming, domain.Answers{"next_purchase": "Mouse"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.MarkCompleted(ctx); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	s.Wait()

	base.mu.Lock()
	defer base.mu.Unlock()
	if !reflect.DeepEqual(base.completed, []string{"sess-1"}) {
		t.Fatalf("expected only the pushed session marked, got %v", base.completed)
	}
	if len(base.drafts) != 2 || base.drafts[0].SessionID != "sess-2" || base.drafts[1].SessionID != "sess-1" {
		t.Fatalf("unexpected upsert order %+v", base.drafts)
	}
}

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"nativo/api"
	"nativo/quota"
	"nativo/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeCues struct {
	mu     sync.Mutex
	starts int
	stops  int
	errs   int
}

func (f *fakeCues) Start() { f.mu.Lock(); f.starts++; f.mu.Unlock() }
func (f *fakeCues) Stop()  { f.mu.Lock(); f.stops++; f.mu.Unlock() }
func (f *fakeCues) Error() { f.mu.Lock(); f.errs++; f.mu.Unlock() }

func (f *fakeCues) counts() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops, f.errs
}

type fakeRecorder struct {
	data     []byte
	startErr error

	mu      sync.Mutex
	started int
	stopped int
}

func (r *fakeRecorder) Start() error {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
	return r.startErr
}

func (r *fakeRecorder) Stop() ([]byte, string, uint64, error) {
	r.mu.Lock()
	r.stopped++
	r.mu.Unlock()
	return r.data, "flac", uint64(len(r.data) / 2), nil
}

// recSink records display events for assertions.
type recSink struct {
	mu             sync.Mutex
	results        []Result
	quotaExhausted int
	errors         []string
	notices        []string
	ticks          []int
	starts, stops  int
}

func (s *recSink) RecordingStart(Side) { s.mu.Lock(); s.starts++; s.mu.Unlock() }
func (s *recSink) RecordingStop(Side)  { s.mu.Lock(); s.stops++; s.mu.Unlock() }
func (s *recSink) RecordingTick(_ Side, remaining int) {
	s.mu.Lock()
	s.ticks = append(s.ticks, remaining)
	s.mu.Unlock()
}
func (s *recSink) Translation(r Result) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
}
func (s *recSink) QuotaChanged(quota.Snapshot) {}
func (s *recSink) QuotaExhausted()             { s.mu.Lock(); s.quotaExhausted++; s.mu.Unlock() }
func (s *recSink) Notice(text string) {
	s.mu.Lock()
	s.notices = append(s.notices, text)
	s.mu.Unlock()
}
func (s *recSink) Error(text string) {
	s.mu.Lock()
	s.errors = append(s.errors, text)
	s.mu.Unlock()
}

type fixture struct {
	session *Session
	backend *api.Fake
	quota   *quota.Store
	kv      *store.Memory
	clock   *fakeClock
	cues    *fakeCues
	sink    *recSink
	rec     *fakeRecorder
}

func newFixture(t *testing.T, devMode bool) *fixture {
	t.Helper()
	f := &fixture{
		backend: &api.Fake{},
		kv:      store.NewMemory(),
		clock:   newFakeClock(),
		cues:    &fakeCues{},
		sink:    &recSink{},
		rec:     &fakeRecorder{data: []byte("pcm-bytes")},
	}
	f.backend.Quota = quota.Snapshot{CreditsLeft: 10, SecsPerCredit: 10, RemainingScans: 3}
	f.quota = quota.NewStore(f.backend)
	f.quota.SetClock(f.clock.Now)
	if _, err := f.quota.ForceRefresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.session = New(Options{
		Backend:     f.backend,
		Quota:       f.quota,
		Store:       f.kv,
		Sink:        f.sink,
		Cues:        f.cues,
		NewRecorder: func() (Recorder, error) { return f.rec, nil },
		DevMode:     devMode,
		Now:         f.clock.Now,
	})
	return f
}

func (f *fixture) lock(t *testing.T) {
	t.Helper()
	locked, err := f.session.ToggleLock()
	if err != nil || !locked {
		t.Fatalf("ToggleLock = %v, %v", locked, err)
	}
}

// Package session holds the client-side workflow: the language pair and
// its lock, the two recording lanes, submission of voice/text/photo
// translations, and the purchase flow. It talks to the backend through
// small interfaces so every collaborator can be faked in tests.
package session

import (
	"context"
	"sync"
	"time"

	"nativo/api"
	"nativo/lang"
	"nativo/log"
	"nativo/quota"
	"nativo/store"
)

// Backend is the slice of the API client the session consumes.
type Backend interface {
	TranslateText(ctx context.Context, req api.TextRequest) (*api.Result, error)
	UploadAudio(ctx context.Context, req api.AudioRequest) (*api.Result, error)
	TranslateImage(ctx context.Context, req api.ImageRequest) (*api.Result, error)
	BuyPack(ctx context.Context, plan string) (*api.PurchaseResult, error)
}

// Recorder captures one stretch of microphone audio and returns it in
// an upload-ready container.
type Recorder interface {
	Start() error
	// Stop finalizes the capture. frames is the raw sample count, used
	// for billing duration.
	Stop() (data []byte, format string, frames uint64, err error)
}

// RecorderFactory builds a fresh Recorder per recording cycle.
type RecorderFactory func() (Recorder, error)

// Cues plays the short feedback tones around a recording.
type Cues interface {
	Start()
	Stop()
	Error()
}

// NopCues is silent.
type NopCues struct{}

func (NopCues) Start() {}
func (NopCues) Stop()  {}
func (NopCues) Error() {}

// TTSPlayer plays synthesized speech returned by the backend.
type TTSPlayer interface {
	Play(ctx context.Context, url string) error
}

// debounceWindow absorbs duplicate taps on the lane triggers.
const debounceWindow = 500 * time.Millisecond

type Options struct {
	Backend     Backend
	Quota       *quota.Store
	Store       store.KV
	Sink        EventSink
	Cues        Cues
	Player      TTSPlayer
	NewRecorder RecorderFactory
	DevMode     bool
	Now         func() time.Time
}

// Session is the coordinator. All exported methods are safe for
// concurrent use; blocking backend calls run without the lock held.
type Session struct {
	backend Backend
	quota   *quota.Store
	kv      store.KV
	sink    EventSink
	cues    Cues
	player  TTSPlayer
	newRec  RecorderFactory
	devMode bool
	now     func() time.Time

	mu          sync.Mutex
	pair        lang.Pair
	locked      bool
	inFlight    bool
	buying      bool
	lastAction  time.Time
	settings    store.Settings
	lanes       [2]*lane
	lastResult  *Result
	submissions int
}

func New(opts Options) *Session {
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	if opts.Cues == nil {
		opts.Cues = NopCues{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	s := &Session{
		backend: opts.Backend,
		quota:   opts.Quota,
		kv:      opts.Store,
		sink:    opts.Sink,
		cues:    opts.Cues,
		player:  opts.Player,
		newRec:  opts.NewRecorder,
		devMode: opts.DevMode,
		now:     opts.Now,
	}
	s.pair = lang.DefaultPair()
	if p, ok := store.LoadLangPair(opts.Store); ok {
		if left, found := lang.ByCode(p.Source); found {
			s.pair.Left = left
		}
		if right, found := lang.ByCode(p.Target); found && right.Code != s.pair.Left.Code {
			s.pair.Right = right
		}
	}
	s.settings = store.LoadSettings(opts.Store)
	s.lanes[Left] = &lane{side: Left}
	s.lanes[Right] = &lane{side: Right}
	return s
}

func (s *Session) Pair() lang.Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *Session) Settings() store.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings and persists them. Persistence
// failure is logged, the in-memory update still applies.
func (s *Session) UpdateSettings(cfg store.Settings) {
	s.mu.Lock()
	s.settings = cfg
	s.mu.Unlock()
	if err := store.SaveSettings(s.kv, cfg); err != nil {
		log.Warnf("saving settings: %v", err)
	}
}

// LastResult returns the most recent successful translation, if any.
func (s *Session) LastResult() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResult == nil {
		return Result{}, false
	}
	return *s.lastResult, true
}

// Submissions counts completed successful translations this session.
func (s *Session) Submissions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions
}

// SelectLeft changes the left language. Refused while locked and when
// it would collide with the right side.
func (s *Session) SelectLeft(code string) error {
	return s.selectSide(code, true)
}

func (s *Session) SelectRight(code string) error {
	return s.selectSide(code, false)
}

func (s *Session) selectSide(code string, left bool) error {
	l, ok := lang.ByCode(code)
	if !ok {
		return lang.ErrInvalidSelection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return ErrBusy
	}
	if left {
		return s.pair.SelectLeft(l)
	}
	return s.pair.SelectRight(l)
}

// SwapPair exchanges the two sides. Refused while locked.
func (s *Session) SwapPair() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return ErrBusy
	}
	s.pair.Swap()
	return nil
}

// ToggleLock flips the session lock. Refused while any lane countdown
// is running or a submission is in flight, so an in-progress capture
// never loses its pair. Locking persists the pair, best-effort.
func (s *Session) ToggleLock() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ln := range s.lanes {
		if ln.countdownActive() {
			return s.locked, ErrBusy
		}
	}
	if s.inFlight {
		return s.locked, ErrBusy
	}

	s.locked = !s.locked
	if s.locked {
		if err := store.SaveLangPair(s.kv, s.pair.Left.Code, s.pair.Right.Code); err != nil {
			log.Warnf("persisting language pair: %v", err)
		}
	}
	return s.locked, nil
}

package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"nativo/api"
	"nativo/quota"
	"nativo/store"
)

func TestStartRequiresLock(t *testing.T) {
	f := newFixture(t, false)

	// Unlocked tap is a selection gesture, not an error.
	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatalf("unlocked tap: %v", err)
	}
	if f.session.Recording(Left) {
		t.Error("lane recording without lock")
	}
	if f.rec.started != 0 {
		t.Error("recorder started without lock")
	}
}

func TestRecordStopSubmit(t *testing.T) {
	// Full happy path: lock, arm left, five ticks, auto-stop, submit.
	f := newFixture(t, false)
	f.backend.AudioResult = &api.Result{Success: true, Original: "hi", Translated: "hola"}
	f.lock(t)

	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !f.session.Recording(Left) {
		t.Fatal("lane should be recording")
	}
	if got := f.session.Countdown(Left); got != 5 {
		t.Fatalf("countdown = %d, want 5", got)
	}

	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Second)
		f.session.Tick(context.Background(), Left)
	}

	if f.session.Recording(Left) {
		t.Error("lane still recording after countdown expiry")
	}
	if len(f.backend.Calls.Audio) != 1 {
		t.Fatalf("audio submissions = %d, want 1", len(f.backend.Calls.Audio))
	}
	req := f.backend.Calls.Audio[0]
	if req.SourceLanguage != "english" || req.TargetLanguage != "spanish" {
		t.Errorf("pair = %s -> %s", req.SourceLanguage, req.TargetLanguage)
	}
	if req.DurationSec != 5 {
		t.Errorf("durationSec = %d, want 5", req.DurationSec)
	}

	starts, stops, errs := f.cues.counts()
	if starts != 1 || stops != 1 || errs != 0 {
		t.Errorf("cues = %d/%d/%d", starts, stops, errs)
	}
	if len(f.sink.results) != 1 || f.sink.results[0].Translated != "hola" {
		t.Errorf("results = %+v", f.sink.results)
	}

	entries := store.History(f.kv)
	if len(entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(entries))
	}
	if e := entries[0]; e.From != "Am English" || e.To != "LA Spanish" || e.Type != "voice" {
		t.Errorf("history entry = %+v", e)
	}
}

func TestStopSequenceRunsOnce(t *testing.T) {
	// Countdown expiry and a burst of concurrent stop taps on the same
	// cycle must produce exactly one stop sequence.
	f := newFixture(t, false)
	f.backend.AudioResult = &api.Result{Success: true, Original: "a", Translated: "b"}
	f.lock(t)

	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.session.StartStop(context.Background(), Left)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			f.session.Tick(context.Background(), Left)
		}
	}()
	wg.Wait()

	if f.rec.stopped != 1 {
		t.Errorf("recorder stops = %d, want 1", f.rec.stopped)
	}
	if len(f.backend.Calls.Audio) != 1 {
		t.Errorf("submissions = %d, want 1", len(f.backend.Calls.Audio))
	}
	_, stops, _ := f.cues.counts()
	if stops != 1 {
		t.Errorf("stop cues = %d, want 1", stops)
	}
}

func TestLockRefusedWhileCountdownActive(t *testing.T) {
	f := newFixture(t, false)
	f.lock(t)
	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatal(err)
	}

	locked, err := f.session.ToggleLock()
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
	if !locked {
		t.Error("locked changed while lane active")
	}
	if !f.session.Locked() {
		t.Error("session unlocked mid-recording")
	}
}

func TestOppositeLaneDisabledWhileRecording(t *testing.T) {
	f := newFixture(t, false)
	f.lock(t)
	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(time.Second) // past the debounce window
	if err := f.session.StartStop(context.Background(), Right); !errors.Is(err, ErrBusy) {
		t.Fatalf("right lane start = %v, want ErrBusy", err)
	}
	if f.session.Recording(Right) {
		t.Error("both lanes recording")
	}
}

func TestDebounceAbsorbsDoubleTap(t *testing.T) {
	f := newFixture(t, false)
	f.backend.AudioResult = &api.Result{Success: true}
	f.lock(t)

	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatal(err)
	}
	// Finish the cycle so the lane is idle again.
	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Second)
		f.session.Tick(context.Background(), Left)
	}

	// A tap right after the stop lands inside the debounce window.
	f.clock.Advance(100 * time.Millisecond)
	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatal(err)
	}
	if f.session.Recording(Left) {
		t.Error("debounced tap started a recording")
	}

	f.clock.Advance(time.Second)
	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatal(err)
	}
	if !f.session.Recording(Left) {
		t.Error("tap outside debounce window should record")
	}
}

func TestCountdownCappedByQuota(t *testing.T) {
	f := newFixture(t, false)
	f.backend.Quota = quota.Snapshot{CreditsLeft: 1, SecsPerCredit: 3}
	if _, err := f.quota.ForceRefresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	f.lock(t)

	if err := f.session.StartStop(context.Background(), Left); err != nil {
		t.Fatal(err)
	}
	if got := f.session.Countdown(Left); got != 3 {
		t.Errorf("countdown = %d, want quota-capped 3", got)
	}
}

func TestStartRefusedWhenOutOfQuota(t *testing.T) {
	f := newFixture(t, false)
	f.backend.Quota = quota.Snapshot{}
	if _, err := f.quota.ForceRefresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	f.lock(t)

	err := f.session.StartStop(context.Background(), Left)
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("err = %v, want ErrQuotaExhausted", err)
	}
	if f.sink.quotaExhausted != 1 {
		t.Errorf("quota exhausted signals = %d, want 1", f.sink.quotaExhausted)
	}
	if f.rec.started != 0 {
		t.Error("recorder started with zero balance")
	}
}

func TestRecordingOnlyWhenLockedRandomized(t *testing.T) {
	f := newFixture(t, false)
	f.backend.AudioResult = &api.Result{Success: true}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0:
			f.session.ToggleLock()
		case 1:
			side := Side(rng.Intn(2))
			wasLocked := f.session.Locked()
			wasRecording := f.session.Recording(side)
			f.session.StartStop(context.Background(), side)
			if !wasLocked && !wasRecording && f.session.Recording(side) {
				t.Fatal("entered recording while unlocked")
			}
		case 2:
			f.session.Tick(context.Background(), Side(rng.Intn(2)))
		case 3:
			f.clock.Advance(time.Duration(rng.Intn(1500)) * time.Millisecond)
		}
		if f.session.Recording(Left) && f.session.Recording(Right) {
			t.Fatal("both lanes recording at once")
		}
	}
}

package session

import (
	"context"
	"math"
	"sync"

	"nativo/log"
)

type laneState int

const (
	laneIdle laneState = iota
	laneArming
	laneRecording
	laneStopping
)

// lane is one recording slot. Two exist, left and right, but only one
// may be recording or submitting at a time (serialize policy). All
// fields are guarded by the session mutex.
type lane struct {
	side      Side
	state     laneState
	countdown int
	armedAt   int64 // unix nanos at arm time
	rec       Recorder
	stopOnce  *sync.Once
}

func (ln *lane) countdownActive() bool {
	return ln.state != laneIdle
}

// Countdown returns the remaining seconds for the lane, or -1 when it
// is not recording.
func (s *Session) Countdown(side Side) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ln := s.lanes[side]
	if ln.state != laneRecording {
		return -1
	}
	return ln.countdown
}

func (s *Session) Recording(side Side) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lanes[side].state == laneRecording
}

// StartStop is the lane tap handler. While unlocked the tap is a
// selection gesture and does nothing here. Locked and idle, it arms the
// lane; locked and recording, it stops now.
func (s *Session) StartStop(ctx context.Context, side Side) error {
	s.mu.Lock()
	if !s.locked {
		s.mu.Unlock()
		return nil
	}
	ln := s.lanes[side]
	if ln.state == laneRecording {
		s.lastAction = s.now()
		s.mu.Unlock()
		return s.stopLane(ctx, ln)
	}
	if ln.state != laneIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	other := s.lanes[1-side]
	if other.state != laneIdle || s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	now := s.now()
	if !s.lastAction.IsZero() && now.Sub(s.lastAction) < debounceWindow {
		s.mu.Unlock()
		return nil
	}

	snap := s.quota.Get()
	if !s.devMode && s.quota.Fetched() && snap.OutOfQuota() {
		s.mu.Unlock()
		s.sink.QuotaExhausted()
		return ErrQuotaExhausted
	}

	countdown := s.settings.RecordDuration
	if countdown <= 0 {
		countdown = 5
	}
	if !s.devMode {
		if left := snap.SecondsLeft(); left > 0 && left < countdown {
			countdown = left
		}
	}

	rec, err := s.newRec()
	if err != nil {
		s.mu.Unlock()
		s.cues.Error()
		s.sink.Error("microphone unavailable")
		return err
	}

	ln.state = laneArming
	ln.countdown = countdown
	ln.armedAt = now.UnixNano()
	ln.rec = rec
	ln.stopOnce = new(sync.Once)
	s.lastAction = now
	s.mu.Unlock()

	s.cues.Start()
	if err := rec.Start(); err != nil {
		s.mu.Lock()
		ln.state = laneIdle
		ln.rec = nil
		ln.stopOnce = nil
		s.mu.Unlock()
		s.cues.Error()
		s.sink.Error("recording failed to start")
		return err
	}

	s.mu.Lock()
	ln.state = laneRecording
	s.mu.Unlock()
	s.sink.RecordingStart(side)
	return nil
}

// Tick advances a lane's countdown by one second. The display ticker
// drives this; at zero the lane stops itself.
func (s *Session) Tick(ctx context.Context, side Side) {
	s.mu.Lock()
	ln := s.lanes[side]
	if ln.state != laneRecording {
		s.mu.Unlock()
		return
	}
	ln.countdown--
	remaining := ln.countdown
	s.mu.Unlock()

	s.sink.RecordingTick(side, remaining)
	if remaining <= 0 {
		s.stopLane(ctx, ln)
	}
}

// stopLane runs the stop sequence exactly once per recording cycle,
// whether triggered by countdown expiry or an explicit tap.
func (s *Session) stopLane(ctx context.Context, ln *lane) error {
	s.mu.Lock()
	once := ln.stopOnce
	s.mu.Unlock()
	if once == nil {
		return nil
	}
	var err error
	once.Do(func() {
		err = s.finishRecording(ctx, ln)
	})
	return err
}

func (s *Session) finishRecording(ctx context.Context, ln *lane) error {
	s.mu.Lock()
	ln.state = laneStopping
	rec := ln.rec
	armedAt := ln.armedAt
	side := ln.side
	s.mu.Unlock()

	s.cues.Stop()
	data, format, frames, recErr := rec.Stop()

	elapsed := int(math.Ceil(float64(s.now().UnixNano()-armedAt) / 1e9))
	if elapsed < 1 {
		elapsed = 1
	}

	// The lane returns to idle before submission; the inFlight guard
	// covers the network phase.
	s.mu.Lock()
	ln.state = laneIdle
	ln.countdown = 0
	ln.rec = nil
	ln.stopOnce = nil
	s.lastAction = s.now()
	s.mu.Unlock()

	s.sink.RecordingStop(side)

	if recErr != nil {
		log.Errorf("finalizing recording: %v", recErr)
		s.cues.Error()
		s.sink.Error("recording failed")
		return recErr
	}
	if frames == 0 || len(data) == 0 {
		s.sink.Notice("nothing recorded")
		return nil
	}
	return s.SubmitVoice(ctx, side, data, format, elapsed)
}

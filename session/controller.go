package session

import (
	"context"
	"errors"
	"time"

	"nativo/api"
	"nativo/lang"
	"nativo/log"
	"nativo/store"
)

// usage binds the per-request inputs at submission time. Built fresh
// for every request, never retained.
type usage struct {
	source, target lang.Language
	settings       store.Settings
	durationSec    int
	kind           string
}

// beginSubmission runs the local quota pre-check and takes the
// in-flight slot. Callers must call endSubmission when done.
func (s *Session) beginSubmission(side Side, kind string, durationSec int, scan bool) (usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return usage{}, ErrBusy
	}
	if !s.devMode && s.quota.Fetched() {
		snap := s.quota.Get()
		if scan {
			if snap.RemainingScans <= 0 {
				return usage{}, ErrQuotaExhausted
			}
		} else if snap.OutOfQuota() {
			return usage{}, ErrQuotaExhausted
		}
	}

	source, target := s.pair.Source(side == Left)
	s.inFlight = true
	return usage{
		source:      source,
		target:      target,
		settings:    s.settings,
		durationSec: durationSec,
		kind:        kind,
	}, nil
}

func (s *Session) endSubmission() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// SubmitVoice sends a finished recording for speech translation.
func (s *Session) SubmitVoice(ctx context.Context, side Side, audio []byte, format string, durationSec int) error {
	u, err := s.beginSubmission(side, "voice", durationSec, false)
	if err != nil {
		return s.surface(err)
	}
	defer s.endSubmission()

	started := time.Now()
	res, callErr := s.backend.UploadAudio(ctx, api.AudioRequest{
		Audio:          audio,
		Format:         format,
		SourceLanguage: u.source.Code,
		TargetLanguage: u.target.Code,
		SpeakerGender:  u.settings.Speaker1Gender,
		ListenerGender: u.settings.Speaker2Gender,
		Formality:      u.settings.Formality,
		DurationSec:    durationSec,
	})
	return s.finishSubmission(ctx, u, res, callErr, started)
}

// SubmitText sends typed text for translation. Duration is estimated
// from length, five characters per second of speech.
func (s *Session) SubmitText(ctx context.Context, side Side, text string) error {
	est := (len(text) + 4) / 5
	if est < 1 {
		est = 1
	}
	u, err := s.beginSubmission(side, "text", est, false)
	if err != nil {
		return s.surface(err)
	}
	defer s.endSubmission()

	log.TranslationText(text)
	started := time.Now()
	res, callErr := s.backend.TranslateText(ctx, api.TextRequest{
		Text:           text,
		SourceLanguage: u.source.Code,
		TargetLanguage: u.target.Code,
		SpeakerGender:  u.settings.Speaker1Gender,
		ListenerGender: u.settings.Speaker2Gender,
		Formality:      u.settings.Formality,
		DurationSec:    est,
	})
	return s.finishSubmission(ctx, u, res, callErr, started)
}

// SubmitPhoto sends an image for OCR translation. Photos bill against
// the scan balance, not seconds.
func (s *Session) SubmitPhoto(ctx context.Context, image []byte, name string) error {
	u, err := s.beginSubmission(Left, "photo", 0, true)
	if err != nil {
		return s.surface(err)
	}
	defer s.endSubmission()

	started := time.Now()
	res, callErr := s.backend.TranslateImage(ctx, api.ImageRequest{
		Image:          image,
		Name:           name,
		SourceLanguage: u.source.Code,
		TargetLanguage: u.target.Code,
	})
	return s.finishSubmission(ctx, u, res, callErr, started)
}

// finishSubmission is the shared tail of the three entry points:
// classify, then on success display, autoplay, record history, and
// force a quota refresh. Exactly one user-facing signal per call.
func (s *Session) finishSubmission(ctx context.Context, u usage, res *api.Result, callErr error, started time.Time) error {
	totalMs := float64(time.Since(started)) / float64(time.Millisecond)

	if err := Classify(res, callErr, u.kind == "photo"); err != nil {
		log.Submission(u.kind, u.source.Code, u.target.Code, u.durationSec, totalMs, false)
		return s.surface(err)
	}

	result := Result{
		Original:    res.Original,
		Translated:  res.Translated,
		TTSAudioURL: res.TTSAudioURL,
		From:        u.source.Label,
		To:          u.target.Label,
		Kind:        u.kind,
	}

	s.mu.Lock()
	s.lastResult = &result
	s.submissions++
	s.mu.Unlock()

	log.Submission(u.kind, u.source.Code, u.target.Code, u.durationSec, totalMs, true)
	s.sink.Translation(result)

	if result.TTSAudioURL != "" && u.settings.Autoplay && s.player != nil {
		go func(url string) {
			if err := s.player.Play(context.Background(), url); err != nil {
				log.Warnf("tts playback: %v", err)
			}
		}(result.TTSAudioURL)
	}

	store.AddHistory(s.kv, store.HistoryEntry{
		Original:   result.Original,
		Translated: result.Translated,
		From:       result.From,
		To:         result.To,
		Type:       result.Kind,
		AudioURL:   result.TTSAudioURL,
	})

	s.refreshQuota(ctx, true)
	return nil
}

// surface turns a taxonomy error into its single user-facing signal.
func (s *Session) surface(err error) error {
	switch {
	case errors.Is(err, ErrQuotaExhausted):
		s.cues.Error()
		s.sink.QuotaExhausted()
	case errors.Is(err, ErrNoTextFound):
		s.sink.Notice("no text found in the image")
	case errors.Is(err, ErrNetwork):
		s.cues.Error()
		s.sink.Error("network error, check your connection")
	case errors.Is(err, ErrBusy):
		// Suppressed: the trigger is disabled, not an error state.
	default:
		s.cues.Error()
		s.sink.Error("translation failed, try again")
	}
	return err
}

// RefreshQuota refreshes through the cache window.
func (s *Session) RefreshQuota(ctx context.Context) {
	s.refreshQuota(ctx, false)
}

func (s *Session) refreshQuota(ctx context.Context, force bool) {
	var err error
	if force {
		_, err = s.quota.ForceRefresh(ctx)
	} else {
		_, err = s.quota.Refresh(ctx)
	}
	if err != nil {
		log.Warnf("quota refresh: %v", err)
		return
	}
	s.sink.QuotaChanged(s.quota.Get())
}

package session

import (
	"errors"
	"fmt"
	"strings"

	"nativo/api"
)

var (
	// ErrQuotaExhausted means the balance ran out, either detected
	// locally before the call or reported by the backend.
	ErrQuotaExhausted = errors.New("quota exhausted")

	// ErrTranslationFailed is the generic backend-side failure.
	ErrTranslationFailed = errors.New("translation failed")

	// ErrNoTextFound means OCR found nothing to translate in a photo.
	ErrNoTextFound = errors.New("no text found in image")

	// ErrNetwork means the request itself never completed.
	ErrNetwork = errors.New("network error")

	// ErrPurchaseFailed is the generic purchase failure. The user is
	// told they were not charged.
	ErrPurchaseFailed = errors.New("purchase failed")

	// ErrBusy means another recording or submission is in progress.
	ErrBusy = errors.New("session busy")
)

// Classify maps a backend response to the error taxonomy. The backend
// reports every failure as success:false with a free-text message, so
// quota exhaustion is detected by keyword. Keep the sniffing here and
// nowhere else.
func Classify(res *api.Result, err error, photo bool) error {
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "quota") || strings.Contains(msg, "remaining") {
			return ErrQuotaExhausted
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if res == nil {
		return ErrTranslationFailed
	}
	if res.Success {
		return nil
	}
	msg := strings.ToLower(res.Error)
	if strings.Contains(msg, "quota") || strings.Contains(msg, "remaining") {
		return ErrQuotaExhausted
	}
	if photo && strings.Contains(msg, "no text") {
		return ErrNoTextFound
	}
	return ErrTranslationFailed
}

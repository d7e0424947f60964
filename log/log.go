package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog   zerolog.Logger
	diagFile  *os.File
	transFile *os.File
	logMu     sync.Mutex
	logReady  bool
	pid       int
	dir       string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: NATIVO_LOG_PATH environment variable
	envPath := os.Getenv("NATIVO_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transPath := filepath.Join(dir, "translation_log.txt")
	transFile, err = os.OpenFile(transPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transFile != nil {
		transFile.Close()
		transFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Submission records one completed translate round trip (voice, text or photo).
func Submission(kind, source, target string, durationSec int, totalMs float64, success bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("kind", kind).
		Str("source", source).
		Str("target", target).
		Int("duration_s", durationSec).
		Float64("total_ms", totalMs).
		Bool("success", success).
		Msg("submission")
}

func QuotaRefresh(creditsLeft, secondsLeft, remainingScans int, cached bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("credits_left", creditsLeft).
		Int("seconds_left", secondsLeft).
		Int("remaining_scans", remainingScans).
		Bool("cached", cached).
		Msg("quota_refresh")
}

func Purchase(plan string, success bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("plan", plan).
		Bool("success", success).
		Msg("purchase")
}

// TranslationText appends the translated text to the plain-text translation log.
func TranslationText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transFile.WriteString(line)
}

func SessionStart(baseURL string, devMode bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("backend", baseURL).
		Bool("dev_mode", devMode).
		Msg("session_start")
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("count", count).
		Msg("session_end")
}

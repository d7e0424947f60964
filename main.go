package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"nativo/api"
	"nativo/audio"
	"nativo/beep"
	"nativo/config"
	"nativo/encoder"
	"nativo/log"
	"nativo/quota"
	"nativo/session"
	"nativo/shutdown"
	"nativo/store"
)

var version = "dev"

var shutdownOnce sync.Once

func gracefulShutdown(sess *session.Session) {
	shutdownOnce.Do(func() {
		if sess != nil {
			if n := sess.Submissions(); n > 0 {
				log.SessionEnd(n)
			}
		}
		log.Close()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func main() {
	configFlag := flag.String("config", "", "Path to config file (default: ~/.config/nativo/config.yaml)")
	devFlag := flag.Bool("dev", false, "Development mode: bypass quota pre-checks")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	silentFlag := flag.Bool("silent", false, "Disable recording cue tones")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("nativo %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	devMode := *devFlag || cfg.DevMode

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(cfg.BaseURL, devMode)

	kv, err := store.OpenSqlite(filepath.Join(cfg.DataDir, "nativo.db"))
	if err != nil {
		log.Errorf("opening data store: %v", err)
		fmt.Fprintf(os.Stderr, "Error opening data store: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	client, err := api.NewClient(cfg.BaseURL, cfg.RequestTimeout, func() string {
		return store.Token(kv)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	quotaStore := quota.NewStore(client)

	audioCtx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer audioCtx.Close()

	if *silentFlag {
		beep.Disable()
	}
	go beep.Init()

	sess := session.New(session.Options{
		Backend:     client,
		Quota:       quotaStore,
		Store:       kv,
		Sink:        tuiSink{},
		Cues:        session.BeepCues{},
		Player:      audio.NewTTSPlayer(audioCtx, encoder.SampleRate),
		NewRecorder: session.NewMicRecorderFactory(audioCtx, cfg.AudioFormat),
		DevMode:     devMode,
	})

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		gracefulShutdown(sess)
	}()

	// Warm the quota cache so the balance line fills in on first paint.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		sess.RefreshQuota(ctx)
	}()

	tuiMu.Lock()
	tuiProgram = NewTUIProgram(sess, client, kv)
	p := tuiProgram
	tuiMu.Unlock()

	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		os.Exit(1)
	}
	gracefulShutdown(sess)
}

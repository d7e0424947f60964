package store

import (
	"path/filepath"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	kv := NewMemory()
	if _, ok, _ := kv.Get("missing"); ok {
		t.Error("unexpected hit")
	}
	if err := kv.Set("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, ok, err := kv.Get("k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Error("key survived delete")
	}
}

func TestSqliteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nativo.db")
	kv, err := OpenSqlite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()

	if err := kv.Set("k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set("k", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, ok, err := kv.Get("k")
	if err != nil || !ok || string(got) != "v2" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Error("key survived delete")
	}
}

func TestSettingsDefaultsAndMerge(t *testing.T) {
	kv := NewMemory()
	s := LoadSettings(kv)
	if s != DefaultSettings() {
		t.Errorf("empty store should yield defaults, got %+v", s)
	}

	// Partial blob merges over defaults.
	kv.Set(SettingsKey, []byte(`{"formality":"casual"}`))
	s = LoadSettings(kv)
	if s.Formality != "casual" {
		t.Errorf("Formality = %q", s.Formality)
	}
	if s.Speaker1Gender != "neutral" || s.RecordDuration != 5 {
		t.Errorf("defaults lost in merge: %+v", s)
	}

	// Corrupt blob falls back to defaults.
	kv.Set(SettingsKey, []byte(`{not json`))
	if s := LoadSettings(kv); s != DefaultSettings() {
		t.Errorf("corrupt settings should yield defaults, got %+v", s)
	}

	s = DefaultSettings()
	s.Autoplay = false
	if err := SaveSettings(kv, s); err != nil {
		t.Fatal(err)
	}
	if got := LoadSettings(kv); got.Autoplay {
		t.Error("Autoplay should persist as false")
	}
}

func TestLangPairRoundTrip(t *testing.T) {
	kv := NewMemory()
	if _, ok := LoadLangPair(kv); ok {
		t.Error("unexpected pair in empty store")
	}
	if err := SaveLangPair(kv, "english", "spanish"); err != nil {
		t.Fatal(err)
	}
	p, ok := LoadLangPair(kv)
	if !ok || p.Source != "english" || p.Target != "spanish" {
		t.Errorf("LoadLangPair = %+v, %v", p, ok)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	kv := NewMemory()
	AddHistory(kv, HistoryEntry{Original: "hi", Translated: "hola", From: "Am English", To: "LA Spanish", Type: "voice"})
	AddHistory(kv, HistoryEntry{Original: "bye", Translated: "adiós", From: "Am English", To: "LA Spanish", Type: "text"})

	entries := History(kv)
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Original != "bye" {
		t.Errorf("newest entry should be first, got %q", entries[0].Original)
	}
	if entries[0].ID == "" || entries[1].ID == "" {
		t.Error("entries should get IDs")
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("entries should get timestamps")
	}

	ClearHistory(kv)
	if len(History(kv)) != 0 {
		t.Error("history survived clear")
	}
}

func TestToken(t *testing.T) {
	kv := NewMemory()
	if Token(kv) != "" {
		t.Error("expected empty token")
	}
	if err := SaveToken(kv, "jwt-abc"); err != nil {
		t.Fatal(err)
	}
	if Token(kv) != "jwt-abc" {
		t.Errorf("Token = %q", Token(kv))
	}
	if err := ClearToken(kv); err != nil {
		t.Fatal(err)
	}
	if Token(kv) != "" {
		t.Error("token survived logout")
	}
}

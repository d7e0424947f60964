package store

import "nativo/log"

// Settings is the user-tunable session behavior persisted between runs.
type Settings struct {
	Speaker1Gender string `json:"speaker1Gender"`
	Speaker2Gender string `json:"speaker2Gender"`
	Formality      string `json:"formality"`
	Autoplay       bool   `json:"autoplay"`
	RecordDuration int    `json:"recordDuration"` // seconds per voice capture
}

func DefaultSettings() Settings {
	return Settings{
		Speaker1Gender: "neutral",
		Speaker2Gender: "neutral",
		Formality:      "formal",
		Autoplay:       true,
		RecordDuration: 5,
	}
}

// LoadSettings merges the stored blob over the defaults; a missing or
// unreadable blob yields the defaults.
func LoadSettings(kv KV) Settings {
	s := DefaultSettings()
	if _, err := getJSON(kv, SettingsKey, &s); err != nil {
		log.Warnf("failed to load settings: %v", err)
		return DefaultSettings()
	}
	if s.RecordDuration <= 0 {
		s.RecordDuration = DefaultSettings().RecordDuration
	}
	return s
}

func SaveSettings(kv KV, s Settings) error {
	if err := setJSON(kv, SettingsKey, s); err != nil {
		log.Warnf("failed to save settings: %v", err)
		return err
	}
	return nil
}

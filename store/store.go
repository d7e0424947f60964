// Package store is the durable local storage collaborator: a small
// key-value surface with sqlite and in-memory backends, plus typed
// helpers for the settings blob, the locked language pair, the auth
// token and the translation history.
package store

import "encoding/json"

// Storage keys. These mirror the mobile client's storage layout so a
// migrated data directory keeps working.
const (
	SettingsKey = "nativoSettings"
	LangPairKey = "nativoLangPair"
	HistoryKey  = "nativoHistory"
	TokenKey    = "userToken"
)

type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

func getJSON(kv KV, key string, out any) (bool, error) {
	raw, ok, err := kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func setJSON(kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(key, raw)
}

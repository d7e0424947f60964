package store

import "nativo/log"

// LangPair is the locked session pair, shared with the photo screen.
type LangPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// SaveLangPair persists the locked pair. Failure is logged and returned;
// callers treat it as non-fatal (the lock still takes effect in memory).
func SaveLangPair(kv KV, source, target string) error {
	if err := setJSON(kv, LangPairKey, LangPair{Source: source, Target: target}); err != nil {
		log.Warnf("failed to save lang pair: %v", err)
		return err
	}
	return nil
}

func LoadLangPair(kv KV) (LangPair, bool) {
	var p LangPair
	ok, err := getJSON(kv, LangPairKey, &p)
	if err != nil {
		log.Warnf("failed to load lang pair: %v", err)
		return LangPair{}, false
	}
	return p, ok
}

package store

// Token returns the stored auth token, or "" when logged out.
func Token(kv KV) string {
	raw, ok, err := kv.Get(TokenKey)
	if err != nil || !ok {
		return ""
	}
	return string(raw)
}

func SaveToken(kv KV, token string) error {
	return kv.Set(TokenKey, []byte(token))
}

func ClearToken(kv KV) error {
	return kv.Delete(TokenKey)
}

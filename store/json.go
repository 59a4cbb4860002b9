package store

import "encoding/json"

// LoadJSON reads key and unmarshals it into out. It returns false when the
// key is absent or holds malformed JSON; out is left untouched so callers
// fall back to their defaults. Read errors from the store itself are
// returned so callers can log them.
func LoadJSON(s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// Malformed stored data is treated the same as absent.
		return false, nil
	}
	return true, nil
}

// SaveJSON marshals v and writes it under key.
func SaveJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, raw)
}

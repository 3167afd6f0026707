package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
)

// SigningKey is an HMAC secret identified by the kid carried in token
// headers.
type SigningKey struct {
	KeyID  string `json:"key_id" mapstructure:"key_id" yaml:"key_id"`
	Secret string `json:"secret" mapstructure:"secret" yaml:"secret"`
}

// LoadKeysFromFile reads signing keys from a JSON file shaped like:
//
//	[
//	  {"key_id": "2024-01", "secret": "c2VjcmV0..."},
//	  {"key_id": "2024-02", "secret": "b3RoZXI..."}
//	]
//
// Entries with an empty key id or secret are skipped.
func LoadKeysFromFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var entries []SigningKey
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse keys file: %w", err)
	}

	keys := make(map[string]string, len(entries))
	for _, k := range entries {
		if k.KeyID != "" && k.Secret != "" {
			keys[k.KeyID] = k.Secret
		}
	}

	return keys, nil
}

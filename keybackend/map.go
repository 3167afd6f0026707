// Package keybackend resolves HMAC signing keys by key id for token
// issuance and verification.
package keybackend

import (
	"fmt"
	"sort"
)

// MapSecretStore serves signing keys from an in-memory map. It is read-only
// after construction.
type MapSecretStore struct {
	keys map[string]string
}

func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	cp := make(map[string]string, len(keys))
	for k, v := range keys {
		cp[k] = v
	}
	return &MapSecretStore{keys: cp}
}

// Lookup returns the secret for keyID.
func (s *MapSecretStore) Lookup(keyID string) ([]byte, error) {
	secret, found := s.keys[keyID]
	if !found {
		return nil, fmt.Errorf("lookup %q: %w", keyID, ErrKeyNotFound)
	}
	return []byte(secret), nil
}

// KeyIDs returns the known key ids in sorted order.
func (s *MapSecretStore) KeyIDs() []string {
	ids := make([]string, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

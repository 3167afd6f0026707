package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/sagarc03/switchyard/config"
	"github.com/sagarc03/switchyard/keybackend"
)

// Secrets builds the signing key store from cfg.Auth.Keys. In development,
// when no key is configured at all, a random key is generated under
// cfg.Auth.KeyID; tokens signed with it do not survive a restart.
func Secrets(cfg *config.Config, logger *slog.Logger) (*keybackend.MapSecretStore, error) {
	store, err := keybackend.NewSecretStore(cfg.Auth.Keys)
	if err != nil {
		return nil, fmt.Errorf("load signing keys: %w", err)
	}

	if len(store.KeyIDs()) > 0 || !cfg.IsDevelopment() {
		return store, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	logger.Warn("no signing keys configured, using an ephemeral key", "key_id", cfg.Auth.KeyID)
	return keybackend.NewMapSecretStore(map[string]string{
		cfg.Auth.KeyID: hex.EncodeToString(secret),
	}), nil
}

package keybackend

// KeysConfig holds configuration for loading signing keys.
type KeysConfig struct {
	Inline []SigningKey `mapstructure:"inline" yaml:"inline,omitempty"` // Inline keys from config
	File   string       `mapstructure:"file" yaml:"file,omitempty"`     // Path to JSON file containing keys
}

// NewSecretStore merges inline keys and keys from File into one store. File
// keys win over inline keys with the same id.
func NewSecretStore(cfg KeysConfig) (*MapSecretStore, error) {
	keys := make(map[string]string)

	for _, k := range cfg.Inline {
		if k.KeyID != "" && k.Secret != "" {
			keys[k.KeyID] = k.Secret
		}
	}

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for id, secret := range fileKeys {
			keys[id] = secret
		}
	}

	return NewMapSecretStore(keys), nil
}

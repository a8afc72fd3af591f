// Package auth implements API-key authentication for the tool endpoints:
// a key store combining statically configured keys with database-backed
// ones, the HTTP middleware enforcing them, and per-client rate limiting.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"leave-manager/internal/constants"
	"leave-manager/internal/domain"
	"leave-manager/internal/models"
	errs "leave-manager/pkg/errors"
	"leave-manager/pkg/logging"
)

// KeyPrefix marks keys generated by this service.
const KeyPrefix = "lmp_"

// KeyStore validates API keys against three sources: keys from the
// environment, an optional YAML file mapping key to client name, and the
// api_keys table. Static sources never expire and survive a database outage.
type KeyStore struct {
	mu       sync.RWMutex
	static   map[string]string // key -> client name
	yamlPath string

	repo domain.APIKeyRepository
	log  *logging.Logger
}

// NewKeyStore builds a store from env keys and an optional YAML file.
// repo may be nil; then only static keys validate.
func NewKeyStore(staticKeys []string, yamlPath string, repo domain.APIKeyRepository, log *logging.Logger) *KeyStore {
	s := &KeyStore{
		static:   make(map[string]string, len(staticKeys)),
		yamlPath: yamlPath,
		repo:     repo,
		log:      log.WithComponent("keystore"),
	}
	for _, k := range staticKeys {
		s.static[k] = "static"
	}
	if yamlPath != "" {
		if err := s.loadFile(yamlPath); err != nil {
			s.log.Warn("api keys file not loaded; file-based clients will be rejected",
				logging.String("path", yamlPath), logging.Err(err))
		} else {
			s.log.Info("api keys file loaded", logging.String("path", yamlPath),
				logging.Int("keys", len(s.static)))
		}
	}
	return s
}

// loadFile merges a YAML map of key -> client name into the static set.
func (s *KeyStore) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var keys map[string]string
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, name := range keys {
		if k = strings.TrimSpace(k); k != "" {
			s.static[k] = name
		}
	}
	return nil
}

// Reload re-reads the YAML file from disk.
func (s *KeyStore) Reload() error {
	if s.yamlPath == "" {
		return nil
	}
	return s.loadFile(s.yamlPath)
}

// Validate checks a key and returns the client name it belongs to. A store
// failure propagates as an error distinct from an invalid key.
func (s *KeyStore) Validate(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}

	s.mu.RLock()
	name, ok := s.static[key]
	s.mu.RUnlock()
	if ok {
		return name, true, nil
	}

	if s.repo == nil {
		return "", false, nil
	}
	rec, err := s.repo.GetAPIKeyCtx(ctx, key)
	if err != nil {
		return "", false, err
	}
	if rec == nil || !rec.IsActive || rec.Expired(time.Now()) {
		return "", false, nil
	}
	// best-effort usage stamp; an audit miss must not fail the request
	if err := s.repo.TouchAPIKeyCtx(ctx, key); err != nil {
		s.log.Warn("last_used update failed", logging.Err(err))
	}
	return rec.Name, true, nil
}

// Generate creates and persists a new key for the named client.
func (s *KeyStore) Generate(ctx context.Context, name string, expiresDays int) (*models.APIKey, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.NewValidation("auth.Generate", "client name required", nil)
	}
	if s.repo == nil {
		return nil, errs.NewValidation("auth.Generate", "no key repository configured", nil)
	}
	if expiresDays <= 0 {
		expiresDays = constants.APIKeyDefaultExpiryDays
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, errs.NewAuth("auth.Generate", "random key generation failed", err)
	}
	expiry := time.Now().AddDate(0, 0, expiresDays)
	key := &models.APIKey{
		Name:      name,
		Key:       KeyPrefix + base64.RawURLEncoding.EncodeToString(raw),
		IsActive:  true,
		ExpiresAt: &expiry,
	}
	if err := s.repo.CreateAPIKeyCtx(ctx, key); err != nil {
		return nil, err
	}
	s.log.Info("api key generated", logging.String("client", name))
	return key, nil
}

// List returns the stored keys; callers mask them before display.
func (s *KeyStore) List(ctx context.Context) ([]models.APIKey, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListAPIKeysCtx(ctx)
}

// RevokeByPrefix deactivates the first stored key whose value starts with
// prefix. Full keys are never echoed back to clients, so revocation works
// from the visible prefix.
func (s *KeyStore) RevokeByPrefix(ctx context.Context, prefix string) (bool, error) {
	if len(prefix) < 4 {
		return false, errs.NewValidation("auth.RevokeByPrefix", "prefix too short, need at least 4 characters", nil)
	}
	if s.repo == nil {
		return false, nil
	}
	keys, err := s.repo.ListAPIKeysCtx(ctx)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if strings.HasPrefix(k.Key, prefix) {
			return s.repo.RevokeAPIKeyCtx(ctx, k.Key)
		}
	}
	return false, nil
}

// ActiveCount reports how many keys would currently validate.
func (s *KeyStore) ActiveCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	count := len(s.static)
	s.mu.RUnlock()

	if s.repo == nil {
		return count, nil
	}
	dbCount, err := s.repo.CountActiveAPIKeysCtx(ctx)
	if err != nil {
		return count, err
	}
	return count + dbCount, nil
}

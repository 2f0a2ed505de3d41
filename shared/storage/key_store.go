package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// KeyStore persists each browser client's YouTube API key so it survives
// restarts, the way the dashboard's settings are expected to.
type KeyStore struct {
	filePath string
	keys     map[string]storedKey
	mu       sync.RWMutex
	maxAge   time.Duration
	now      func() time.Time
}

type storedKey struct {
	APIKey   string
	LastUsed time.Time
}

// StoredKey is the on-disk form of one client's key.
type StoredKey struct {
	ClientID string    `json:"client_id"`
	APIKey   string    `json:"api_key"`
	LastUsed time.Time `json:"last_used"`
}

// NewKeyStore opens (or creates) the key file under dataDir. Keys unused
// for longer than maxAge are dropped.
func NewKeyStore(dataDir string, maxAge time.Duration) (*KeyStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &KeyStore{
		filePath: filepath.Join(dataDir, "api_keys.json"),
		keys:     make(map[string]storedKey),
		maxAge:   maxAge,
		now:      time.Now,
	}

	if err := store.load(); err != nil {
		return nil, fmt.Errorf("failed to load key store: %w", err)
	}

	store.cleanup()

	return store, nil
}

// Get returns the key saved for clientID and refreshes its last-used time
// in memory.
func (ks *KeyStore) Get(clientID string) (string, bool) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	k, ok := ks.keys[clientID]
	if !ok || ks.expired(k) {
		return "", false
	}
	k.LastUsed = ks.now()
	ks.keys[clientID] = k
	return k.APIKey, true
}

// Set stores apiKey for clientID. An empty key removes the entry.
func (ks *KeyStore) Set(clientID, apiKey string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if apiKey == "" {
		delete(ks.keys, clientID)
	} else {
		ks.keys[clientID] = storedKey{APIKey: apiKey, LastUsed: ks.now()}
	}
	return ks.save()
}

// Count returns the number of stored keys.
func (ks *KeyStore) Count() int {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys)
}

// Prune drops expired keys and writes the file. It returns how many were
// removed.
func (ks *KeyStore) Prune() (int, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	removed := ks.cleanup()
	return removed, ks.save()
}

func (ks *KeyStore) expired(k storedKey) bool {
	return ks.maxAge > 0 && ks.now().Sub(k.LastUsed) >= ks.maxAge
}

func (ks *KeyStore) cleanup() int {
	removed := 0
	for clientID, k := range ks.keys {
		if ks.expired(k) {
			delete(ks.keys, clientID)
			removed++
		}
	}
	return removed
}

func (ks *KeyStore) load() error {
	file, err := os.Open(ks.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open key file: %w", err)
	}
	defer file.Close()

	var stored []StoredKey
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode key file: %w", err)
	}

	for _, s := range stored {
		ks.keys[s.ClientID] = storedKey{APIKey: s.APIKey, LastUsed: s.LastUsed}
	}

	return nil
}

func (ks *KeyStore) save() error {
	stored := make([]StoredKey, 0, len(ks.keys))
	for clientID, k := range ks.keys {
		stored = append(stored, StoredKey{ClientID: clientID, APIKey: k.APIKey, LastUsed: k.LastUsed})
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].ClientID < stored[j].ClientID })

	file, err := os.OpenFile(ks.filePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stored)
}

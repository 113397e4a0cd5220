package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/depfix/depfix/pkg/persist"
)

// diskCache is the on-disk representation: Map<ModuleId, RegistryEntry>,
// per spec.md §6.
type diskCache struct {
	Entries map[string]*RegistryEntry `json:"entries"`
}

// cacheBasename returns the hex SHA-256 of root (or "-" if root is
// empty), matching the on-disk cache naming in spec.md §6.
func cacheBasename(root string) string {
	if root == "" {
		return "-"
	}

	sum := sha256.Sum256([]byte(root))

	return hex.EncodeToString(sum[:])
}

// loadCache reads the on-disk cache for root. Any failure — missing
// file, unreadable, or malformed — is treated as an empty cache, never
// an error, per spec.md §4.1 step 2 / §7.
func loadCache(root string) map[string]*RegistryEntry {
	persister := persist.NewPersister[diskCache](cacheBasename(root), persist.NewLZ4JSONCodec())

	var loaded diskCache

	err := persister.Load(os.TempDir(), func(state *diskCache) {
		loaded = *state
	})
	if err != nil || loaded.Entries == nil {
		return make(map[string]*RegistryEntry)
	}

	return loaded.Entries
}

// saveCache persists entries for root, exactly once per populate call.
func saveCache(root string, entries map[string]*RegistryEntry) error {
	persister := persist.NewPersister[diskCache](cacheBasename(root), persist.NewLZ4JSONCodec())

	return persister.Save(os.TempDir(), func() *diskCache {
		return &diskCache{Entries: entries}
	})
}

package state

import (
	"strings"

	"nftmarket/storage"
)

// OpenDatabase opens the persistent backend for the supplied data directory.
// An empty directory or the sentinel ":memory:" selects the in-memory store,
// which is useful for tests and throwaway deployments.
func OpenDatabase(dataDir string) (storage.Database, error) {
	trimmed := strings.TrimSpace(dataDir)
	if trimmed == "" || trimmed == ":memory:" {
		return storage.NewMemDB(), nil
	}
	return storage.NewLevelDB(trimmed)
}

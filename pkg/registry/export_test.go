package registry

// Exported aliases for package-internal symbols, so registry_test (an
// external test package) can exercise them directly.

type SourceEntryForTest = sourceEntry

func NewSourceEntryForTest(id string, priority Priority, entry *RegistryEntry) sourceEntry {
	return sourceEntry{id: id, priority: priority, entry: entry}
}

var (
	LocateManifestForTest = locateManifest
	ParseManifestForTest  = parseManifest
	SaveCacheForTest      = saveCache
	LoadCacheForTest      = loadCache
	ComputeDepsForTest    = computeDeps
	IdentsFromIDForTest   = identsFromID
)

package ports

// Workspace manages local media payloads.
type Workspace interface {
	TempDir() string
	// StageCopy copies a user-owned file into the temp area and returns the copy.
	StageCopy(path string) (string, error)
	// Discard deletes path unless it is a user-retained download.
	Discard(path string) error
	IsRetained(path string) bool
	// PurgeAccount removes temp files whose name contains username.
	PurgeAccount(username string) (int, error)
}

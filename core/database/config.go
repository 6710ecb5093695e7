package database

// Config describes how a catalog file is opened.
type Config struct {
	// Path is the SQLite file, or ":memory:" for a private in-memory database.
	Path string
	// ReadOnly opens the file with mode=ro so no statement can modify it.
	ReadOnly bool
	// BusyTimeoutMillis bounds how long a statement waits on a locked file.
	BusyTimeoutMillis int
}

// Package domain holds the immutable record types produced by the version
// control backend adapter and shared across services. Records are values:
// once constructed they are never mutated, callers receive copies or
// read-only references.
package domain

import "time"

const (
	// EntryKindFile marks a file row in a directory listing.
	EntryKindFile EntryKind = "file"

	// EntryKindDirectory marks a directory row in a directory listing.
	EntryKindDirectory EntryKind = "dir"
)

// EntryKind represents the kind of a directory listing row.
type EntryKind string

// RepositoryRecord is a cached snapshot of a repository's identity and
// latest-change metadata. It is replaced wholesale on refresh, never patched.
type RepositoryRecord struct {
	// Name is the configured short name of the repository.
	Name string `json:"name"`

	// URL is the canonical URL the repository is served from.
	URL string `json:"url"`

	// RootURL is the repository root as reported by the backend.
	RootURL string `json:"rootUrl"`

	// LastChangedRev is the most recent revision number.
	LastChangedRev int64 `json:"lastChangedRev"`

	// LastChangedAt is the timestamp of the most recent change, normalized to UTC.
	LastChangedAt time.Time `json:"lastChangedAt"`

	// LastChangedAtRaw retains the backend's original timestamp string for display.
	LastChangedAtRaw string `json:"lastChangedAtRaw,omitempty"`

	// LastChangeSummary is the most recent change summary, empty when the backend
	// did not report one.
	LastChangeSummary string `json:"lastChangeSummary,omitempty"`

	// WebPath is the browse path for this repository relative to the service root.
	WebPath string `json:"webPath"`
}

// Entry is a single directory or file listing row.
// Entries are produced only by the backend adapter and are read-only to consumers.
type Entry struct {
	// Kind is "file" or "dir".
	Kind EntryKind `json:"kind"`

	// Name is the entry's base name.
	Name string `json:"name"`

	// Revision is the last commit revision that touched this entry.
	Revision int64 `json:"revision"`

	// Author is the last commit author, empty when the backend omitted it.
	Author string `json:"author,omitempty"`

	// Date is the last commit timestamp, normalized to UTC.
	Date time.Time `json:"date"`

	// DateRaw retains the backend's original timestamp string for display.
	DateRaw string `json:"dateRaw,omitempty"`

	// Size is the file size in bytes; nil for directories.
	Size *int64 `json:"size,omitempty"`

	// WebPath is the computed browse path for this entry.
	WebPath string `json:"webPath"`
}

// PathChange is one affected-path record within a commit.
type PathChange struct {
	// Path is the repository path that changed.
	Path string `json:"path"`

	// Kind is the node kind ("file", "dir") when the backend reports it.
	Kind string `json:"kind,omitempty"`

	// Action is the backend's change action code (e.g. "A", "M", "D").
	Action string `json:"action"`
}

// LogEntry is a single commit in a repository's history.
// The order of Paths is exactly what the backend produced; consumers must not
// assume a direction.
type LogEntry struct {
	// Revision is the commit revision number.
	Revision int64 `json:"revision"`

	// Author is the commit author, empty when the backend omitted it.
	Author string `json:"author,omitempty"`

	// Date is the commit timestamp, normalized to UTC.
	Date time.Time `json:"date"`

	// DateRaw retains the backend's original timestamp string for display.
	DateRaw string `json:"dateRaw,omitempty"`

	// Message is the commit message.
	Message string `json:"message"`

	// Paths is the ordered sequence of affected-path records.
	Paths []PathChange `json:"paths,omitempty"`
}

// ChangeSummary is one per-path row of a summarized diff between two revisions.
type ChangeSummary struct {
	// Path is the changed path.
	Path string `json:"path"`

	// Kind is the node kind ("file", "dir").
	Kind string `json:"kind"`

	// Item is the summarize action ("added", "modified", "deleted", "none").
	Item string `json:"item"`

	// PropsModified reports whether properties changed on the path.
	PropsModified bool `json:"propsModified"`
}

// Identity is the authenticated user a session token resolves to.
type Identity struct {
	// Username is the verified login name.
	Username string `json:"username"`
}

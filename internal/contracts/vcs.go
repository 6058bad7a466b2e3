package contracts

import (
	"context"

	"github.com/pmanser/svnd/internal/domain"
)

// VersionControlBackend provides typed access to the external version control
// system. Implementations may shell out, call a library, or hit an RPC
// endpoint; callers must treat every method as a potentially slow, blocking
// round trip bounded by the supplied context.
type VersionControlBackend interface {
	// Info returns a repository record for the repository at url.
	Info(ctx context.Context, url string) (domain.RepositoryRecord, error)

	// List returns the directory entries at path below url.
	// A revision of 0 means the latest revision.
	List(ctx context.Context, url, path string, revision int64, recursive bool) ([]domain.Entry, error)

	// Log returns the commit history for url in the backend's own order.
	Log(ctx context.Context, url string) ([]domain.LogEntry, error)

	// Diff returns the raw diff text between two revisions of url.
	Diff(ctx context.Context, url string, from, to int64) (string, error)

	// DiffSummarize returns the per-path change summary between two revisions of url.
	DiffSummarize(ctx context.Context, url string, from, to int64) ([]domain.ChangeSummary, error)

	// Cat returns the raw bytes of the file at url.
	Cat(ctx context.Context, url string) ([]byte, error)

	// Copy performs the backend copy operation and returns the newly created
	// revision number. The acting user is attached where the backend supports it.
	Copy(ctx context.Context, srcURL, dstURL, message, actingUser string) (int64, error)

	// SetRevisionAuthor rewrites the author metadata of an existing revision.
	SetRevisionAuthor(ctx context.Context, repoPath string, revision int64, author string) error

	// ListTags returns existing tag names below url's conventional tags directory.
	// It fails with errors.ErrNoTagsDirectory when that directory is absent.
	ListTags(ctx context.Context, url string) ([]string, error)

	// ListBranches returns existing branch names below url's conventional branches
	// directory. It fails with errors.ErrNoBranchesDirectory when that directory is absent.
	ListBranches(ctx context.Context, url string) ([]string, error)

	// CreateRepository creates a brand new repository with the given name.
	CreateRepository(ctx context.Context, name, actingUser string) error
}

// CredentialVerifier checks a username/secret pair against an external
// directory service. The core only consumes the verdict.
type CredentialVerifier interface {
	// Verify reports whether the credentials are valid.
	// An error indicates the verifier itself could not be consulted.
	Verify(ctx context.Context, username, secret string) (bool, error)
}

// MetadataProvider serves cached repository metadata.
type MetadataProvider interface {
	// Names returns the configured repository names, sorted.
	Names() []string

	// RepositoryList returns records for the given repository names.
	RepositoryList(ctx context.Context, names []string) ([]domain.RepositoryRecord, error)

	// Repository returns the record for a single repository.
	Repository(ctx context.Context, name string) (domain.RepositoryRecord, error)

	// Directory returns the listing at path inside the named repository.
	Directory(ctx context.Context, name, path string) ([]domain.Entry, error)

	// History returns the commit history of the named repository, newest first.
	History(ctx context.Context, name string) ([]domain.LogEntry, error)

	// File returns the raw contents of a file inside the named repository.
	File(ctx context.Context, name, path string) ([]byte, error)

	// Changeset returns the summarized diff between two revisions of the named repository.
	Changeset(ctx context.Context, name string, from, to int64) ([]domain.ChangeSummary, error)

	// ChangesetDiff returns the raw diff text between two revisions of the named repository.
	ChangesetDiff(ctx context.Context, name string, from, to int64) (string, error)

	// Tags returns the existing tag names of the named repository.
	// It fails with errors.ErrNoTagsDirectory when the repository has no tags directory.
	Tags(ctx context.Context, name string) ([]string, error)

	// Branches returns the existing branch names of the named repository.
	// It fails with errors.ErrNoBranchesDirectory when the repository has no branches directory.
	Branches(ctx context.Context, name string) ([]string, error)

	// Invalidate clears every cache entry derived from the named repository.
	Invalidate(name string)
}

// SessionAuthenticator issues, resolves and revokes session tokens.
type SessionAuthenticator interface {
	// Login verifies credentials and returns a fresh session token.
	Login(ctx context.Context, username, secret string) (string, error)

	// Resolve maps a token to an identity. An expired, revoked or unknown token
	// resolves to no identity; this is a normal result, never an error.
	Resolve(token string) (domain.Identity, bool)

	// Logout revokes a token immediately.
	Logout(token string)
}

// LifecycleRunner executes coordinated creation requests.
type LifecycleRunner interface {
	// Run drives a creation request through the lifecycle state machine and
	// returns its terminal result. Rejections are reported both in the result
	// and as a typed error.
	Run(ctx context.Context, req domain.CreationRequest) (domain.CreationResult, error)
}

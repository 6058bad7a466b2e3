package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pmanser/svnd/internal/contracts"
	"github.com/pmanser/svnd/internal/domain"
)

const (
	EntryKindFile      EntryKind = "file"
	EntryKindDirectory EntryKind = "dir"
)

// DomainRepositoryRecord is a wrapper that allows receivers to be declared in
// the API package that deal with domain types.
type DomainRepositoryRecord domain.RepositoryRecord

// DomainEntry wraps a domain directory entry for API conversion.
type DomainEntry domain.Entry

// DomainLogEntry wraps a domain commit record for API conversion.
type DomainLogEntry domain.LogEntry

// EntryKind represents the kind of a directory listing row across the API boundary.
type EntryKind string

// Repository describes a browsable repository and its latest-change metadata.
type Repository struct {
	Name              string     `json:"name"`
	URL               string     `json:"url"`
	WebPath           string     `json:"webPath"`
	LastChangedRev    int64      `json:"lastChangedRev"`
	LastChangedAt     *time.Time `json:"lastChangedAt,omitempty"`
	LastChangeSummary string     `json:"lastChangeSummary,omitempty"`
}

// Entry is a single row in a directory listing.
type Entry struct {
	Kind     EntryKind  `json:"kind"`
	Name     string     `json:"name"`
	Revision int64      `json:"revision"`
	Author   string     `json:"author,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Size     *int64     `json:"size,omitempty"`
	WebPath  string     `json:"webPath"`
}

// PathChange is one affected path within a commit.
type PathChange struct {
	Path   string `json:"path"`
	Action string `json:"action"`
}

// Commit is a single entry in a repository's history.
type Commit struct {
	Revision int64        `json:"revision"`
	Author   string       `json:"author,omitempty"`
	Date     *time.Time   `json:"date,omitempty"`
	Message  string       `json:"message"`
	Paths    []PathChange `json:"paths,omitempty"`
}

// ChangesetEntry is one per-path row of a summarized changeset.
type ChangesetEntry struct {
	Path          string `json:"path"`
	Kind          string `json:"kind"`
	Item          string `json:"item"`
	PropsModified bool   `json:"propsModified"`
}

// RepositoriesRequest carries the session token for the repository list.
type RepositoriesRequest struct {
	Token string `cookie:"svnd_session" doc:"Session token"`
}

// RepositoriesResponse is the response for listing all configured repositories.
type RepositoriesResponse struct {
	Body struct {
		Repositories []Repository `doc:"Configured repositories with latest-change metadata" json:"repositories"`
	}
}

// RepositoryRequest identifies a single repository.
type RepositoryRequest struct {
	Token string `cookie:"svnd_session" doc:"Session token"`
	Name  string `doc:"Name of the repository" example:"widgets" path:"name"`
}

// RepositoryResponse represents the wrapped API response for a single repository.
type RepositoryResponse struct {
	Body Repository
}

// DirectoryRequest identifies a directory inside a repository.
type DirectoryRequest struct {
	Token string `cookie:"svnd_session" doc:"Session token"`
	Name  string `doc:"Name of the repository"             example:"widgets"    path:"name"`
	Path  string `doc:"Directory path inside the repository" example:"trunk/src" query:"path"`
}

// DirectoryResponse represents the wrapped API response for a directory listing.
type DirectoryResponse struct {
	Body struct {
		Path    string  `doc:"Directory path that was listed"  json:"path"`
		Entries []Entry `doc:"Entries directly below the path" json:"entries"`
	}
}

// FileRequest identifies a file inside a repository.
type FileRequest struct {
	Token string `cookie:"svnd_session" doc:"Session token"`
	Name  string `doc:"Name of the repository"          example:"widgets"            path:"name"`
	Path  string `doc:"File path inside the repository" example:"trunk/Makefile" query:"path"`
}

// FileResponse carries raw file bytes.
type FileResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// HistoryResponse represents the wrapped API response for a repository's commit history.
type HistoryResponse struct {
	Body struct {
		Commits []Commit `doc:"Commit history, newest first" json:"commits"`
	}
}

// ChangesetRequest identifies a single revision's changeset.
type ChangesetRequest struct {
	Token       string `cookie:"svnd_session" doc:"Session token"`
	Name        string `doc:"Name of the repository"        example:"widgets" path:"name"`
	Revision    int64  `doc:"Revision to summarize"         example:"42"      minimum:"1"  path:"revision"`
	IncludeDiff bool   `doc:"Include the raw diff text"     query:"diff"`
}

// ChangesetResponse represents the wrapped API response for a summarized changeset.
type ChangesetResponse struct {
	Body struct {
		Revision int64            `doc:"Summarized revision"            json:"revision"`
		Changes  []ChangesetEntry `doc:"Per-path changes for revision"  json:"changes"`
		Diff     string           `doc:"Raw diff text, when requested"  json:"diff,omitempty"`
	}
}

// RefsResponse represents the wrapped API response for tag or branch names.
type RefsResponse struct {
	Body struct {
		Names []string `doc:"Existing names, sorted" json:"names"`
	}
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainRepositoryRecord) ToAPIType() (Repository, error) {
	return Repository{
		Name:              d.Name,
		URL:               d.URL,
		WebPath:           d.WebPath,
		LastChangedRev:    d.LastChangedRev,
		LastChangedAt:     optionalTime(d.LastChangedAt),
		LastChangeSummary: d.LastChangeSummary,
	}, nil
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainEntry) ToAPIType() (Entry, error) {
	kind, err := parseEntryKind(d.Kind)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Kind:     kind,
		Name:     d.Name,
		Revision: d.Revision,
		Author:   d.Author,
		Date:     optionalTime(d.Date),
		Size:     d.Size,
		WebPath:  d.WebPath,
	}, nil
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainLogEntry) ToAPIType() (Commit, error) {
	paths := make([]PathChange, 0, len(d.Paths))
	for _, p := range d.Paths {
		paths = append(paths, PathChange{Path: p.Path, Action: p.Action})
	}

	return Commit{
		Revision: d.Revision,
		Author:   d.Author,
		Date:     optionalTime(d.Date),
		Message:  d.Message,
		Paths:    paths,
	}, nil
}

// parseEntryKind normalizes a domain entry kind into its API representation.
func parseEntryKind(kind domain.EntryKind) (EntryKind, error) {
	switch kind {
	case domain.EntryKindFile:
		return EntryKindFile, nil
	case domain.EntryKindDirectory:
		return EntryKindDirectory, nil
	default:
		return "", fmt.Errorf("unknown entry kind: %s", kind)
	}
}

// optionalTime hides zero timestamps from API responses.
func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// RegisterRepositoryRoutes sets up the repository browsing API endpoint routes.
// Every route requires an authenticated session; requests without a resolvable
// session cookie are rejected before the metadata provider is consulted.
func RegisterRepositoryRoutes(
	routerAPI huma.API,
	provider contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	apiPathPrefix string,
) {
	repositoriesAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Repositories"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		repositoriesAPI,
		huma.Operation{
			OperationID: "listRepositories",
			Method:      http.MethodGet,
			Summary:     "List all repositories",
			Tags:        tags,
		},
		func(ctx context.Context, input *RepositoriesRequest) (*RepositoriesResponse, error) {
			return handleRepositories(ctx, provider, sessions, input.Token)
		},
	)

	huma.Register(
		repositoriesAPI,
		huma.Operation{
			OperationID: "getRepository",
			Method:      http.MethodGet,
			Path:        "/{name}",
			Summary:     "Get a repository",
			Tags:        tags,
		},
		func(ctx context.Context, input *RepositoryRequest) (*RepositoryResponse, error) {
			return handleRepository(ctx, provider, sessions, input.Token, input.Name)
		},
	)

	huma.Register(
		repositoriesAPI,
		huma.Operation{
			OperationID: "listDirectory",
			Method:      http.MethodGet,
			Path:        "/{name}/entries",
			Summary:     "List a directory inside a repository",
			Tags:        tags,
		},
		func(ctx context.Context, input *DirectoryRequest) (*DirectoryResponse, error) {
			return handleDirectory(ctx, provider, sessions, input.Token, input.Name, input.Path)
		},
	)

	huma.Register(
		repositoriesAPI,
		huma.Operation{
			OperationID: "getFile",
			Method:      http.MethodGet,
			Path:        "/{name}/file",
			Summary:     "Get raw file contents",
			Tags:        tags,
		},
		func(ctx context.Context, input *FileRequest) (*FileResponse, error) {
			return handleFile(ctx, provider, sessions, input.Token, input.Name, input.Path)
		},
	)

	huma.Register(
		repositoriesAPI,
		huma.Operation{
			OperationID: "getHistory",
			Method:      http.MethodGet,
			Path:        "/{name}/history",
			Summary:     "Get the commit history of a repository",
			Tags:        tags,
		},
		func(ctx context.Context, input *RepositoryRequest) (*HistoryResponse, error) {
			return handleHistory(ctx, provider, sessions, input.Token, input.Name)
		},
	)

	huma.Register(
		repositoriesAPI,
		huma.Operation{
			OperationID: "getChangeset",
			Method:      http.MethodGet,
			Path:        "/{name}/changesets/{revision}",
			Summary:     "Summarize the changes introduced by a revision",
			Tags:        tags,
		},
		func(ctx context.Context, input *ChangesetRequest) (*ChangesetResponse, error) {
			return handleChangeset(ctx, provider, sessions, input.Token, input.Name, input.Revision, input.IncludeDiff)
		},
	)

	huma.Register(
		repositoriesAPI,
		huma.Operation{
			OperationID: "listTags",
			Method:      http.MethodGet,
			Path:        "/{name}/tags",
			Summary:     "List a repository's tags",
			Tags:        tags,
		},
		func(ctx context.Context, input *RepositoryRequest) (*RefsResponse, error) {
			return handleRefs(ctx, provider.Tags, sessions, input.Token, input.Name)
		},
	)

	huma.Register(
		repositoriesAPI,
		huma.Operation{
			OperationID: "listBranches",
			Method:      http.MethodGet,
			Path:        "/{name}/branches",
			Summary:     "List a repository's branches",
			Tags:        tags,
		},
		func(ctx context.Context, input *RepositoryRequest) (*RefsResponse, error) {
			return handleRefs(ctx, provider.Branches, sessions, input.Token, input.Name)
		},
	)
}

// handleRepositories returns all configured repositories with their cached metadata.
func handleRepositories(
	ctx context.Context,
	provider contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	token string,
) (*RepositoriesResponse, error) {
	if _, err := authenticate(sessions, token); err != nil {
		return nil, err
	}

	records, err := provider.RepositoryList(ctx, provider.Names())
	if err != nil {
		return nil, err
	}

	repositories := make([]Repository, 0, len(records))
	for _, record := range records {
		data, err := DomainRepositoryRecord(record).ToAPIType()
		if err != nil {
			return nil, err
		}
		repositories = append(repositories, data)
	}
	slices.SortFunc(repositories, func(a, b Repository) int {
		return strings.Compare(a.Name, b.Name)
	})

	resp := &RepositoriesResponse{}
	resp.Body.Repositories = repositories

	return resp, nil
}

// handleRepository returns the cached metadata of a single repository.
func handleRepository(
	ctx context.Context,
	provider contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	token string,
	name string,
) (*RepositoryResponse, error) {
	if _, err := authenticate(sessions, token); err != nil {
		return nil, err
	}

	record, err := provider.Repository(ctx, name)
	if err != nil {
		return nil, err
	}

	data, err := DomainRepositoryRecord(record).ToAPIType()
	if err != nil {
		return nil, err
	}

	return &RepositoryResponse{Body: data}, nil
}

// handleDirectory returns the listing at path inside the named repository.
func handleDirectory(
	ctx context.Context,
	provider contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	token string,
	name string,
	path string,
) (*DirectoryResponse, error) {
	if _, err := authenticate(sessions, token); err != nil {
		return nil, err
	}

	path = strings.Trim(path, "/")

	entries, err := provider.Directory(ctx, name, path)
	if err != nil {
		return nil, err
	}

	data := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		e, err := DomainEntry(entry).ToAPIType()
		if err != nil {
			return nil, err
		}
		data = append(data, e)
	}

	resp := &DirectoryResponse{}
	resp.Body.Path = path
	resp.Body.Entries = data

	return resp, nil
}

// handleFile returns the raw contents of a file inside the named repository.
// The payload is served as octet-stream; rendering is the client's concern.
func handleFile(
	ctx context.Context,
	provider contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	token string,
	name string,
	path string,
) (*FileResponse, error) {
	if _, err := authenticate(sessions, token); err != nil {
		return nil, err
	}

	content, err := provider.File(ctx, name, strings.Trim(path, "/"))
	if err != nil {
		return nil, err
	}

	return &FileResponse{
		ContentType: "application/octet-stream",
		Body:        content,
	}, nil
}

// handleHistory returns the commit history of the named repository.
func handleHistory(
	ctx context.Context,
	provider contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	token string,
	name string,
) (*HistoryResponse, error) {
	if _, err := authenticate(sessions, token); err != nil {
		return nil, err
	}

	entries, err := provider.History(ctx, name)
	if err != nil {
		return nil, err
	}

	commits := make([]Commit, 0, len(entries))
	for _, entry := range entries {
		c, err := DomainLogEntry(entry).ToAPIType()
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}

	resp := &HistoryResponse{}
	resp.Body.Commits = commits

	return resp, nil
}

// handleChangeset summarizes the changes a single revision introduced.
func handleChangeset(
	ctx context.Context,
	provider contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	token string,
	name string,
	revision int64,
	includeDiff bool,
) (*ChangesetResponse, error) {
	if _, err := authenticate(sessions, token); err != nil {
		return nil, err
	}

	changes, err := provider.Changeset(ctx, name, revision-1, revision)
	if err != nil {
		return nil, err
	}

	var diff string
	if includeDiff {
		diff, err = provider.ChangesetDiff(ctx, name, revision-1, revision)
		if err != nil {
			return nil, err
		}
	}

	data := make([]ChangesetEntry, 0, len(changes))
	for _, change := range changes {
		data = append(data, ChangesetEntry{
			Path:          change.Path,
			Kind:          change.Kind,
			Item:          change.Item,
			PropsModified: change.PropsModified,
		})
	}

	resp := &ChangesetResponse{}
	resp.Body.Revision = revision
	resp.Body.Changes = data
	resp.Body.Diff = diff

	return resp, nil
}

// handleRefs returns sorted tag or branch names via the supplied lister.
func handleRefs(
	ctx context.Context,
	list func(ctx context.Context, name string) ([]string, error),
	sessions contracts.SessionAuthenticator,
	token string,
	name string,
) (*RefsResponse, error) {
	if _, err := authenticate(sessions, token); err != nil {
		return nil, err
	}

	names, err := list(ctx, name)
	if err != nil {
		return nil, err
	}
	slices.Sort(names)

	resp := &RefsResponse{}
	resp.Body.Names = names

	return resp, nil
}

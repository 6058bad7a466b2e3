// Package metadata orchestrates backend queries and the cache store. All
// read-style repository operations go through here so that repeated queries
// stay cheap and concurrent misses for the same key collapse into a single
// backend invocation.
package metadata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"github.com/pmanser/svnd/internal/contracts"
	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

var _ contracts.MetadataProvider = (*Service)(nil)

// Service serves cached repository metadata.
// NewService should be used to create instances of Service.
type Service struct {
	// logger is used for logging metadata operations.
	logger hclog.Logger

	// backend is the version control backend adapter.
	backend contracts.VersionControlBackend

	// store holds cached records keyed by the stable cache key namespace.
	store Store

	// repositories maps configured repository names to their backend URLs.
	repositories map[string]string

	// group collapses concurrent loads of the same cache key into one backend call.
	group singleflight.Group

	// repositoryListTTL applies to aggregate repository-list records.
	repositoryListTTL time.Duration

	// metadataTTL applies to directory listings, history and single-repository reads.
	metadataTTL time.Duration
}

// Store is the slice of the cache store the metadata service relies on.
type Store interface {
	Get(key string) (any, bool)
	GetMulti(keys []string) map[string]any
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	DeletePrefix(prefix string)
}

// Dependencies contains the required external dependencies for the metadata service.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Logger for metadata operations.
	Logger hclog.Logger

	// Backend is the version control backend adapter.
	Backend contracts.VersionControlBackend

	// Store holds cached records.
	Store Store

	// Repositories maps configured repository names to their backend URLs.
	Repositories map[string]string
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	backend contracts.VersionControlBackend,
	store Store,
	repositories map[string]string,
) (Dependencies, error) {
	deps := Dependencies{
		Logger:       logger,
		Backend:      backend,
		Store:        store,
		Repositories: repositories,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil {
		return fmt.Errorf("logger cannot be nil")
	}
	if d.Backend == nil {
		return fmt.Errorf("backend cannot be nil")
	}
	if d.Store == nil {
		return fmt.Errorf("store cannot be nil")
	}
	return nil
}

// NewService creates a metadata service with the provided dependencies and options.
func NewService(deps Dependencies, opt ...Option) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for metadata service: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata options: %w", err)
	}

	repos := make(map[string]string, len(deps.Repositories))
	for name, url := range deps.Repositories {
		repos[name] = url
	}

	return &Service{
		logger:            deps.Logger.Named("metadata"),
		backend:           deps.Backend,
		store:             deps.Store,
		repositories:      repos,
		repositoryListTTL: opts.repositoryListTTL,
		metadataTTL:       opts.metadataTTL,
	}, nil
}

// Names returns the configured repository names.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.repositories))
	for name := range s.repositories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RepositoryList returns records for the given repository names.
// It performs one batched cache read and only invokes the backend for names
// that missed, bounding external invocations to the number of cold entries.
func (s *Service) RepositoryList(ctx context.Context, names []string) ([]domain.RepositoryRecord, error) {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, keyRepositoryRecord(name))
	}
	cached := s.store.GetMulti(keys)

	records := make([]domain.RepositoryRecord, 0, len(names))
	for _, name := range names {
		if v, ok := cached[keyRepositoryRecord(name)]; ok {
			if record, ok := v.(domain.RepositoryRecord); ok {
				records = append(records, record)
				continue
			}
		}

		record, err := s.Repository(ctx, name)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Repository returns the record for a single repository.
func (s *Service) Repository(ctx context.Context, name string) (domain.RepositoryRecord, error) {
	url, err := s.resolve(name)
	if err != nil {
		return domain.RepositoryRecord{}, err
	}

	key := keyRepositoryRecord(name)
	if v, ok := s.store.Get(key); ok {
		if record, ok := v.(domain.RepositoryRecord); ok {
			return record, nil
		}
	}

	v, err := s.load(ctx, key, s.repositoryListTTL, func(ctx context.Context) (any, error) {
		record, err := s.backend.Info(ctx, url)
		if err != nil {
			return nil, err
		}
		// The configured name is authoritative over the URL-derived one.
		record.Name = name
		return record, nil
	})
	if err != nil {
		return domain.RepositoryRecord{}, err
	}
	return v.(domain.RepositoryRecord), nil
}

// Directory returns the listing at path inside the named repository.
func (s *Service) Directory(ctx context.Context, name, path string) ([]domain.Entry, error) {
	url, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	key := keyDirectory(name, path)
	if v, ok := s.store.Get(key); ok {
		if entries, ok := v.([]domain.Entry); ok {
			return entries, nil
		}
	}

	v, err := s.load(ctx, key, s.metadataTTL, func(ctx context.Context) (any, error) {
		return s.backend.List(ctx, url, path, 0, false)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Entry), nil
}

// History returns the commit history of the named repository, newest first.
func (s *Service) History(ctx context.Context, name string) ([]domain.LogEntry, error) {
	url, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	key := keyHistory(name)
	if v, ok := s.store.Get(key); ok {
		if entries, ok := v.([]domain.LogEntry); ok {
			return entries, nil
		}
	}

	v, err := s.load(ctx, key, s.metadataTTL, func(ctx context.Context) (any, error) {
		return s.backend.Log(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.LogEntry), nil
}

// File returns the raw contents of a file inside the named repository.
// File contents are served straight from the backend; they are not cached.
func (s *Service) File(ctx context.Context, name, path string) ([]byte, error) {
	url, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return s.backend.Cat(ctx, joinURL(url, path))
}

// Changeset returns the summarized diff between two revisions of the named repository.
func (s *Service) Changeset(ctx context.Context, name string, from, to int64) ([]domain.ChangeSummary, error) {
	url, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return s.backend.DiffSummarize(ctx, url, from, to)
}

// ChangesetDiff returns the raw diff text between two revisions of the named repository.
func (s *Service) ChangesetDiff(ctx context.Context, name string, from, to int64) (string, error) {
	url, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	return s.backend.Diff(ctx, url, from, to)
}

// Tags returns the existing tag names of the named repository.
func (s *Service) Tags(ctx context.Context, name string) ([]string, error) {
	url, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return s.backend.ListTags(ctx, url)
}

// Branches returns the existing branch names of the named repository.
func (s *Service) Branches(ctx context.Context, name string) ([]string, error) {
	url, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return s.backend.ListBranches(ctx, url)
}

// Invalidate clears every cache entry derived from the named repository.
// Subsequent reads observe fresh backend state even if the prior entries had
// not yet expired.
func (s *Service) Invalidate(name string) {
	s.store.Delete(keyRepositoryRecord(name))
	s.store.Delete(keyHistory(name))
	s.store.DeletePrefix(keyDirectoryPrefix(name))
	s.logger.Debug("Invalidated cached metadata", "repository", name)
}

// URL resolves a configured repository name to its backend URL.
func (s *Service) URL(name string) (string, error) {
	return s.resolve(name)
}

// load runs loader under the singleflight group for key and caches the result.
// Concurrent callers for the same key block on the one in-flight computation
// and all observe its result, or its failure.
func (s *Service) load(
	ctx context.Context,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (any, error),
) (any, error) {
	v, err, shared := s.group.Do(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.store.Set(key, value, ttl)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Collapsed concurrent cache miss", "key", key)
	}
	return v, nil
}

func (s *Service) resolve(name string) (string, error) {
	url, ok := s.repositories[name]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", errors.ErrRepositoryNotFound, name)
	}
	return url, nil
}

// Cache key namespace. These must remain stable if entries are ever persisted
// or shared between instances.
func keyRepositoryRecord(name string) string {
	return "repo_list_" + name
}

func keyHistory(name string) string {
	return "repo_log_" + name
}

func keyDirectory(name, path string) string {
	return keyDirectoryPrefix(name) + strings.Trim(path, "/")
}

func keyDirectoryPrefix(name string) string {
	return "history_" + name + "_"
}

func joinURL(url, subPath string) string {
	url = strings.TrimRight(url, "/")
	subPath = strings.Trim(subPath, "/")
	if subPath == "" {
		return url
	}
	return url + "/" + subPath
}

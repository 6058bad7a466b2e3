package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

// fakeBackend tracks created tags/branches so collision checks observe prior
// creations, mimicking the real backend's check-then-act exposure.
type fakeBackend struct {
	mu        sync.Mutex
	tags      map[string][]string
	branches  map[string][]string
	revision  int64
	copyCalls int

	copyErr     error
	authorErr   error
	listTagsErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tags:     make(map[string][]string),
		branches: make(map[string][]string),
		revision: 100,
	}
}

func (f *fakeBackend) Info(_ context.Context, _ string) (domain.RepositoryRecord, error) {
	return domain.RepositoryRecord{}, nil
}

func (f *fakeBackend) List(_ context.Context, _, _ string, _ int64, _ bool) ([]domain.Entry, error) {
	return nil, nil
}

func (f *fakeBackend) Log(_ context.Context, _ string) ([]domain.LogEntry, error) {
	return nil, nil
}

func (f *fakeBackend) Diff(_ context.Context, _ string, _, _ int64) (string, error) {
	return "", nil
}

func (f *fakeBackend) DiffSummarize(_ context.Context, _ string, _, _ int64) ([]domain.ChangeSummary, error) {
	return nil, nil
}

func (f *fakeBackend) Cat(_ context.Context, _ string) ([]byte, error) {
	return nil, nil
}

func (f *fakeBackend) Copy(_ context.Context, _, dstURL, _, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.copyCalls++
	if f.copyErr != nil {
		return 0, f.copyErr
	}

	// dstURL is <url>/<tags|branches>/<name>; record the creation.
	var url, container, name string
	parts := splitLast(dstURL, 2)
	url, container, name = parts[0], parts[1], parts[2]
	if container == "tags" {
		f.tags[url] = append(f.tags[url], name)
	} else {
		f.branches[url] = append(f.branches[url], name)
	}

	f.revision++
	return f.revision, nil
}

func (f *fakeBackend) SetRevisionAuthor(_ context.Context, _ string, _ int64, _ string) error {
	return f.authorErr
}

func (f *fakeBackend) ListTags(_ context.Context, url string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listTagsErr != nil {
		return nil, f.listTagsErr
	}
	return append([]string(nil), f.tags[url]...), nil
}

func (f *fakeBackend) ListBranches(_ context.Context, url string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.branches[url]...), nil
}

func (f *fakeBackend) CreateRepository(_ context.Context, _, _ string) error {
	return nil
}

// splitLast splits s on its last n slashes.
func splitLast(s string, n int) []string {
	parts := make([]string, n+1)
	for i := n; i > 0; i-- {
		idx := lastSlash(s)
		parts[i] = s[idx+1:]
		s = s[:idx]
	}
	parts[0] = s
	return parts
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

// fakeMetadata resolves a fixed repository table and counts invalidations.
type fakeMetadata struct {
	mu            sync.Mutex
	urls          map[string]string
	invalidations map[string]int
}

func newFakeMetadata(urls map[string]string) *fakeMetadata {
	return &fakeMetadata{
		urls:          urls,
		invalidations: make(map[string]int),
	}
}

func (f *fakeMetadata) URL(name string) (string, error) {
	if url, ok := f.urls[name]; ok {
		return url, nil
	}
	return "", fmt.Errorf("%w: '%s'", errors.ErrRepositoryNotFound, name)
}

func (f *fakeMetadata) Invalidate(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations[name]++
}

func (f *fakeMetadata) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidations[name]
}

func newTestCoordinator(t *testing.T, backend *fakeBackend, metadata *fakeMetadata) *Coordinator {
	t.Helper()

	deps, err := NewDependencies(hclog.NewNullLogger(), backend, metadata)
	require.NoError(t, err)

	c, err := NewCoordinator(deps)
	require.NoError(t, err)
	return c
}

func tagRequest(name string) domain.CreationRequest {
	return domain.CreationRequest{
		Kind:       domain.CreationKindTag,
		Repository: "widgets",
		Name:       name,
		Actor:      "alice",
	}
}

func TestCoordinator_NameValidation(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name    string
		tagName string
		valid   bool
	}{
		{name: "space is rejected", tagName: "release 1", valid: false},
		{name: "slash is rejected", tagName: "release/1", valid: false},
		{name: "empty is rejected", tagName: "", valid: false},
		{name: "shell metacharacters are rejected", tagName: "v1;rm", valid: false},
		{name: "letters digits dot dash underscore pass", tagName: "release-1.0_rc1", valid: true},
		{name: "plain version passes", tagName: "v1", valid: true},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			backend := newFakeBackend()
			metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
			c := newTestCoordinator(t, backend, metadata)

			result, err := c.Run(context.Background(), tagRequest(testCase.tagName))
			if testCase.valid {
				require.NoError(t, err)
				require.Equal(t, domain.CreationStateDone, result.State)
				return
			}

			require.ErrorIs(t, err, errors.ErrInvalidName)
			require.Equal(t, domain.CreationStateRejected, result.State)
			require.Contains(t, result.Reason, "invalid name")
			// Nothing reached the backend.
			require.Zero(t, backend.copyCalls)
		})
	}
}

func TestCoordinator_TagCreationHappyPath(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
	c := newTestCoordinator(t, backend, metadata)

	result, err := c.Run(context.Background(), tagRequest("v1.0"))
	require.NoError(t, err)
	require.Equal(t, domain.CreationStateDone, result.State)
	require.Equal(t, int64(101), result.Revision)
	require.NoError(t, result.AttributionErr)
	require.Equal(t, 1, metadata.count("widgets"))
}

func TestCoordinator_DuplicateTagRejected(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
	c := newTestCoordinator(t, backend, metadata)

	_, err := c.Run(context.Background(), tagRequest("v1.0"))
	require.NoError(t, err)

	result, err := c.Run(context.Background(), tagRequest("v1.0"))
	require.ErrorIs(t, err, errors.ErrNameExists)
	require.Equal(t, domain.CreationStateRejected, result.State)
	require.Contains(t, result.Reason, "already exists")
	require.Equal(t, 1, backend.copyCalls)
}

func TestCoordinator_ConcurrentSameNameRace(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
	c := newTestCoordinator(t, backend, metadata)

	const racers = 2
	results := make([]domain.CreationResult, racers)
	errs := make([]error, racers)

	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Run(context.Background(), tagRequest("v1"))
		}(i)
	}
	wg.Wait()

	var done, rejectedCount int
	for i := 0; i < racers; i++ {
		switch results[i].State {
		case domain.CreationStateDone:
			done++
			require.NoError(t, errs[i])
		case domain.CreationStateRejected:
			rejectedCount++
			require.ErrorIs(t, errs[i], errors.ErrNameExists)
		}
	}

	require.Equal(t, 1, done, "exactly one racer must win")
	require.Equal(t, 1, rejectedCount, "the loser must observe the collision")
	require.Equal(t, 1, backend.copyCalls)
	require.Equal(t, 1, metadata.count("widgets"))
}

func TestCoordinator_ConcurrentDistinctNamesBothSucceed(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
	c := newTestCoordinator(t, backend, metadata)

	names := []string{"v1", "v2"}
	results := make([]domain.CreationResult, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	wg.Add(len(names))
	for i, name := range names {
		go func(i int, name string) {
			defer wg.Done()
			results[i], errs[i] = c.Run(context.Background(), tagRequest(name))
		}(i, name)
	}
	wg.Wait()

	for i := range names {
		require.NoError(t, errs[i])
		require.Equal(t, domain.CreationStateDone, results[i].State)
	}
	require.Equal(t, 2, backend.copyCalls)
	// Each completed creation triggers cache invalidation exactly once.
	require.Equal(t, 2, metadata.count("widgets"))
}

func TestCoordinator_BackendFailureCarriesDiagnostic(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.copyErr = fmt.Errorf("%w: svn: E165001: commit blocked by pre-commit hook", errors.ErrBackendOperationFailed)
	metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
	c := newTestCoordinator(t, backend, metadata)

	result, err := c.Run(context.Background(), tagRequest("v1.0"))
	require.ErrorIs(t, err, errors.ErrBackendOperationFailed)
	require.Equal(t, domain.CreationStateRejected, result.State)
	require.Contains(t, result.Reason, "E165001")
	require.Zero(t, metadata.count("widgets"))
}

func TestCoordinator_AttributionFailureDoesNotRollBack(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.authorErr = fmt.Errorf("revision property change blocked by hook")
	metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
	c := newTestCoordinator(t, backend, metadata)

	result, err := c.Run(context.Background(), domain.CreationRequest{
		Kind:       domain.CreationKindBranch,
		Repository: "widgets",
		Name:       "feature-x",
		Actor:      "alice",
	})

	// The branch exists and the cache was invalidated; attribution is reported separately.
	require.NoError(t, err)
	require.Equal(t, domain.CreationStateDone, result.State)
	require.ErrorIs(t, result.AttributionErr, errors.ErrAuthorAttributionFailed)
	require.Equal(t, 1, metadata.count("widgets"))
}

func TestCoordinator_MissingTagsDirectoryMeansNoCollision(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.listTagsErr = fmt.Errorf("%w: https://svn.example.com/repos/widgets", errors.ErrNoTagsDirectory)
	metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
	c := newTestCoordinator(t, backend, metadata)

	result, err := c.Run(context.Background(), tagRequest("v1.0"))
	require.NoError(t, err)
	require.Equal(t, domain.CreationStateDone, result.State)
}

func TestCoordinator_UnknownRepository(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, newFakeBackend(), newFakeMetadata(nil))

	result, err := c.Run(context.Background(), tagRequest("v1.0"))
	require.ErrorIs(t, err, errors.ErrRepositoryNotFound)
	require.Equal(t, domain.CreationStateRejected, result.State)
}

func TestCoordinator_LockReleasedAfterRejection(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	metadata := newFakeMetadata(map[string]string{"widgets": "https://svn.example.com/repos/widgets"})
	c := newTestCoordinator(t, backend, metadata)

	_, err := c.Run(context.Background(), tagRequest("v1"))
	require.NoError(t, err)

	// A rejected run must not leave the repository scope held.
	_, err = c.Run(context.Background(), tagRequest("v1"))
	require.ErrorIs(t, err, errors.ErrNameExists)

	result, err := c.Run(context.Background(), tagRequest("v2"))
	require.NoError(t, err)
	require.Equal(t, domain.CreationStateDone, result.State)
}

func TestCoordinator_RepositoryCreation(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	metadata := newFakeMetadata(map[string]string{})
	c := newTestCoordinator(t, backend, metadata)

	result, err := c.Run(context.Background(), domain.CreationRequest{
		Kind:  domain.CreationKindRepository,
		Name:  "gadgets",
		Actor: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, domain.CreationStateDone, result.State)
	require.Equal(t, 1, metadata.count("gadgets"))
}

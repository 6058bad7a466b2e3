// Package lifecycle validates and executes repository, branch and tag
// creation. Each request is driven through an explicit state machine, and all
// requests that target the same repository are serialized so a name-collision
// check cannot be invalidated by a concurrent creation.
package lifecycle

import (
	"context"
	stdErrors "errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/pmanser/svnd/internal/contracts"
	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

var _ contracts.LifecycleRunner = (*Coordinator)(nil)

// validName is the allow-list pattern for tag, branch and repository names.
var validName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// DefaultParent is the reference a copy is taken from when the request does
// not name one.
const DefaultParent = "trunk"

// Metadata is the slice of the metadata service the coordinator relies on:
// resolving configured repository names and invalidating stale cache entries
// once a creation lands.
type Metadata interface {
	// URL resolves a configured repository name to its backend URL.
	URL(name string) (string, error)

	// Invalidate clears every cache entry derived from the named repository.
	Invalidate(name string)
}

// Coordinator executes creation requests.
// NewCoordinator should be used to create instances of Coordinator.
type Coordinator struct {
	// logger is used for logging lifecycle operations.
	logger hclog.Logger

	// backend is the version control backend adapter.
	backend contracts.VersionControlBackend

	// metadata resolves repository URLs and receives invalidations.
	metadata Metadata

	// locks serializes requests per target repository.
	locks keyedMutex
}

// Dependencies contains the required external dependencies for the coordinator.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Logger for lifecycle operations.
	Logger hclog.Logger

	// Backend is the version control backend adapter.
	Backend contracts.VersionControlBackend

	// Metadata resolves repository URLs and receives invalidations.
	Metadata Metadata
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(logger hclog.Logger, backend contracts.VersionControlBackend, metadata Metadata) (Dependencies, error) {
	deps := Dependencies{
		Logger:   logger,
		Backend:  backend,
		Metadata: metadata,
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
	if d.Metadata == nil {
		return fmt.Errorf("metadata cannot be nil")
	}
	return nil
}

// NewCoordinator creates a lifecycle coordinator with the provided dependencies.
func NewCoordinator(deps Dependencies) (*Coordinator, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for lifecycle coordinator: %w", err)
	}

	return &Coordinator{
		logger:   deps.Logger.Named("lifecycle"),
		backend:  deps.Backend,
		metadata: deps.Metadata,
	}, nil
}

// Run drives a creation request through the lifecycle state machine and
// returns its terminal result. Validation happens before the per-repository
// exclusion scope is acquired; the scope covers the existence check through
// completion and is released on every exit path.
func (c *Coordinator) Run(ctx context.Context, req domain.CreationRequest) (domain.CreationResult, error) {
	logger := c.logger.With("request_id", uuid.NewString(), "kind", req.Kind, "name", req.Name, "actor", req.Actor)
	logger.Info("Creation requested", "repository", req.Repository)

	// Validating.
	if !validName.MatchString(req.Name) {
		reason := fmt.Sprintf(
			"'%s' is an invalid name. Try using just letters, numbers, dashes, underscores and periods.",
			req.Name,
		)
		logger.Info("Creation rejected", "state", domain.CreationStateValidating, "reason", reason)
		return rejected(reason), fmt.Errorf("%w: '%s'", errors.ErrInvalidName, req.Name)
	}
	if req.Parent == "" {
		req.Parent = DefaultParent
	}

	// Repository creation has no parent repository; the new name scopes the lock.
	scope := req.Repository
	if req.Kind == domain.CreationKindRepository {
		scope = req.Name
	}

	unlock := c.locks.lock(scope)
	defer unlock()

	switch req.Kind {
	case domain.CreationKindRepository:
		return c.runCreateRepository(ctx, logger, req)
	case domain.CreationKindBranch, domain.CreationKindTag:
		return c.runCopy(ctx, logger, req)
	default:
		reason := fmt.Sprintf("unsupported creation kind '%s'", req.Kind)
		return rejected(reason), fmt.Errorf("%w: kind '%s'", errors.ErrInvalidName, req.Kind)
	}
}

// runCopy performs branch and tag creation via the backend copy operation.
func (c *Coordinator) runCopy(
	ctx context.Context,
	logger hclog.Logger,
	req domain.CreationRequest,
) (domain.CreationResult, error) {
	url, err := c.metadata.URL(req.Repository)
	if err != nil {
		return rejected(fmt.Sprintf("unknown repository '%s'", req.Repository)), err
	}

	// Checking.
	existing, err := c.listExisting(ctx, req.Kind, url)
	if err != nil {
		logger.Error("Existence check failed", "state", domain.CreationStateChecking, "error", err)
		return rejected(err.Error()), err
	}
	for _, name := range existing {
		if name == req.Name {
			reason := fmt.Sprintf("'%s' already exists, please try using a different name", req.Name)
			logger.Info("Creation rejected", "state", domain.CreationStateChecking, "reason", reason)
			return rejected(reason), fmt.Errorf("%w: %s '%s'", errors.ErrNameExists, req.Kind, req.Name)
		}
	}

	// Executing.
	srcURL := url + "/" + req.Parent
	dstURL := url + "/" + containerFor(req.Kind) + "/" + req.Name
	message := commitMessageFor(req)

	revision, err := c.backend.Copy(ctx, srcURL, dstURL, message, req.Actor)
	if err != nil {
		logger.Error("Backend copy failed", "state", domain.CreationStateExecuting, "error", err)
		return rejected(err.Error()), err
	}
	logger.Info("Creation committed", "revision", revision)

	result := domain.CreationResult{
		State:    domain.CreationStateDone,
		Revision: revision,
	}

	// RevisionTagging: the backend ran the copy as the shared service account,
	// so rewrite the new revision's author to the acting user. The creation is
	// final regardless of the outcome here.
	if err := c.backend.SetRevisionAuthor(ctx, url, revision, req.Actor); err != nil {
		logger.Error("Author attribution failed", "state", domain.CreationStateRevisionTagging, "revision", revision, "error", err)
		result.AttributionErr = fmt.Errorf("%w: r%d: %v", errors.ErrAuthorAttributionFailed, revision, err)
	}

	// Done.
	c.metadata.Invalidate(req.Repository)

	return result, nil
}

// runCreateRepository provisions a brand new repository. There is no listing
// to pre-check against; a colliding name surfaces as a backend failure.
func (c *Coordinator) runCreateRepository(
	ctx context.Context,
	logger hclog.Logger,
	req domain.CreationRequest,
) (domain.CreationResult, error) {
	if err := c.backend.CreateRepository(ctx, req.Name, req.Actor); err != nil {
		logger.Error("Repository creation failed", "state", domain.CreationStateExecuting, "error", err)
		return rejected(err.Error()), err
	}

	c.metadata.Invalidate(req.Name)
	logger.Info("Repository created")

	return domain.CreationResult{State: domain.CreationStateDone}, nil
}

// listExisting returns the names the request must not collide with.
// A missing tags/branches directory simply means nothing exists yet.
func (c *Coordinator) listExisting(ctx context.Context, kind domain.CreationKind, url string) ([]string, error) {
	var (
		names []string
		err   error
	)
	if kind == domain.CreationKindTag {
		names, err = c.backend.ListTags(ctx, url)
	} else {
		names, err = c.backend.ListBranches(ctx, url)
	}

	if stdErrors.Is(err, errors.ErrNoTagsDirectory) || stdErrors.Is(err, errors.ErrNoBranchesDirectory) {
		return nil, nil
	}
	return names, err
}

func containerFor(kind domain.CreationKind) string {
	if kind == domain.CreationKindTag {
		return "tags"
	}
	return "branches"
}

func commitMessageFor(req domain.CreationRequest) string {
	if req.Kind == domain.CreationKindTag {
		return fmt.Sprintf("Tagging the %s release", req.Name)
	}
	return fmt.Sprintf("Creating the %s branch", req.Name)
}

func rejected(reason string) domain.CreationResult {
	return domain.CreationResult{
		State:  domain.CreationStateRejected,
		Reason: reason,
	}
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pmanser/svnd/internal/contracts"
	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

// DomainCreationResult wraps a lifecycle result for API conversion.
type DomainCreationResult domain.CreationResult

// Creation reports the outcome of a lifecycle request.
type Creation struct {
	State    domain.CreationState `doc:"Terminal lifecycle state"                   json:"state"`
	Revision int64                `doc:"Created revision, for branch/tag creations" json:"revision,omitempty"`
	Reason   string               `doc:"Rejection reason, for rejected requests"    json:"reason,omitempty"`

	// AuthorAttributed is false when the creation succeeded but the revision
	// could not be re-attributed to the acting user.
	AuthorAttributed bool `doc:"Whether the created revision carries the acting user as author" json:"authorAttributed"`
}

// CreateRefRequest represents the incoming API request to create a tag or branch.
type CreateRefRequest struct {
	Token      string `cookie:"svnd_session" doc:"Session token"`
	Repository string `doc:"Name of the repository" example:"widgets" path:"name"`
	Body       struct {
		Name   string `doc:"Name of the tag or branch to create"       example:"1.2.0" json:"name"   minLength:"1"`
		Parent string `doc:"Reference to copy from, defaults to trunk" example:"trunk" json:"parent,omitempty"`
	}
}

// CreateRepositoryRequest represents the incoming API request to create a repository.
type CreateRepositoryRequest struct {
	Token string `cookie:"svnd_session" doc:"Session token"`
	Body  struct {
		Name string `doc:"Name of the repository to create" example:"widgets" json:"name" minLength:"1"`
	}
}

// CreationResponse represents the wrapped API response for a lifecycle request.
type CreationResponse struct {
	Body Creation
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainCreationResult) ToAPIType() (Creation, error) {
	return Creation{
		State:            d.State,
		Revision:         d.Revision,
		Reason:           d.Reason,
		AuthorAttributed: d.AttributionErr == nil,
	}, nil
}

// RegisterLifecycleRoutes sets up the creation API endpoint routes.
// Every route requires an authenticated session; the resolved identity becomes
// the acting user on the creation request.
func RegisterLifecycleRoutes(
	routerAPI huma.API,
	runner contracts.LifecycleRunner,
	sessions contracts.SessionAuthenticator,
	apiPathPrefix string,
) {
	lifecycleAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Lifecycle"}

	huma.Register(
		lifecycleAPI,
		huma.Operation{
			OperationID: "createTag",
			Method:      http.MethodPost,
			Path:        "/{name}/tags",
			Summary:     "Create a tag",
			Tags:        tags,
		},
		func(ctx context.Context, input *CreateRefRequest) (*CreationResponse, error) {
			return handleCreateRef(ctx, runner, sessions, domain.CreationKindTag, input)
		},
	)

	huma.Register(
		lifecycleAPI,
		huma.Operation{
			OperationID: "createBranch",
			Method:      http.MethodPost,
			Path:        "/{name}/branches",
			Summary:     "Create a branch",
			Tags:        tags,
		},
		func(ctx context.Context, input *CreateRefRequest) (*CreationResponse, error) {
			return handleCreateRef(ctx, runner, sessions, domain.CreationKindBranch, input)
		},
	)

	// Repository creation registers at the group root.
	huma.Register(
		lifecycleAPI,
		huma.Operation{
			OperationID: "createRepository",
			Method:      http.MethodPost,
			Summary:     "Create a repository",
			Tags:        tags,
		},
		func(ctx context.Context, input *CreateRepositoryRequest) (*CreationResponse, error) {
			return handleCreateRepository(ctx, runner, sessions, input)
		},
	)
}

// handleCreateRef runs a tag or branch creation on behalf of the session's user.
func handleCreateRef(
	ctx context.Context,
	runner contracts.LifecycleRunner,
	sessions contracts.SessionAuthenticator,
	kind domain.CreationKind,
	input *CreateRefRequest,
) (*CreationResponse, error) {
	identity, err := authenticate(sessions, input.Token)
	if err != nil {
		return nil, err
	}

	result, err := runner.Run(ctx, domain.CreationRequest{
		Kind:       kind,
		Repository: input.Repository,
		Name:       input.Body.Name,
		Parent:     input.Body.Parent,
		Actor:      identity.Username,
	})
	if err != nil {
		return nil, err
	}

	return creationResponse(result)
}

// handleCreateRepository runs a repository creation on behalf of the session's user.
func handleCreateRepository(
	ctx context.Context,
	runner contracts.LifecycleRunner,
	sessions contracts.SessionAuthenticator,
	input *CreateRepositoryRequest,
) (*CreationResponse, error) {
	identity, err := authenticate(sessions, input.Token)
	if err != nil {
		return nil, err
	}

	result, err := runner.Run(ctx, domain.CreationRequest{
		Kind:  domain.CreationKindRepository,
		Name:  input.Body.Name,
		Actor: identity.Username,
	})
	if err != nil {
		return nil, err
	}

	return creationResponse(result)
}

// authenticate resolves the session token to an identity.
// A missing, unknown or expired token is an unauthenticated request.
func authenticate(sessions contracts.SessionAuthenticator, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, fmt.Errorf("%w: no session cookie", errors.ErrUnauthenticated)
	}

	identity, ok := sessions.Resolve(token)
	if !ok {
		return domain.Identity{}, fmt.Errorf("%w: session expired or revoked", errors.ErrUnauthenticated)
	}

	return identity, nil
}

func creationResponse(result domain.CreationResult) (*CreationResponse, error) {
	data, err := DomainCreationResult(result).ToAPIType()
	if err != nil {
		return nil, err
	}

	return &CreationResponse{Body: data}, nil
}

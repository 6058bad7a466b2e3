package domain

const (
	// CreationKindRepository requests creation of a whole repository.
	CreationKindRepository CreationKind = "repository"

	// CreationKindBranch requests creation of a branch from a parent reference.
	CreationKindBranch CreationKind = "branch"

	// CreationKindTag requests creation of a tag from a parent reference.
	CreationKindTag CreationKind = "tag"
)

const (
	CreationStateValidating      CreationState = "validating"
	CreationStateChecking        CreationState = "checking"
	CreationStateExecuting       CreationState = "executing"
	CreationStateRevisionTagging CreationState = "revision_tagging"
	CreationStateDone            CreationState = "done"
	CreationStateRejected        CreationState = "rejected"
)

// CreationKind identifies what a lifecycle request creates.
type CreationKind string

// CreationState is one step of the lifecycle coordinator's state machine.
type CreationState string

// CreationRequest is a pending creation. It is never persisted; it exists only
// for the duration of one coordinated operation.
type CreationRequest struct {
	// Kind is what to create.
	Kind CreationKind `json:"kind"`

	// Repository is the short name of the repository the creation targets.
	// Empty for repository creation, where Name is the new repository itself.
	Repository string `json:"repository,omitempty"`

	// Name is the requested tag/branch/repository name.
	Name string `json:"name"`

	// Parent is the reference the copy is taken from, defaulting to "trunk".
	Parent string `json:"parent,omitempty"`

	// Actor is the authenticated user performing the creation.
	Actor string `json:"actor"`
}

// CreationResult reports the terminal state of a lifecycle request.
type CreationResult struct {
	// State is the terminal state, CreationStateDone or CreationStateRejected.
	State CreationState `json:"state"`

	// Revision is the newly created revision for Done results of branch/tag creation.
	Revision int64 `json:"revision,omitempty"`

	// Reason is the human-readable rejection reason for Rejected results.
	Reason string `json:"reason,omitempty"`

	// AttributionErr reports a failed author rewrite on an otherwise successful
	// creation. The creation is final; this is informational.
	AttributionErr error `json:"-"`
}

package client

import (
	"context"
	"net/http"
	"time"

	"github.com/pitabwire/pscale/operation"
)

// BranchChangeRequest is a pending change to a branch's cluster settings.
type BranchChangeRequest struct {
	ID          string     `json:"id" validate:"required"`
	State       string     `json:"state" validate:"required"`
	ClusterSize string     `json:"cluster_size,omitempty"`
	Replicas    int        `json:"replicas"`
	Actor       string     `json:"actor,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// BranchChangeRequestInput identifies a change request on a branch.
type BranchChangeRequestInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Branch       string `json:"branch" validate:"required"`
	ID           string `json:"id" validate:"required"`
}

var (
	ErrGetBranchChangeRequestUnauthorized = sentinel("GetBranchChangeRequest", unauthorized)
	ErrGetBranchChangeRequestForbidden    = sentinel("GetBranchChangeRequest", forbidden)
	ErrGetBranchChangeRequestNotFound     = sentinel("GetBranchChangeRequest", notFound)
)

var getBranchChangeRequest = operation.Make[BranchChangeRequestInput, BranchChangeRequest](func() operation.Descriptor[BranchChangeRequestInput] {
	return operation.Descriptor[BranchChangeRequestInput]{
		Name:       "getBranchChangeRequest",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}/databases/{database}/branches/{branch}/changes/{id}",
		PathParams: []string{"organization", "database", "branch", "id"},
		Errors:     declare("GetBranchChangeRequest", readFailures),
	}
})

// GetBranchChangeRequest fetches one branch change request.
func (c *Client) GetBranchChangeRequest(ctx context.Context, in BranchChangeRequestInput) (BranchChangeRequest, error) {
	return call(ctx, c, getBranchChangeRequest, in)
}

// internal/app/features/grants/types.go
package grants

import (
	"github.com/coursedeck/coursedeck/internal/app/assignment"
	"github.com/coursedeck/coursedeck/internal/domain/models"
)

type createGrantRequest struct {
	UserID      string `json:"user_id"`
	PurchaseRef string `json:"purchase_ref,omitempty"`
}

// grantResponse pairs the recorded grant with the allocation outcome, so the
// caller sees in one response whether the buyer landed in a group.
type grantResponse struct {
	Grant      models.AccessGrant `json:"grant"`
	Allocation assignment.Result  `json:"allocation"`
}

type retryResponse struct {
	FailureID  string            `json:"failure_id"`
	Allocation assignment.Result `json:"allocation"`
}

package user

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// DefaultRole is what a freshly synced user gets. Role only changes
// afterwards through the explicit role update endpoint.
const DefaultRole = RoleCandidate

func (r Role) Valid() bool {
	return r == RoleInterviewer || r == RoleCandidate
}

type User struct {
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Image      string    `json:"image,omitempty"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("user not found")

// SyncRequest carries the fields extracted from an identity provider
// webhook event. It is not bound from client JSON.
type SyncRequest struct {
	ExternalID string
	Email      string
	Name       string
	Image      string
}

type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=interviewer candidate"`
}

// DisplayName concatenates the provider's given and family name fields
// and trims incidental whitespace. Either side may be empty.
func DisplayName(first, last string) string {
	return strings.TrimSpace(first + last)
}

func NewFromSyncRequest(req SyncRequest) User {
	now := time.Now().UTC()

	return User{
		ExternalID: req.ExternalID,
		Email:      req.Email,
		Name:       req.Name,
		Image:      req.Image,
		Role:       DefaultRole,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

package meeting

import (
	"errors"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Meeting struct {
	ID                    string    `json:"id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description,omitempty"`
	InterviewerExternalID string    `json:"interviewerExternalId"`
	CandidateExternalID   string    `json:"candidateExternalId"`
	StartAt               time.Time `json:"startAt"`
	Status                Status    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("meeting not found")

// with pointers if optional, it will be nil
type ListFilter struct {
	ParticipantExternalID string
	Status                *Status
}

type CreateMeetingRequest struct {
	Title               string    `json:"title" binding:"required,min=3,max=120"`
	Description         string    `json:"description" binding:"omitempty,max=1000"`
	CandidateExternalID string    `json:"candidateExternalId" binding:"required"`
	StartAt             time.Time `json:"startAt" binding:"required"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=completed cancelled"`
}

// CanTransitionTo guards the status state machine: only a scheduled
// meeting can move, and it moves into a terminal state.
func (m Meeting) CanTransitionTo(next Status) bool {
	if m.Status != StatusScheduled {
		return false
	}

	return next == StatusCompleted || next == StatusCancelled
}

func (m Meeting) HasParticipant(externalID string) bool {
	return m.InterviewerExternalID == externalID || m.CandidateExternalID == externalID
}

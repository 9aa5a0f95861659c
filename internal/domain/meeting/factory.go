package meeting

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(interviewerExternalID string, req CreateMeetingRequest) Meeting {
	now := time.Now().UTC()

	return Meeting{
		ID:                    uuid.NewString(),
		Title:                 req.Title,
		Description:           req.Description,
		InterviewerExternalID: interviewerExternalID,
		CandidateExternalID:   req.CandidateExternalID,
		StartAt:               req.StartAt,
		Status:                StatusScheduled,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

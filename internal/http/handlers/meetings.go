package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/intervue/internal/domain/meeting"
	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/geocoder89/intervue/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type MeetingsStore interface {
	Create(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error)
	GetByID(ctx context.Context, id string) (meeting.Meeting, error)
	List(ctx context.Context, filter meeting.ListFilter) ([]meeting.Meeting, error)
	UpdateStatus(ctx context.Context, id string, status meeting.Status) (meeting.Meeting, error)
}

type ParticipantReader interface {
	GetByExternalID(ctx context.Context, externalID string) (user.User, error)
}

type MeetingsHandler struct {
	store MeetingsStore
	users ParticipantReader
}

func NewMeetingsHandler(store MeetingsStore, users ParticipantReader) *MeetingsHandler {
	return &MeetingsHandler{
		store: store,
		users: users,
	}
}

// POST /api/meetings  (interviewer role enforced by the router)
func (h *MeetingsHandler) CreateMeeting(ctx *gin.Context) {
	interviewerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req meeting.CreateMeetingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	// the candidate must already be a synced user
	candidate, err := h.users.GetByExternalID(rctx, req.CandidateExternalID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondBadRequest(ctx, "Candidate is not a known user", nil)
			return
		}

		RespondInternal(ctx, "Could not create meeting")
		return
	}

	if candidate.ExternalID == interviewerID {
		RespondBadRequest(ctx, "Cannot schedule a meeting with yourself", nil)
		return
	}

	m, err := h.store.Create(rctx, meeting.NewFromCreateRequest(interviewerID, req))

	if err != nil {
		RespondInternal(ctx, "Could not create meeting")
		return
	}

	ctx.JSON(http.StatusCreated, m)
}

// GET /api/meetings?status=scheduled
func (h *MeetingsHandler) ListMeetings(ctx *gin.Context) {
	externalID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	filter := meeting.ListFilter{ParticipantExternalID: externalID}

	if raw := ctx.Query("status"); raw != "" {
		status := meeting.Status(raw)

		switch status {
		case meeting.StatusScheduled, meeting.StatusCompleted, meeting.StatusCancelled:
			filter.Status = &status
		default:
			RespondBadRequest(ctx, "Unknown status filter", gin.H{"status": raw})
			return
		}
	}

	meetings, err := h.store.List(ctx.Request.Context(), filter)

	if err != nil {
		RespondInternal(ctx, "Could not list meetings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": meetings,
		"count": len(meetings),
	})
}

// GET /api/meetings/:id
func (h *MeetingsHandler) GetMeetingByID(ctx *gin.Context) {
	externalID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	m, err := h.store.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			RespondNotFound(ctx, "Meeting not found")
			return
		}

		RespondInternal(ctx, "Could not fetch meeting")
		return
	}

	// participants only; everyone else sees a 404, not a 403
	if !m.HasParticipant(externalID) {
		RespondNotFound(ctx, "Meeting not found")
		return
	}

	ctx.JSON(http.StatusOK, m)
}

// PUT /api/meetings/:id/status
func (h *MeetingsHandler) UpdateMeetingStatus(ctx *gin.Context) {
	externalID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req meeting.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	m, err := h.store.GetByID(rctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			RespondNotFound(ctx, "Meeting not found")
			return
		}

		RespondInternal(ctx, "Could not fetch meeting")
		return
	}

	if m.InterviewerExternalID != externalID {
		RespondForbidden(ctx, "Only the interviewer can close a meeting")
		return
	}

	if !m.CanTransitionTo(req.Status) {
		RespondConflict(ctx, "invalid_transition", "Meeting is no longer scheduled")
		return
	}

	updated, err := h.store.UpdateStatus(rctx, m.ID, req.Status)

	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			// lost a race with another status change
			RespondConflict(ctx, "invalid_transition", "Meeting is no longer scheduled")
			return
		}

		RespondInternal(ctx, "Could not update meeting")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

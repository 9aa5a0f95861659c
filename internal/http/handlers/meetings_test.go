package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/intervue/internal/domain/meeting"
	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/geocoder89/intervue/internal/http/handlers"
	"github.com/geocoder89/intervue/internal/http/middlewares"
	"github.com/geocoder89/intervue/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

func seedMeeting(t *testing.T, repo *memory.MeetingsRepo, interviewerID, candidateID string) meeting.Meeting {
	t.Helper()

	m, err := repo.Create(context.Background(), meeting.NewFromCreateRequest(interviewerID, meeting.CreateMeetingRequest{
		Title:               "Backend screen",
		CandidateExternalID: candidateID,
		StartAt:             time.Now().UTC().Add(24 * time.Hour),
	}))

	if err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}

	return m
}

func TestCreateMeeting(t *testing.T) {
	startAt := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"title": "Backend screen", "candidateExternalId": "cand1", "startAt": "` + startAt + `"}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "unknown_candidate",
			body:           `{"title": "Backend screen", "candidateExternalId": "ghost", "startAt": "` + startAt + `"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "self_meeting",
			body:           `{"title": "Backend screen", "candidateExternalId": "int1", "startAt": "` + startAt + `"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_start",
			body:           `{"title": "Backend screen", "candidateExternalId": "cand1"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := memory.NewUsersRepo()
			seedUser(t, users, "int1", "int@x.com")
			seedUser(t, users, "cand1", "cand@x.com")

			meetings := memory.NewMeetingsRepo()

			h := handlers.NewMeetingsHandler(meetings, users)
			r := setupAuthedRouter("int1", http.MethodPost, "/api/meetings", h.CreateMeeting)

			w := doJSON(r, http.MethodPost, "/api/meetings", tt.body, true)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var m meeting.Meeting

				if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
					t.Fatalf("unmarshal meeting: %v", err)
				}

				if m.InterviewerExternalID != "int1" {
					t.Errorf("interviewer = %q, want caller identity", m.InterviewerExternalID)
				}

				if m.Status != meeting.StatusScheduled {
					t.Errorf("status = %q, want %q", m.Status, meeting.StatusScheduled)
				}
			}
		})
	}
}

// The interviewer role gate sits in front of meeting creation.
func TestCreateMeetingRequiresInterviewerRole(t *testing.T) {
	users := memory.NewUsersRepo()
	seedUser(t, users, "cand1", "cand@x.com") // default role: candidate

	meetings := memory.NewMeetingsRepo()
	h := handlers.NewMeetingsHandler(meetings, users)

	auth := middlewares.NewAuthMiddleware(fakeSessions{externalID: "cand1"})

	r := gin.New()
	r.POST("/api/meetings",
		auth.RequireAuth(),
		auth.RequireRole(users, user.RoleInterviewer),
		h.CreateMeeting,
	)

	startAt := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	body := `{"title": "Backend screen", "candidateExternalId": "someone", "startAt": "` + startAt + `"}`

	w := doJSON(r, http.MethodPost, "/api/meetings", body, true)

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusForbidden, w.Body.String())
	}
}

func TestGetMeetingByID(t *testing.T) {
	users := memory.NewUsersRepo()
	meetings := memory.NewMeetingsRepo()
	m := seedMeeting(t, meetings, "int1", "cand1")

	h := handlers.NewMeetingsHandler(meetings, users)

	tests := []struct {
		name           string
		caller         string
		target         string
		wantStatusCode int
	}{
		{name: "interviewer_sees_it", caller: "int1", target: "/api/meetings/" + m.ID, wantStatusCode: http.StatusOK},
		{name: "candidate_sees_it", caller: "cand1", target: "/api/meetings/" + m.ID, wantStatusCode: http.StatusOK},
		{name: "outsider_gets_404", caller: "other", target: "/api/meetings/" + m.ID, wantStatusCode: http.StatusNotFound},
		{name: "unknown_id", caller: "int1", target: "/api/meetings/does-not-exist", wantStatusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := setupAuthedRouter(tt.caller, http.MethodGet, "/api/meetings/:id", h.GetMeetingByID)

			w := doJSON(r, http.MethodGet, tt.target, "", true)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListMeetingsFiltersByParticipantAndStatus(t *testing.T) {
	users := memory.NewUsersRepo()
	meetings := memory.NewMeetingsRepo()

	mine := seedMeeting(t, meetings, "int1", "cand1")
	seedMeeting(t, meetings, "int2", "cand2") // someone else's

	done := seedMeeting(t, meetings, "int1", "cand3")
	if _, err := meetings.UpdateStatus(context.Background(), done.ID, meeting.StatusCompleted); err != nil {
		t.Fatalf("seed status update: %v", err)
	}

	h := handlers.NewMeetingsHandler(meetings, users)
	r := setupAuthedRouter("int1", http.MethodGet, "/api/meetings", h.ListMeetings)

	tests := []struct {
		name           string
		target         string
		wantStatusCode int
		wantIDs        []string
	}{
		{name: "all_mine", target: "/api/meetings", wantStatusCode: http.StatusOK, wantIDs: []string{mine.ID, done.ID}},
		{name: "scheduled_only", target: "/api/meetings?status=scheduled", wantStatusCode: http.StatusOK, wantIDs: []string{mine.ID}},
		{name: "bad_status", target: "/api/meetings?status=paused", wantStatusCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodGet, tt.target, "", true)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantIDs == nil {
				return
			}

			var resp struct {
				Items []meeting.Meeting `json:"items"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}

			got := make(map[string]bool, len(resp.Items))
			for _, m := range resp.Items {
				got[m.ID] = true
			}

			if len(resp.Items) != len(tt.wantIDs) {
				t.Fatalf("got %d meetings, want %d", len(resp.Items), len(tt.wantIDs))
			}

			for _, id := range tt.wantIDs {
				if !got[id] {
					t.Errorf("missing meeting %s in listing", id)
				}
			}
		})
	}
}

func TestUpdateMeetingStatus(t *testing.T) {
	tests := []struct {
		name           string
		caller         string
		preStatus      *meeting.Status
		body           string
		wantStatusCode int
	}{
		{
			name:           "interviewer_completes",
			caller:         "int1",
			body:           `{"status": "completed"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "candidate_cannot_close",
			caller:         "cand1",
			body:           `{"status": "completed"}`,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "back_to_scheduled_rejected_by_binding",
			caller:         "int1",
			body:           `{"status": "scheduled"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "terminal_state_is_frozen",
			caller:         "int1",
			preStatus:      statusPtr(meeting.StatusCancelled),
			body:           `{"status": "completed"}`,
			wantStatusCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := memory.NewUsersRepo()
			meetings := memory.NewMeetingsRepo()
			m := seedMeeting(t, meetings, "int1", "cand1")

			if tt.preStatus != nil {
				if _, err := meetings.UpdateStatus(context.Background(), m.ID, *tt.preStatus); err != nil {
					t.Fatalf("seed status update: %v", err)
				}
			}

			h := handlers.NewMeetingsHandler(meetings, users)
			r := setupAuthedRouter(tt.caller, http.MethodPut, "/api/meetings/:id/status", h.UpdateMeetingStatus)

			w := doJSON(r, http.MethodPut, "/api/meetings/"+m.ID+"/status", tt.body, true)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func statusPtr(s meeting.Status) *meeting.Status {
	return &s
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/intervue/internal/domain/meeting"
)

type MeetingsRepo struct {
	mu       sync.Mutex
	meetings map[string]meeting.Meeting
}

func NewMeetingsRepo() *MeetingsRepo {
	return &MeetingsRepo{
		meetings: make(map[string]meeting.Meeting),
	}
}

func (r *MeetingsRepo) Create(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.meetings[m.ID] = m

	return m, nil
}

func (r *MeetingsRepo) GetByID(ctx context.Context, id string) (meeting.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetings[id]

	if !ok {
		return meeting.Meeting{}, meeting.ErrNotFound
	}

	return m, nil
}

func (r *MeetingsRepo) List(ctx context.Context, filter meeting.ListFilter) ([]meeting.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]meeting.Meeting, 0)

	for _, m := range r.meetings {
		if !m.HasParticipant(filter.ParticipantExternalID) {
			continue
		}

		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}

		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})

	return out, nil
}

func (r *MeetingsRepo) UpdateStatus(ctx context.Context, id string, status meeting.Status) (meeting.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetings[id]

	if !ok || m.Status != meeting.StatusScheduled {
		return meeting.Meeting{}, meeting.ErrNotFound
	}

	m.Status = status
	m.UpdatedAt = time.Now().UTC()
	r.meetings[id] = m

	return m, nil
}

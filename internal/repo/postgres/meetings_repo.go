package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/intervue/internal/domain/meeting"
	"github.com/geocoder89/intervue/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MeetingsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMeetingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *MeetingsRepo {
	return &MeetingsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *MeetingsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *MeetingsRepo) Create(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	err := r.observe("meetings.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO meetings (id, title, description, interviewer_external_id, candidate_external_id, start_at, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			m.ID, m.Title, m.Description, m.InterviewerExternalID, m.CandidateExternalID, m.StartAt, m.Status, m.CreatedAt, m.UpdatedAt)

		return err
	})

	if err != nil {
		return meeting.Meeting{}, err
	}

	return m, nil
}

func (r *MeetingsRepo) GetByID(ctx context.Context, id string) (meeting.Meeting, error) {
	var m meeting.Meeting

	err := r.observe("meetings.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, description, interviewer_external_id, candidate_external_id, start_at, status, created_at, updated_at
			 FROM meetings
			 WHERE id = $1`,
			id,
		).Scan(&m.ID, &m.Title, &m.Description, &m.InterviewerExternalID, &m.CandidateExternalID, &m.StartAt, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meeting.Meeting{}, meeting.ErrNotFound
		}

		return meeting.Meeting{}, err
	}

	return m, nil
}

func (r *MeetingsRepo) List(ctx context.Context, filter meeting.ListFilter) ([]meeting.Meeting, error) {
	query := `SELECT id, title, description, interviewer_external_id, candidate_external_id, start_at, status, created_at, updated_at
		FROM meetings
		WHERE (interviewer_external_id = $1 OR candidate_external_id = $1)`

	args := []interface{}{filter.ParticipantExternalID}

	if filter.Status != nil {
		query += ` AND status = $2`
		args = append(args, *filter.Status)
	}

	// stable ordering by start time
	query += ` ORDER BY start_at ASC, id ASC`

	var out []meeting.Meeting

	err := r.observe("meetings.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]meeting.Meeting, 0)

		for rows.Next() {
			var m meeting.Meeting

			err = rows.Scan(&m.ID, &m.Title, &m.Description, &m.InterviewerExternalID, &m.CandidateExternalID, &m.StartAt, &m.Status, &m.CreatedAt, &m.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// UpdateStatus moves a scheduled meeting into a terminal state. The
// status guard lives in the statement itself so concurrent updates
// cannot race past the state machine.
func (r *MeetingsRepo) UpdateStatus(ctx context.Context, id string, status meeting.Status) (meeting.Meeting, error) {
	var m meeting.Meeting

	err := r.observe("meetings.update_status", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE meetings
			 SET status = $2, updated_at = now()
			 WHERE id = $1 AND status = 'scheduled'
			 RETURNING id, title, description, interviewer_external_id, candidate_external_id, start_at, status, created_at, updated_at`,
			id, status,
		).Scan(&m.ID, &m.Title, &m.Description, &m.InterviewerExternalID, &m.CandidateExternalID, &m.StartAt, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meeting.Meeting{}, meeting.ErrNotFound
		}

		return meeting.Meeting{}, err
	}

	return m, nil
}

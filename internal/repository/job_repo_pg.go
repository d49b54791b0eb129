package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, key string) error
	ListPending(ctx context.Context) ([]domain.Job, error)
	MarkFired(ctx context.Context, key string, at time.Time) (bool, error)
}

type PGJobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) JobRepository {
	return &PGJobRepository{db: db}
}

func (r *PGJobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.QueryRow(ctx, `INSERT INTO delivery_jobs (job_key, delivery_id, fire_at) VALUES ($1, $2, $3) RETURNING created_at`,
		job.Key, job.DeliveryID, job.FireAt).Scan(&job.CreatedAt)
}

// Delete removes a job that has not fired yet. Fired or unknown jobs yield
// ErrNotFound.
func (r *PGJobRepository) Delete(ctx context.Context, key string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM delivery_jobs WHERE job_key=$1 AND fired_at IS NULL`, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGJobRepository) ListPending(ctx context.Context) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT job_key, delivery_id, fire_at, fired_at, created_at FROM delivery_jobs WHERE fired_at IS NULL ORDER BY fire_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]domain.Job, 0)
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(&j.Key, &j.DeliveryID, &j.FireAt, &j.FiredAt, &j.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// MarkFired claims the job for execution. Only the first caller gets true.
func (r *PGJobRepository) MarkFired(ctx context.Context, key string, at time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE delivery_jobs SET fired_at=$1 WHERE job_key=$2 AND fired_at IS NULL`, at, key)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

var _ JobRepository = (*PGJobRepository)(nil)

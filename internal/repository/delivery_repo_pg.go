package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.Delivery) error
	GetByID(ctx context.Context, id int64) (*domain.Delivery, error)
	List(ctx context.Context) ([]domain.Delivery, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Delivery, error)
	UpdateSchedule(ctx context.Context, delivery *domain.Delivery) error
	Delete(ctx context.Context, id int64) error
	UpdateStatusByDroneWindow(ctx context.Context, droneID int64, status domain.DeliveryStatus, at time.Time, returnBuffer time.Duration) (int64, error)
}

type PGDeliveryRepository struct {
	db *pgxpool.Pool
}

func NewDeliveryRepository(db *pgxpool.Pool) DeliveryRepository {
	return &PGDeliveryRepository{db: db}
}

const deliveryColumns = `id, start_address, end_address, start_latitude, start_longitude, end_latitude, end_longitude,
	pickup_time, estimated_arrival, status, drone_id, user_id, user_name, scheduler_job_key, tracking_number, created_at, updated_at`

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var d domain.Delivery
	if err := row.Scan(&d.ID, &d.StartAddress, &d.EndAddress, &d.Start.Latitude, &d.Start.Longitude, &d.End.Latitude, &d.End.Longitude,
		&d.PickupTime, &d.EstimatedArrival, &d.Status, &d.DroneID, &d.UserID, &d.UserName, &d.SchedulerJobKey, &d.TrackingNumber,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PGDeliveryRepository) Create(ctx context.Context, d *domain.Delivery) error {
	return r.db.QueryRow(ctx, `INSERT INTO deliveries (start_address, end_address, start_latitude, start_longitude, end_latitude, end_longitude,
		pickup_time, estimated_arrival, status, drone_id, user_id, user_name, scheduler_job_key, tracking_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		d.StartAddress, d.EndAddress, d.Start.Latitude, d.Start.Longitude, d.End.Latitude, d.End.Longitude,
		d.PickupTime, d.EstimatedArrival, d.Status, d.DroneID, d.UserID, d.UserName, d.SchedulerJobKey, d.TrackingNumber).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *PGDeliveryRepository) GetByID(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (r *PGDeliveryRepository) List(ctx context.Context) ([]domain.Delivery, error) {
	return r.query(ctx, `SELECT `+deliveryColumns+` FROM deliveries ORDER BY pickup_time, id`)
}

func (r *PGDeliveryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Delivery, error) {
	return r.query(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE user_id=$1 ORDER BY pickup_time, id`, userID)
}

func (r *PGDeliveryRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Delivery, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := make([]domain.Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, *d)
	}
	return deliveries, rows.Err()
}

// UpdateSchedule persists the pickup time, estimated arrival, assigned drone
// and trigger key of an existing delivery.
func (r *PGDeliveryRepository) UpdateSchedule(ctx context.Context, d *domain.Delivery) error {
	err := r.db.QueryRow(ctx, `UPDATE deliveries
		SET pickup_time=$1, estimated_arrival=$2, drone_id=$3, scheduler_job_key=$4, updated_at=now()
		WHERE id=$5 RETURNING updated_at`,
		d.PickupTime, d.EstimatedArrival, d.DroneID, d.SchedulerJobKey, d.ID).Scan(&d.UpdatedAt)
	return notFound(err)
}

func (r *PGDeliveryRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM deliveries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusByDroneWindow sets the status of every delivery of the drone
// whose booking window [pickup, eta+returnBuffer] contains at. It reports the
// number of updated rows; zero is not an error.
func (r *PGDeliveryRepository) UpdateStatusByDroneWindow(ctx context.Context, droneID int64, status domain.DeliveryStatus, at time.Time, returnBuffer time.Duration) (int64, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE deliveries SET status=$1, updated_at=now()
		WHERE drone_id=$2
		AND $3::timestamptz BETWEEN pickup_time AND estimated_arrival + make_interval(secs => $4::double precision)`,
		status, droneID, at, returnBuffer.Seconds())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var _ DeliveryRepository = (*PGDeliveryRepository)(nil)

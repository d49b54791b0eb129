package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	callSigns   = []string{"Falcon", "Kestrel", "Osprey", "Swift", "Heron", "Merlin", "Harrier", "Condor"}
	droneModels = []string{"DJI Matrice 300", "Wingcopter 198", "Zipline P2", "Matternet M2"}
)

type DroneRepository interface {
	List(ctx context.Context) ([]domain.Drone, error)
	GetByID(ctx context.Context, id int64) (*domain.Drone, error)
	UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error
}

type PGDroneRepository struct {
	db *pgxpool.Pool
}

func NewDroneRepository(db *pgxpool.Pool) DroneRepository {
	return &PGDroneRepository{db: db}
}

func (r *PGDroneRepository) List(ctx context.Context) ([]domain.Drone, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nick_name, model, drone_status, operation_status FROM drones ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drones := make([]domain.Drone, 0)
	for rows.Next() {
		var d domain.Drone
		if err := rows.Scan(&d.ID, &d.NickName, &d.Model, &d.Status, &d.OperationStatus); err != nil {
			return nil, err
		}
		drones = append(drones, d)
	}
	return drones, rows.Err()
}

func (r *PGDroneRepository) GetByID(ctx context.Context, id int64) (*domain.Drone, error) {
	row := r.db.QueryRow(ctx, `SELECT id, nick_name, model, drone_status, operation_status FROM drones WHERE id=$1`, id)
	var d domain.Drone
	if err := row.Scan(&d.ID, &d.NickName, &d.Model, &d.Status, &d.OperationStatus); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *PGDroneRepository) UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error {
	res, err := r.db.Exec(ctx, `UPDATE drones SET drone_status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedFleet tops the drones table up to size parked, operational drones and
// returns how many were added.
func SeedFleet(ctx context.Context, db *pgxpool.Pool, size int) (int, error) {
	var count int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM drones`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count drones: %w", err)
	}
	missing := size - count
	if missing <= 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := count; i < size; i++ {
		nickName := fmt.Sprintf("%s-%02d", callSigns[i%len(callSigns)], i+1)
		batch.Queue(`INSERT INTO drones (nick_name, model) VALUES ($1, $2)`, nickName, droneModels[i%len(droneModels)])
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert drones: %w", err)
	}
	return missing, nil
}

var _ DroneRepository = (*PGDroneRepository)(nil)

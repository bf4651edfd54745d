package medication

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const medCols = `id, name, generic_name, form, status, description, created_at, updated_at`

func (r *repoPG) scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.Name, &m.GenericName, &m.Form, &m.Status,
		&m.Description, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	if m.Status == "" {
		m.Status = "active"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medication (id, name, generic_name, form, status, description)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.Name, m.GenericName, m.Form, m.Status, m.Description)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return r.scanMedication(r.pool.QueryRow(ctx, `SELECT `+medCols+` FROM medication WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE medication SET name=$2, generic_name=$3, form=$4, status=$5,
			description=$6, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.GenericName, m.Form, m.Status, m.Description)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medication`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+medCols+` FROM medication ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Medication
	for rows.Next() {
		m, err := r.scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AddDoseTier(ctx context.Context, dt *DoseTier) error {
	dt.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medication_dose_tier (id, medication_id, dosage_mg, price_cents, order_index)
		VALUES ($1,$2,$3,$4,$5)`,
		dt.ID, dt.MedicationID, dt.DosageMG, dt.PriceCents, dt.OrderIndex)
	return err
}

func (r *repoPG) GetDoseTiers(ctx context.Context, medicationID uuid.UUID) ([]*DoseTier, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, medication_id, dosage_mg, price_cents, order_index
		FROM medication_dose_tier WHERE medication_id = $1 ORDER BY order_index`, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []*DoseTier
	for rows.Next() {
		var dt DoseTier
		if err := rows.Scan(&dt.ID, &dt.MedicationID, &dt.DosageMG, &dt.PriceCents, &dt.OrderIndex); err != nil {
			return nil, err
		}
		tiers = append(tiers, &dt)
	}
	return tiers, rows.Err()
}

func (r *repoPG) RemoveDoseTier(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM medication_dose_tier WHERE id = $1`, id)
	return err
}

// =========== Stock Repository ===========

type stockRepoPG struct{ pool *pgxpool.Pool }

func NewStockRepoPG(pool *pgxpool.Pool) StockRepository { return &stockRepoPG{pool: pool} }

func (r *stockRepoPG) Get(ctx context.Context, medicationID uuid.UUID, dosageMG float64) (*StockLevel, error) {
	var s StockLevel
	err := r.pool.QueryRow(ctx, `
		SELECT id, medication_id, dosage_mg, quantity, updated_at
		FROM medication_stock WHERE medication_id = $1 AND dosage_mg = $2`,
		medicationID, dosageMG).
		Scan(&s.ID, &s.MedicationID, &s.DosageMG, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepoPG) ListByMedication(ctx context.Context, medicationID uuid.UUID) ([]*StockLevel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, medication_id, dosage_mg, quantity, updated_at
		FROM medication_stock WHERE medication_id = $1 ORDER BY dosage_mg`, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []*StockLevel
	for rows.Next() {
		var s StockLevel
		if err := rows.Scan(&s.ID, &s.MedicationID, &s.DosageMG, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, &s)
	}
	return levels, rows.Err()
}

func (r *stockRepoPG) Adjust(ctx context.Context, medicationID uuid.UUID, dosageMG float64, delta int) (*StockLevel, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var s StockLevel
	err = tx.QueryRow(ctx, `
		SELECT id, medication_id, dosage_mg, quantity, updated_at
		FROM medication_stock
		WHERE medication_id = $1 AND dosage_mg = $2
		FOR UPDATE`, medicationID, dosageMG).
		Scan(&s.ID, &s.MedicationID, &s.DosageMG, &s.Quantity, &s.UpdatedAt)
	if err == pgx.ErrNoRows {
		if delta < 0 {
			return nil, fmt.Errorf("insufficient stock: have 0, want %d", -delta)
		}
		s = StockLevel{ID: uuid.New(), MedicationID: medicationID, DosageMG: dosageMG, Quantity: delta}
		if _, err := tx.Exec(ctx, `
			INSERT INTO medication_stock (id, medication_id, dosage_mg, quantity)
			VALUES ($1,$2,$3,$4)`, s.ID, s.MedicationID, s.DosageMG, s.Quantity); err != nil {
			return nil, err
		}
		return &s, tx.Commit(ctx)
	}
	if err != nil {
		return nil, err
	}

	next := s.Quantity + delta
	if next < 0 {
		return nil, fmt.Errorf("insufficient stock: have %d, want %d", s.Quantity, -delta)
	}
	if err := tx.QueryRow(ctx, `
		UPDATE medication_stock SET quantity = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING quantity, updated_at`, s.ID, next).
		Scan(&s.Quantity, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, tx.Commit(ctx)
}

package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, first_name, last_name, email, phone, date_of_birth,
	avatar_url, height_cm, weight_kg, status, created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.DateOfBirth,
		&p.AvatarURL, &p.HeightCM, &p.WeightKG, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.Status == "" {
		p.Status = "active"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, first_name, last_name, email, phone, date_of_birth,
			avatar_url, height_cm, weight_kg, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth,
		p.AvatarURL, p.HeightCM, p.WeightKG, p.Status)
	if err != nil {
		return err
	}
	if len(p.TagIDs) > 0 {
		return r.SetTags(ctx, p.ID, p.TagIDs)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := r.scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	p.TagIDs, err = r.GetTagIDs(ctx, id)
	return p, err
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, email=$4, phone=$5,
			date_of_birth=$6, avatar_url=$7, height_cm=$8, weight_kg=$9, status=$10,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone,
		p.DateOfBirth, p.AvatarURL, p.HeightCM, p.WeightKG, p.Status)
	if err != nil {
		return err
	}
	if p.TagIDs != nil {
		return r.SetTags(ctx, p.ID, p.TagIDs)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(ctx, rows, total)
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient
		WHERE status != 'archived' ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, _, err := r.collect(ctx, rows, 0)
	return items, err
}

func (r *repoPG) Search(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + name + "%"
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE first_name ILIKE $1 OR last_name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient
		WHERE first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(ctx, rows, total)
}

func (r *repoPG) collect(ctx context.Context, rows pgx.Rows, total int) ([]*Patient, int, error) {
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, p := range items {
		tagIDs, err := r.GetTagIDs(ctx, p.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("load tags for patient %s: %w", p.ID, err)
		}
		p.TagIDs = tagIDs
	}
	return items, total, nil
}

func (r *repoPG) SetTags(ctx context.Context, patientID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM patient_tag_link WHERE patient_id = $1`, patientID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO patient_tag_link (patient_id, tag_id) VALUES ($1, $2)`, patientID, tagID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repoPG) GetTagIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT tag_id FROM patient_tag_link WHERE patient_id = $1`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =========== Tag Repository ===========

type tagRepoPG struct{ pool *pgxpool.Pool }

func NewTagRepoPG(pool *pgxpool.Pool) TagRepository { return &tagRepoPG{pool: pool} }

func (r *tagRepoPG) Create(ctx context.Context, t *Tag) error {
	t.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO patient_tag (id, name, color) VALUES ($1, $2, $3)`, t.ID, t.Name, t.Color)
	return err
}

func (r *tagRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	var t Tag
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, color, created_at FROM patient_tag WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tagRepoPG) Update(ctx context.Context, t *Tag) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE patient_tag SET name=$2, color=$3 WHERE id = $1`, t.ID, t.Name, t.Color)
	return err
}

func (r *tagRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patient_tag WHERE id = $1`, id)
	return err
}

func (r *tagRepoPG) List(ctx context.Context) ([]*Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color, created_at FROM patient_tag ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

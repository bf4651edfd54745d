package treatment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Plan Repository ===========

type planRepoPG struct{ pool *pgxpool.Pool }

func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository { return &planRepoPG{pool: pool} }

const planCols = `id, patient_id, medication_id, status, to_char(start_date, 'YYYY-MM-DD'),
	total_weeks, notes, created_at, updated_at`

func (r *planRepoPG) scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.PatientID, &p.MedicationID, &p.Status, &p.StartDate,
		&p.TotalWeeks, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *planRepoPG) Create(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	if p.Status == "" {
		p.Status = "active"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO treatment_plan (id, patient_id, medication_id, status, start_date, total_weeks, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.PatientID, p.MedicationID, p.Status, p.StartDate, p.TotalWeeks, p.Notes)
	return err
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return r.scanPlan(r.pool.QueryRow(ctx, `SELECT `+planCols+` FROM treatment_plan WHERE id = $1`, id))
}

func (r *planRepoPG) Update(ctx context.Context, p *Plan) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE treatment_plan SET status=$2, start_date=$3, total_weeks=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Status, p.StartDate, p.TotalWeeks, p.Notes)
	return err
}

func (r *planRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM treatment_plan WHERE id = $1`, id)
	return err
}

func (r *planRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+planCols+` FROM treatment_plan
		WHERE patient_id = $1 ORDER BY start_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*Plan
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// =========== Step Repository ===========

type stepRepoPG struct{ pool *pgxpool.Pool }

func NewStepRepoPG(pool *pgxpool.Pool) StepRepository { return &stepRepoPG{pool: pool} }

const stepCols = `id, plan_id, patient_id, to_char(date, 'YYYY-MM-DD'), dosage_mg, status,
	details, progress, current_week, total_weeks, is_skipped, order_index, created_at, updated_at`

func (r *stepRepoPG) scanStep(row pgx.Row) (*Step, error) {
	var st Step
	err := row.Scan(&st.ID, &st.PlanID, &st.PatientID, &st.Date, &st.DosageMG, &st.Status,
		&st.Details, &st.Progress, &st.CurrentWeek, &st.TotalWeeks, &st.IsSkipped,
		&st.OrderIndex, &st.CreatedAt, &st.UpdatedAt)
	return &st, err
}

func (r *stepRepoPG) Create(ctx context.Context, st *Step) error {
	st.ID = uuid.New()
	if st.Status == "" {
		st.Status = "scheduled"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO treatment_step (id, plan_id, patient_id, date, dosage_mg, status,
			details, progress, current_week, total_weeks, is_skipped, order_index)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		st.ID, st.PlanID, st.PatientID, st.Date, st.DosageMG, st.Status,
		st.Details, st.Progress, st.CurrentWeek, st.TotalWeeks, st.IsSkipped, st.OrderIndex)
	return err
}

func (r *stepRepoPG) CreateBatch(ctx context.Context, steps []*Step) error {
	batch := &pgx.Batch{}
	for _, st := range steps {
		st.ID = uuid.New()
		if st.Status == "" {
			st.Status = "scheduled"
		}
		batch.Queue(`
			INSERT INTO treatment_step (id, plan_id, patient_id, date, dosage_mg, status,
				details, progress, current_week, total_weeks, is_skipped, order_index)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			st.ID, st.PlanID, st.PatientID, st.Date, st.DosageMG, st.Status,
			st.Details, st.Progress, st.CurrentWeek, st.TotalWeeks, st.IsSkipped, st.OrderIndex)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range steps {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *stepRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Step, error) {
	return r.scanStep(r.pool.QueryRow(ctx, `SELECT `+stepCols+` FROM treatment_step WHERE id = $1`, id))
}

func (r *stepRepoPG) Update(ctx context.Context, st *Step) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE treatment_step SET date=$2, dosage_mg=$3, status=$4, details=$5,
			progress=$6, current_week=$7, total_weeks=$8, is_skipped=$9,
			order_index=$10, updated_at=NOW()
		WHERE id = $1`,
		st.ID, st.Date, st.DosageMG, st.Status, st.Details, st.Progress,
		st.CurrentWeek, st.TotalWeeks, st.IsSkipped, st.OrderIndex)
	return err
}

func (r *stepRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM treatment_step WHERE id = $1`, id)
	return err
}

func (r *stepRepoPG) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*Step, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+stepCols+` FROM treatment_step
		WHERE plan_id = $1 ORDER BY order_index`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *stepRepoPG) InRange(ctx context.Context, patientID uuid.UUID, from, to string) ([]*Step, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+stepCols+` FROM treatment_step
		WHERE patient_id = $1 AND date >= $2::date AND date <= $3::date
		ORDER BY date, order_index`, patientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *stepRepoPG) collect(rows pgx.Rows) ([]*Step, error) {
	var steps []*Step
	for rows.Next() {
		st, err := r.scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// =========== Injection Repository ===========

type injectionRepoPG struct{ pool *pgxpool.Pool }

func NewInjectionRepoPG(pool *pgxpool.Pool) InjectionRepository { return &injectionRepoPG{pool: pool} }

const injectionCols = `id, patient_id, plan_id, applied_at, dosage_mg, status, lot_number, notes, created_at`

func (r *injectionRepoPG) scanInjection(row pgx.Row) (*Injection, error) {
	var inj Injection
	err := row.Scan(&inj.ID, &inj.PatientID, &inj.PlanID, &inj.AppliedAt, &inj.DosageMG,
		&inj.Status, &inj.LotNumber, &inj.Notes, &inj.CreatedAt)
	return &inj, err
}

func (r *injectionRepoPG) Create(ctx context.Context, inj *Injection) error {
	inj.ID = uuid.New()
	if inj.Status == "" {
		inj.Status = "applied"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO injection (id, patient_id, plan_id, applied_at, dosage_mg, status, lot_number, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		inj.ID, inj.PatientID, inj.PlanID, inj.AppliedAt, inj.DosageMG, inj.Status, inj.LotNumber, inj.Notes)
	return err
}

func (r *injectionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Injection, error) {
	return r.scanInjection(r.pool.QueryRow(ctx, `SELECT `+injectionCols+` FROM injection WHERE id = $1`, id))
}

func (r *injectionRepoPG) Update(ctx context.Context, inj *Injection) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE injection SET applied_at=$2, dosage_mg=$3, status=$4, lot_number=$5, notes=$6
		WHERE id = $1`,
		inj.ID, inj.AppliedAt, inj.DosageMG, inj.Status, inj.LotNumber, inj.Notes)
	return err
}

func (r *injectionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM injection WHERE id = $1`, id)
	return err
}

func (r *injectionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Injection, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM injection WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+injectionCols+` FROM injection
		WHERE patient_id = $1 ORDER BY applied_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *injectionRepoPG) InRange(ctx context.Context, patientID uuid.UUID, from, to string) ([]*Injection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+injectionCols+` FROM injection
		WHERE patient_id = $1 AND applied_at::date >= $2::date AND applied_at::date <= $3::date
		ORDER BY applied_at`, patientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *injectionRepoPG) collect(rows pgx.Rows) ([]*Injection, error) {
	var items []*Injection
	for rows.Next() {
		inj, err := r.scanInjection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inj)
	}
	return items, rows.Err()
}

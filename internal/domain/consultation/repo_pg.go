package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type consultationRepoPG struct{ pool *pgxpool.Pool }

func NewConsultationRepoPG(pool *pgxpool.Pool) ConsultationRepository {
	return &consultationRepoPG{pool: pool}
}

func (r *consultationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const consultationCols = `id, patient_id, doctor_id, disease_id, description, symptoms,
	status, images, voice_memo, created_at, updated_at`

func (r *consultationRepoPG) scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.DiseaseID, &c.Description,
		&c.Symptoms, &c.Status, &c.Images, &c.VoiceMemo, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if c.Images == nil {
		c.Images = []string{}
	}
	return &c, err
}

func (r *consultationRepoPG) Create(ctx context.Context, c *Consultation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consultation (id, patient_id, doctor_id, disease_id, description,
			symptoms, status, images, voice_memo)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.PatientID, c.DoctorID, c.DiseaseID, c.Description,
		c.Symptoms, c.Status, c.Images, c.VoiceMemo)
	return err
}

func (r *consultationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return r.scanConsultation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consultationCols+` FROM consultation WHERE id = $1`, id))
}

// Update never touches patient_id or created_at.
func (r *consultationRepoPG) Update(ctx context.Context, c *Consultation) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE consultation SET doctor_id=$2, disease_id=$3, description=$4,
			symptoms=$5, status=$6, images=$7, voice_memo=$8, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.DoctorID, c.DiseaseID, c.Description,
		c.Symptoms, c.Status, c.Images, c.VoiceMemo)
	return err
}

func (r *consultationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM consultation_comment WHERE consultation_id = $1`, id); err != nil {
			return err
		}
		_, err := r.conn(ctx).Exec(ctx, `DELETE FROM consultation WHERE id = $1`, id)
		return err
	})
}

func (r *consultationRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consultation WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+consultationCols+` FROM consultation
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *consultationRepoPG) ListWorklist(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	const where = `doctor_id = $1 OR (status = 'pending' AND doctor_id IS NULL)`
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consultation WHERE `+where, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+consultationCols+` FROM consultation
		WHERE `+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *consultationRepoPG) ListAll(ctx context.Context, status string, limit, offset int) ([]*Consultation, int, error) {
	if status != "" {
		var total int
		if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consultation WHERE status = $1`, status).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err := r.conn(ctx).Query(ctx, `
			SELECT `+consultationCols+` FROM consultation
			WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			status, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		defer rows.Close()
		return r.collect(rows, total)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consultation`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+consultationCols+` FROM consultation
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *consultationRepoPG) collect(rows pgx.Rows, total int) ([]*Consultation, int, error) {
	var items []*Consultation
	for rows.Next() {
		c, err := r.scanConsultation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}

func (r *consultationRepoPG) AddComment(ctx context.Context, cm *Comment) error {
	if cm.ID == uuid.Nil {
		cm.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consultation_comment (id, consultation_id, author_id, author_role, content)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		cm.ID, cm.ConsultationID, cm.AuthorID, cm.AuthorRole, cm.Content).Scan(&cm.CreatedAt)
}

func (r *consultationRepoPG) ListComments(ctx context.Context, consultationID uuid.UUID) ([]*Comment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, consultation_id, author_id, author_role, content, created_at
		FROM consultation_comment WHERE consultation_id = $1 ORDER BY created_at`,
		consultationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Comment
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.ConsultationID, &cm.AuthorID, &cm.AuthorRole, &cm.Content, &cm.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &cm)
	}
	return items, nil
}

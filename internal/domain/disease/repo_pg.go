package disease

import (
	"context"
	"errors"
	"fmt"

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

type diseaseRepoPG struct{ pool *pgxpool.Pool }

func NewDiseaseRepoPG(pool *pgxpool.Pool) DiseaseRepository {
	return &diseaseRepoPG{pool: pool}
}

func (r *diseaseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const diseaseCols = `id, name_en, name_ar, created_at, updated_at`

func (r *diseaseRepoPG) scanDisease(row pgx.Row) (*Disease, error) {
	var d Disease
	err := row.Scan(&d.ID, &d.NameEN, &d.NameAR, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *diseaseRepoPG) Create(ctx context.Context, d *Disease) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO disease (id, name_en, name_ar) VALUES ($1,$2,$3)`,
		d.ID, d.NameEN, d.NameAR)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: disease name already exists", ErrConflict)
	}
	return err
}

func (r *diseaseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Disease, error) {
	return r.scanDisease(r.conn(ctx).QueryRow(ctx, `SELECT `+diseaseCols+` FROM disease WHERE id = $1`, id))
}

func (r *diseaseRepoPG) Update(ctx context.Context, d *Disease) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE disease SET name_en=$2, name_ar=$3, updated_at=NOW() WHERE id = $1`,
		d.ID, d.NameEN, d.NameAR)
	return err
}

func (r *diseaseRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM disease WHERE id = $1`, id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("%w: disease is referenced by consultations", ErrConflict)
	}
	return err
}

func (r *diseaseRepoPG) List(ctx context.Context, limit, offset int) ([]*Disease, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM disease`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+diseaseCols+` FROM disease ORDER BY name_en LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Disease
	for rows.Next() {
		d, err := r.scanDisease(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

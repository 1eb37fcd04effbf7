package reporting

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
)

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository {
	return &reportRepoPG{pool: pool}
}

func (r *reportRepoPG) ConsultationCountsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM consultation GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, nil
}

func (r *reportRepoPG) UserCountsByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM app_user GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, nil
}

func (r *reportRepoPG) CountPendingDoctorApprovals(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM app_user WHERE role = $1 AND NOT is_approved`,
		auth.RoleDoctor).Scan(&n)
	return n, err
}

func (r *reportRepoPG) TopDiseases(ctx context.Context, limit int) ([]DiseaseCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.name_en, d.name_ar, COUNT(c.id) AS consultations
		FROM disease d
		JOIN consultation c ON c.disease_id = d.id
		GROUP BY d.id, d.name_en, d.name_ar
		ORDER BY consultations DESC, d.name_en
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DiseaseCount
	for rows.Next() {
		var dc DiseaseCount
		if err := rows.Scan(&dc.DiseaseID, &dc.NameEN, &dc.NameAR, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, nil
}

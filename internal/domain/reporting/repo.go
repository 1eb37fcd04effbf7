package reporting

import "context"

type ReportRepository interface {
	ConsultationCountsByStatus(ctx context.Context) (map[string]int, error)
	UserCountsByRole(ctx context.Context) (map[string]int, error)
	CountPendingDoctorApprovals(ctx context.Context) (int, error)
	TopDiseases(ctx context.Context, limit int) ([]DiseaseCount, error)
}

package reporting

import (
	"context"
	"errors"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
)

var ErrForbidden = errors.New("forbidden")

const defaultTopDiseases = 5

type Service struct {
	reports ReportRepository
}

func NewService(reports ReportRepository) *Service {
	return &Service{reports: reports}
}

// Overview assembles the dashboard numbers. Admin only.
func (s *Service) Overview(ctx context.Context, actor auth.Actor) (*Overview, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	byStatus, err := s.reports.ConsultationCountsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := s.reports.UserCountsByRole(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.reports.CountPendingDoctorApprovals(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.reports.TopDiseases(ctx, defaultTopDiseases)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []DiseaseCount{}
	}
	return &Overview{
		ConsultationsByStatus:  byStatus,
		UsersByRole:            byRole,
		PendingDoctorApprovals: pending,
		TopDiseases:            top,
	}, nil
}

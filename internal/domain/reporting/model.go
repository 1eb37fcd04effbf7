package reporting

import "github.com/google/uuid"

// Overview is the admin dashboard snapshot.
type Overview struct {
	ConsultationsByStatus  map[string]int `json:"consultations_by_status"`
	UsersByRole            map[string]int `json:"users_by_role"`
	PendingDoctorApprovals int            `json:"pending_doctor_approvals"`
	TopDiseases            []DiseaseCount `json:"top_diseases"`
}

// DiseaseCount is one row of the top-diseases ranking.
type DiseaseCount struct {
	DiseaseID uuid.UUID `json:"disease_id"`
	NameEN    string    `json:"name_en"`
	NameAR    string    `json:"name_ar"`
	Count     int       `json:"count"`
}

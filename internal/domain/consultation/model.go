package consultation

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// MaxImages caps the attachments on a single consultation.
const MaxImages = 5

var statusRank = map[string]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// ValidStatus reports whether s is a known consultation status.
func ValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// Consultation maps to the consultation table. PatientID and CreatedAt never
// change after creation.
type Consultation struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID    *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	DiseaseID   uuid.UUID  `db:"disease_id" json:"disease_id"`
	Description string     `db:"description" json:"description"`
	Symptoms    string     `db:"symptoms" json:"symptoms,omitempty"`
	Status      string     `db:"status" json:"status"`
	Images      []string   `db:"images" json:"images"`
	VoiceMemo   *string    `db:"voice_memo" json:"voice_memo,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Assigned reports whether a doctor has taken the consultation.
func (c *Consultation) Assigned() bool {
	return c.DoctorID != nil
}

// Comment is one append-only message on a consultation. AuthorRole is the
// role the author held when the comment was written; later role or account
// changes do not rewrite history.
type Comment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	AuthorID       uuid.UUID `db:"author_id" json:"author_id"`
	AuthorRole     string    `db:"author_role" json:"author_role"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

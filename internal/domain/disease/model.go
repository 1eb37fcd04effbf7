package disease

import (
	"time"

	"github.com/google/uuid"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/i18n"
)

// Disease is one reference-list entry, carrying both display languages.
type Disease struct {
	ID        uuid.UUID `db:"id" json:"id"`
	NameEN    string    `db:"name_en" json:"name_en"`
	NameAR    string    `db:"name_ar" json:"name_ar"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LocalizedName picks the display name for the language.
func (d *Disease) LocalizedName(l i18n.Lang) string {
	return i18n.Localized(d.NameEN, d.NameAR, l)
}

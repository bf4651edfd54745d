package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	FirstName   string      `db:"first_name" json:"first_name"`
	LastName    string      `db:"last_name" json:"last_name"`
	Email       *string     `db:"email" json:"email,omitempty"`
	Phone       *string     `db:"phone" json:"phone,omitempty"`
	DateOfBirth *time.Time  `db:"date_of_birth" json:"date_of_birth,omitempty"`
	AvatarURL   *string     `db:"avatar_url" json:"avatar_url,omitempty"`
	HeightCM    *float64    `db:"height_cm" json:"height_cm,omitempty"`
	WeightKG    *float64    `db:"weight_kg" json:"weight_kg,omitempty"`
	Status      string      `db:"status" json:"status"`
	TagIDs      []uuid.UUID `db:"-" json:"tag_ids"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name used across the UI.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Initials returns up to two uppercase initials for avatar fallbacks.
func (p *Patient) Initials() string {
	var b strings.Builder
	for _, part := range []string{p.FirstName, p.LastName} {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r := []rune(part)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// BMI returns the body mass index from the recorded height and weight, or
// false when either measurement is missing or non-positive.
func (p *Patient) BMI() (float64, bool) {
	if p.HeightCM == nil || p.WeightKG == nil {
		return 0, false
	}
	h := *p.HeightCM / 100
	if h <= 0 || *p.WeightKG <= 0 {
		return 0, false
	}
	return *p.WeightKG / (h * h), true
}

// Tag maps to the patient_tag table. Tags drive per-patient color coding in
// the calendar.
type Tag struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// models/casino.go
package models

import "time"

// Casino is a brand record. Admins create them directly; the migration
// materializes the ones implied by legacy bonus brand names.
type Casino struct {
	ID          string   `json:"id" gorm:"primaryKey"`
	Name        string   `json:"name" gorm:"not null;index"`
	Slug        string   `json:"slug" gorm:"index"` // not unique; collisions are tolerated
	LogoURL     string   `json:"logo"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating,omitempty"` // 0–5
	Website     string   `json:"website"`

	PaymentMethods []string `json:"paymentMethods" gorm:"serializer:json"`
	SupportMethods []string `json:"supportMethods" gorm:"serializer:json"`
	Positives      []string `json:"positives" gorm:"serializer:json"`
	Negatives      []string `json:"negatives" gorm:"serializer:json"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Casino) TableName() string { return "casinos" }

// Queryable casino fields.
const (
	CasinoFieldSlug = "slug"
	CasinoFieldName = "name"
)

// CasinoUpdate is a partial write. Nil fields are left untouched.
type CasinoUpdate struct {
	Name           *string
	Slug           *string
	LogoURL        *string
	Description    *string
	Rating         *float64
	Website        *string
	PaymentMethods *[]string
	SupportMethods *[]string
	Positives      *[]string
	Negatives      *[]string
}

func (u CasinoUpdate) Apply(c *Casino) {
	setString(&c.Name, u.Name)
	setString(&c.Slug, u.Slug)
	setString(&c.LogoURL, u.LogoURL)
	setString(&c.Description, u.Description)
	setString(&c.Website, u.Website)
	if u.Rating != nil {
		r := *u.Rating
		c.Rating = &r
	}
	if u.PaymentMethods != nil {
		c.PaymentMethods = append([]string(nil), (*u.PaymentMethods)...)
	}
	if u.SupportMethods != nil {
		c.SupportMethods = append([]string(nil), (*u.SupportMethods)...)
	}
	if u.Positives != nil {
		c.Positives = append([]string(nil), (*u.Positives)...)
	}
	if u.Negatives != nil {
		c.Negatives = append([]string(nil), (*u.Negatives)...)
	}
}

// Clone returns a deep copy so stores never share slices with callers.
func (c Casino) Clone() Casino {
	out := c
	if c.Rating != nil {
		r := *c.Rating
		out.Rating = &r
	}
	out.PaymentMethods = append([]string(nil), c.PaymentMethods...)
	out.SupportMethods = append([]string(nil), c.SupportMethods...)
	out.Positives = append([]string(nil), c.Positives...)
	out.Negatives = append([]string(nil), c.Negatives...)
	return out
}

// models/review.go
package models

import "time"

// Review is a rating and text written against a casino.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CasinoID  string    `json:"casinoId" gorm:"index;not null"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Rating    float64   `json:"rating" gorm:"check:rating >= 0 and rating <= 5"`
	Seed      string    `json:"seed"` // avatar seed
	CreatedAt time.Time `json:"createdAt"`
}

func (Review) TableName() string { return "reviews" }

// ReviewUpdate is a partial write. Nil fields are left untouched.
type ReviewUpdate struct {
	Name   *string
	Text   *string
	Rating *float64
	Seed   *string
}

func (u ReviewUpdate) Apply(r *Review) {
	setString(&r.Name, u.Name)
	setString(&r.Text, u.Text)
	setString(&r.Seed, u.Seed)
	if u.Rating != nil {
		r.Rating = *u.Rating
	}
}

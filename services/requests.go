// services/requests.go
package services

import (
	"errors"
	"strings"

	"bonus-listing-system/models"
	"bonus-listing-system/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goccy/go-json"
	"github.com/gosimple/slug"
)

// TagList accepts either a JSON array or a comma separated string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("tags must be a string or an array of strings")
	}
	*t = utils.ParseTags(s)
	return nil
}

var ratingRule = []validation.Rule{validation.Min(0.0), validation.Max(5.0)}

// ===== Bonuses =====

type BonusRequest struct {
	ID          string   `json:"id"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Link        *string  `json:"link"`
	Image       *string  `json:"image"`
	Code        *string  `json:"code"`
	Rating      *float64 `json:"rating"`
	Exclusive   *bool    `json:"exclusive"`
	Terms       *string  `json:"terms"`
	Wagering    *string  `json:"wagering"`
	MinDeposit  *string  `json:"minDeposit"`
	MaxBonus    *string  `json:"maxBonus"`
	Tags        *TagList `json:"tags"`
	CasinoID    *string  `json:"casinoId"`
	Casino      *string  `json:"casino"` // legacy brand name
	Order       *int     `json:"order"`
}

func (r BonusRequest) ValidateCreate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Link, validation.Required),
		validation.Field(&r.Rating, ratingRule...),
		validation.Field(&r.Order, validation.Min(0)),
	))
}

func (r BonusRequest) ValidateUpdate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Title, validation.NilOrNotEmpty),
		validation.Field(&r.Link, validation.NilOrNotEmpty),
		validation.Field(&r.Rating, ratingRule...),
		validation.Field(&r.Order, validation.Min(0)),
	))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NewBonus maps a create request onto a stored bonus. The caller assigns the order key.
func (r BonusRequest) NewBonus() models.Bonus {
	b := models.Bonus{
		Title:        strings.TrimSpace(deref(r.Title)),
		Description:  deref(r.Description),
		TrackingLink: strings.TrimSpace(deref(r.Link)),
		ImageURL:     strings.TrimSpace(deref(r.Image)),
		Code:         deref(r.Code),
		Exclusive:    deref(r.Exclusive),
		TermsText:    deref(r.Terms),
		Wagering:     deref(r.Wagering),
		MinDeposit:   deref(r.MinDeposit),
		MaxBonus:     deref(r.MaxBonus),
	}
	if b.TermsText == "" {
		b.TermsText = DefaultTerms
	}
	rating := DefaultRating
	if r.Rating != nil {
		rating = *r.Rating
	}
	b.Rating = &rating
	if r.Tags != nil {
		b.Tags = utils.JoinTags(*r.Tags)
	}

	if id := strings.TrimSpace(deref(r.CasinoID)); id != "" {
		b.CasinoID = id
		b.CasinoLink = models.CasinoRef(id)
	} else if r.Casino != nil {
		b.CasinoLink = models.LegacyCasinoName(*r.Casino)
		b.Brand = strings.TrimSpace(*r.Casino)
	}
	return b
}

// Update maps an edit request onto a partial write. A non-empty casinoId
// links by id and reference; an empty one clears both and falls back to the
// legacy casino name when given.
func (r BonusRequest) Update() models.BonusUpdate {
	u := models.BonusUpdate{
		Title:        trimmed(r.Title),
		Description:  r.Description,
		TrackingLink: trimmed(r.Link),
		ImageURL:     trimmed(r.Image),
		Code:         r.Code,
		Rating:       r.Rating,
		Exclusive:    r.Exclusive,
		TermsText:    r.Terms,
		Wagering:     r.Wagering,
		MinDeposit:   r.MinDeposit,
		MaxBonus:     r.MaxBonus,
		OrderKey:     r.Order,
	}
	if r.Tags != nil {
		tags := utils.JoinTags(*r.Tags)
		u.Tags = &tags
	}

	casinoID := strings.TrimSpace(deref(r.CasinoID))
	switch {
	case casinoID != "":
		link := models.CasinoRef(casinoID)
		u.CasinoID = &casinoID
		u.CasinoLink = &link
	case r.CasinoID != nil:
		link := models.LegacyCasinoName(deref(r.Casino))
		u.CasinoID = &casinoID
		u.CasinoLink = &link
		if r.Casino != nil {
			u.Brand = trimmed(r.Casino)
		}
	case r.Casino != nil:
		link := models.LegacyCasinoName(*r.Casino)
		u.CasinoLink = &link
		u.Brand = trimmed(r.Casino)
	}
	return u
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

// ReorderRequest is either a pairwise assignment or {"reorderAll": true}.
// Omitting both orders swaps the two bonuses' current keys.
type ReorderRequest struct {
	BonusID1   string `json:"bonusId1"`
	BonusID2   string `json:"bonusId2"`
	Order1     *int   `json:"order1"`
	Order2     *int   `json:"order2"`
	ReorderAll bool   `json:"reorderAll"`
}

func (r ReorderRequest) Validate() error {
	if r.ReorderAll {
		return nil
	}
	bothOrNeither := validation.By(func(any) error {
		if (r.Order1 == nil) != (r.Order2 == nil) {
			return errors.New("order1 and order2 must be given together")
		}
		return nil
	})
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.BonusID1, validation.Required),
		validation.Field(&r.BonusID2, validation.Required),
		validation.Field(&r.Order1, validation.Min(0), bothOrNeither),
		validation.Field(&r.Order2, validation.Min(0)),
	))
}

// ===== Casinos =====

type CasinoRequest struct {
	ID             string    `json:"id"`
	Name           *string   `json:"name"`
	Slug           *string   `json:"slug"`
	Logo           *string   `json:"logo"`
	Description    *string   `json:"description"`
	Rating         *float64  `json:"rating"`
	Website        *string   `json:"website"`
	PaymentMethods *[]string `json:"paymentMethods"`
	SupportMethods *[]string `json:"supportMethods"`
	Positives      *[]string `json:"positives"`
	Negatives      *[]string `json:"negatives"`
}

var slugRule = validation.By(func(v any) error {
	s, _ := v.(*string)
	if s == nil || *s == "" {
		return nil
	}
	if !slug.IsSlug(*s) {
		return errors.New("must be lowercase letters, digits and single dashes")
	}
	return nil
})

func (r CasinoRequest) ValidateCreate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Slug, slugRule),
		validation.Field(&r.Rating, ratingRule...),
		validation.Field(&r.Website, is.URL),
	))
}

func (r CasinoRequest) ValidateUpdate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Name, validation.NilOrNotEmpty),
		validation.Field(&r.Slug, slugRule),
		validation.Field(&r.Rating, ratingRule...),
		validation.Field(&r.Website, is.URL),
	))
}

// NewCasino derives the slug from the name when none is supplied.
func (r CasinoRequest) NewCasino() models.Casino {
	c := models.Casino{
		Name:        strings.TrimSpace(deref(r.Name)),
		Slug:        strings.TrimSpace(deref(r.Slug)),
		LogoURL:     strings.TrimSpace(deref(r.Logo)),
		Description: deref(r.Description),
		Rating:      r.Rating,
		Website:     strings.TrimSpace(deref(r.Website)),
	}
	if c.Slug == "" {
		c.Slug = utils.DeriveSlug(c.Name)
	}
	c.PaymentMethods = deref(r.PaymentMethods)
	c.SupportMethods = deref(r.SupportMethods)
	c.Positives = deref(r.Positives)
	c.Negatives = deref(r.Negatives)
	return c
}

// Update re-derives the slug when the name changes and no slug is given.
func (r CasinoRequest) Update() models.CasinoUpdate {
	u := models.CasinoUpdate{
		Name:           trimmed(r.Name),
		Slug:           trimmed(r.Slug),
		LogoURL:        trimmed(r.Logo),
		Description:    r.Description,
		Rating:         r.Rating,
		Website:        trimmed(r.Website),
		PaymentMethods: r.PaymentMethods,
		SupportMethods: r.SupportMethods,
		Positives:      r.Positives,
		Negatives:      r.Negatives,
	}
	if u.Name != nil && (u.Slug == nil || *u.Slug == "") {
		derived := utils.DeriveSlug(*u.Name)
		u.Slug = &derived
	}
	return u
}

// ===== Reviews =====

type ReviewRequest struct {
	ID       string   `json:"id"`
	CasinoID string   `json:"casinoId"`
	Name     *string  `json:"name"`
	Text     *string  `json:"text"`
	Rating   *float64 `json:"rating"`
	Seed     *string  `json:"seed"`
}

func (r ReviewRequest) ValidateCreate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.CasinoID, validation.Required),
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Rating, append([]validation.Rule{validation.Required}, ratingRule...)...),
	))
}

func (r ReviewRequest) ValidateUpdate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Name, validation.NilOrNotEmpty),
		validation.Field(&r.Text, validation.NilOrNotEmpty),
		validation.Field(&r.Rating, ratingRule...),
	))
}

// defaultSeed is the reviewer name with whitespace removed.
func defaultSeed(name string) string {
	return strings.Join(strings.Fields(name), "")
}

func (r ReviewRequest) NewReview() models.Review {
	name := strings.TrimSpace(deref(r.Name))
	seed := strings.TrimSpace(deref(r.Seed))
	if seed == "" {
		seed = defaultSeed(name)
	}
	return models.Review{
		CasinoID: strings.TrimSpace(r.CasinoID),
		Name:     name,
		Text:     deref(r.Text),
		Rating:   deref(r.Rating),
		Seed:     seed,
	}
}

func (r ReviewRequest) Update() models.ReviewUpdate {
	return models.ReviewUpdate{
		Name:   trimmed(r.Name),
		Text:   r.Text,
		Rating: r.Rating,
		Seed:   trimmed(r.Seed),
	}
}

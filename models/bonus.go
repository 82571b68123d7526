// models/bonus.go
package models

import (
	"strings"
	"time"
)

// CasinoLinkKind tags which variant a CasinoLink holds.
type CasinoLinkKind string

const (
	CasinoLinkNone       CasinoLinkKind = ""
	CasinoLinkRef        CasinoLinkKind = "ref"
	CasinoLinkLegacyName CasinoLinkKind = "legacy_name"
)

// CasinoLink is the association between a bonus and its casino.
// It is one of: no link, a native reference to a casino document, or the
// free-text brand name carried by records created before casinos existed.
type CasinoLink struct {
	Kind  CasinoLinkKind `json:"kind,omitempty" gorm:"column:kind;size:16"`
	Value string         `json:"value,omitempty" gorm:"column:value"`
}

// NoCasinoLink returns the empty link.
func NoCasinoLink() CasinoLink { return CasinoLink{} }

// CasinoRef links to the casino document with the given id. A blank id yields no link.
func CasinoRef(id string) CasinoLink {
	id = strings.TrimSpace(id)
	if id == "" {
		return CasinoLink{}
	}
	return CasinoLink{Kind: CasinoLinkRef, Value: id}
}

// LegacyCasinoName links by free-text brand name. A blank name yields no link.
func LegacyCasinoName(name string) CasinoLink {
	name = strings.TrimSpace(name)
	if name == "" {
		return CasinoLink{}
	}
	return CasinoLink{Kind: CasinoLinkLegacyName, Value: name}
}

func (l CasinoLink) IsNone() bool { return l.Kind == CasinoLinkNone || l.Value == "" }

// RefID returns the referenced casino id when the link is a native reference.
func (l CasinoLink) RefID() (string, bool) {
	if l.Kind == CasinoLinkRef && l.Value != "" {
		return l.Value, true
	}
	return "", false
}

// LegacyName returns the brand text when the link is a legacy name.
func (l CasinoLink) LegacyName() (string, bool) {
	if l.Kind == CasinoLinkLegacyName && l.Value != "" {
		return l.Value, true
	}
	return "", false
}

// Bonus is one offer as stored in the bonuses collection.
type Bonus struct {
	ID           string   `json:"id" gorm:"primaryKey"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TermsText    string   `json:"terms"`
	Code         string   `json:"code"`
	TrackingLink string   `json:"trackingLink"`
	ImageURL     string   `json:"imageUrl"`
	Tags         string   `json:"tags"` // comma separated
	Rating       *float64 `json:"rating,omitempty"`
	Exclusive    bool     `json:"exclusive"`
	Wagering     string   `json:"wagering"`
	MinDeposit   string   `json:"minDeposit"`
	MaxBonus     string   `json:"maxBonus"`

	// 🔗 Casino association. CasinoID is the explicit scalar id written by the
	// admin panel and the migration; CasinoLink is the historical tri-state field.
	CasinoID   string     `json:"casinoId" gorm:"index"`
	CasinoLink CasinoLink `json:"casinoLink" gorm:"embedded;embeddedPrefix:casino_link_"`
	Brand      string     `json:"brand"` // legacy "casino" column

	// Absent on legacy records; those sort after every keyed record.
	OrderKey *int `json:"order,omitempty" gorm:"column:order_key"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Bonus) TableName() string { return "bonuses" }

// BrandText is the best free-text brand name the record carries: the legacy
// link name first, then the legacy brand column.
func (b Bonus) BrandText() string {
	if name, ok := b.CasinoLink.LegacyName(); ok {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(b.Brand)
}

// HasIDLink reports whether the bonus is linked by id or by native reference.
func (b Bonus) HasIDLink() bool {
	if strings.TrimSpace(b.CasinoID) != "" {
		return true
	}
	_, ok := b.CasinoLink.RefID()
	return ok
}

// Clone returns a deep copy of the bonus.
func (b Bonus) Clone() Bonus {
	out := b
	if b.Rating != nil {
		r := *b.Rating
		out.Rating = &r
	}
	if b.OrderKey != nil {
		k := *b.OrderKey
		out.OrderKey = &k
	}
	return out
}

// BonusUpdate is a partial write. Nil fields are left untouched.
type BonusUpdate struct {
	Title        *string
	Description  *string
	TermsText    *string
	Code         *string
	TrackingLink *string
	ImageURL     *string
	Tags         *string
	Rating       *float64
	Exclusive    *bool
	Wagering     *string
	MinDeposit   *string
	MaxBonus     *string
	CasinoID     *string
	CasinoLink   *CasinoLink
	Brand        *string
	OrderKey     *int
}

// OrderOnly builds an update that touches nothing but the order key.
func OrderOnly(key int) BonusUpdate {
	return BonusUpdate{OrderKey: &key}
}

func (u BonusUpdate) IsEmpty() bool {
	return len(u.Columns()) == 0
}

// Apply copies the set fields onto b.
func (u BonusUpdate) Apply(b *Bonus) {
	setString(&b.Title, u.Title)
	setString(&b.Description, u.Description)
	setString(&b.TermsText, u.TermsText)
	setString(&b.Code, u.Code)
	setString(&b.TrackingLink, u.TrackingLink)
	setString(&b.ImageURL, u.ImageURL)
	setString(&b.Tags, u.Tags)
	setString(&b.Wagering, u.Wagering)
	setString(&b.MinDeposit, u.MinDeposit)
	setString(&b.MaxBonus, u.MaxBonus)
	setString(&b.CasinoID, u.CasinoID)
	setString(&b.Brand, u.Brand)
	if u.Rating != nil {
		r := *u.Rating
		b.Rating = &r
	}
	if u.Exclusive != nil {
		b.Exclusive = *u.Exclusive
	}
	if u.CasinoLink != nil {
		b.CasinoLink = *u.CasinoLink
	}
	if u.OrderKey != nil {
		k := *u.OrderKey
		b.OrderKey = &k
	}
}

// Columns maps the set fields to their column names.
func (u BonusUpdate) Columns() map[string]any {
	cols := map[string]any{}
	putString(cols, "title", u.Title)
	putString(cols, "description", u.Description)
	putString(cols, "terms_text", u.TermsText)
	putString(cols, "code", u.Code)
	putString(cols, "tracking_link", u.TrackingLink)
	putString(cols, "image_url", u.ImageURL)
	putString(cols, "tags", u.Tags)
	putString(cols, "wagering", u.Wagering)
	putString(cols, "min_deposit", u.MinDeposit)
	putString(cols, "max_bonus", u.MaxBonus)
	putString(cols, "casino_id", u.CasinoID)
	putString(cols, "brand", u.Brand)
	if u.Rating != nil {
		cols["rating"] = *u.Rating
	}
	if u.Exclusive != nil {
		cols["exclusive"] = *u.Exclusive
	}
	if u.CasinoLink != nil {
		cols["casino_link_kind"] = string(u.CasinoLink.Kind)
		cols["casino_link_value"] = u.CasinoLink.Value
	}
	if u.OrderKey != nil {
		cols["order_key"] = *u.OrderKey
	}
	return cols
}

// ResolvedBonus is the render-ready form produced by the aggregator.
type ResolvedBonus struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Link        string   `json:"link"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	Rating      float64  `json:"rating"`
	Exclusive   bool     `json:"exclusive"`
	Terms       string   `json:"terms"`
	Wagering    string   `json:"wagering"`
	MinDeposit  string   `json:"minDeposit"`
	MaxBonus    string   `json:"maxBonus"`
	BrandName   string   `json:"brandName"`
	CasinoID    string   `json:"casinoId"`
	Order       *int     `json:"order,omitempty"`
}

// HasTag reports whether the tag set contains tag, ignoring case.
func (r ResolvedBonus) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func putString(cols map[string]any, key string, v *string) {
	if v != nil {
		cols[key] = *v
	}
}

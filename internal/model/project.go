package model

import "time"

// Project is a stored charging project: a name plus the inputs that drive
// its valuation. Valuations themselves are never stored; they are recomputed
// on demand so two identical requests always agree.
type Project struct {
	ID        string
	Name      string
	Notes     string
	Inputs    ProjectInputs
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is an uploaded contractor cost document attached to a project.
type Document struct {
	ID         string
	ProjectID  string
	Filename   string
	UploadedAt time.Time
	Items      []CostLineItem
}

// CostLineItem is one extracted expense line from a contractor document.
// Category distinguishes capital items (compared against modeled CapEx)
// from recurring or uncategorized ones.
type CostLineItem struct {
	Label    string
	Category CostCategory
	Quantity float64
	UnitCost float64
	Total    float64
}

type CostCategory string

const (
	CategoryCapital   CostCategory = "capital"
	CategoryOperating CostCategory = "operating"
	CategoryOther     CostCategory = "other"
)

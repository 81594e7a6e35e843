package products

import "time"

// Product is reference data: identity is immutable once a document line
// references it, so deletes degrade to a soft-delete of the Active flag.
type Product struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	UnitID    int64     `json:"unit_id"`
	BasePrice float64   `json:"base_price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListFilters struct {
	Search string
	Active *bool
	Limit  int
	Offset int
}

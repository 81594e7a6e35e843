package parties

import "time"

// PartyKind distinguishes clients from importers in queries that accept
// either side of a commercial relationship.
type PartyKind string

const (
	PartyClient   PartyKind = "CLIENT"
	PartyImporter PartyKind = "IMPORTER"
)

func (k PartyKind) Valid() bool {
	return k == PartyClient || k == PartyImporter
}

// Client is a buying party. A client may be associated with an importer,
// which the analytics rollups traverse when gathering an importer's
// documents.
type Client struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TaxID      *string   `json:"tax_id,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Address    *string   `json:"address,omitempty"`
	ImporterID *int64    `json:"importer_id,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Importer is a cross-border counterparty buying at CIF-adjusted prices.
type Importer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   *string   `json:"country,omitempty"`
	TaxID     *string   `json:"tax_id,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

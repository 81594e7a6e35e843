package analytics

// CaseSensitivity controls how search queries match names. It is a
// capability handed to the service by the caller, not probed from the
// environment, so the same service works against collations that fold
// case and ones that do not.
type CaseSensitivity int

const (
	CaseInsensitive CaseSensitivity = iota
	CaseSensitive
)

// Top-N truncation applied to product rollups. Detail views show the
// larger window, universal search expansion the smaller one.
const (
	TopNSearch = 10
	TopNDetail = 20
)

// ProductRollup is one row of a top-products aggregation: a product with
// its quantity and amount summed across every matching line item.
type ProductRollup struct {
	ProductID     int64   `json:"product_id"`
	ProductCode   string  `json:"product_code"`
	ProductName   string  `json:"product_name"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalAmount   float64 `json:"total_amount"`
}

// Ref is a lightweight identity row used by the universal search index.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// SearchResult groups the matches of a universal search query, with the
// matched parties expanded into their top-product rollups.
type SearchResult struct {
	Clients   []PartyHit `json:"clients"`
	Importers []PartyHit `json:"importers"`
	Products  []Ref      `json:"products"`
}

// PartyHit is a client or importer that matched a search query, expanded
// with the party's top products.
type PartyHit struct {
	Ref
	TopProducts []ProductRollup `json:"top_products"`
}

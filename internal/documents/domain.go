package documents

import "time"

// Kind tags the four document families sharing one table and one engine.
type Kind string

const (
	KindGeneralOffer  Kind = "GENERAL_OFFER"
	KindClientOffer   Kind = "CLIENT_OFFER"
	KindImporterOffer Kind = "IMPORTER_OFFER"
	KindInvoice       Kind = "INVOICE"
)

// IsOffer reports whether the kind belongs to the offer side of the house.
func (k Kind) IsOffer() bool {
	return k == KindGeneralOffer || k == KindClientOffer || k == KindImporterOffer
}

// Valid reports whether k is one of the known document kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindGeneralOffer, KindClientOffer, KindImporterOffer, KindInvoice:
		return true
	}
	return false
}

type Status string

const (
	// Offer statuses.
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusExpired   Status = "EXPIRED"
	StatusConverted Status = "CONVERTED"

	// Invoice statuses.
	StatusIssued    Status = "ISSUED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Convertible reports whether a source offer in status s may still be
// converted. REJECTED, EXPIRED and CONVERTED are terminal for conversion.
func (s Status) Convertible() bool {
	return s == StatusPending || s == StatusAccepted
}

// Terminal reports whether no further status transitions are allowed.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusExpired, StatusConverted, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Document is any of the four commercial documents. Total is always derived
// from the current lines plus the document-level taxes/discount fields and is
// never allowed to go stale relative to them.
type Document struct {
	ID         int64      `json:"id"`
	Kind       Kind       `json:"kind"`
	Number     string     `json:"number"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Status     Status     `json:"status"`
	ClientID   *int64     `json:"client_id,omitempty"`
	ImporterID *int64     `json:"importer_id,omitempty"`
	Subtotal   float64    `json:"subtotal"`
	Taxes      float64    `json:"taxes"`
	Discount   float64    `json:"discount"`
	Total      float64    `json:"total"`
	Notes      *string    `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Lines      []Line     `json:"lines,omitempty"`
}

// Line is one product entry within a document. Subtotal always equals the
// line's effective quantity times its unit price.
type Line struct {
	ID          int64    `json:"id"`
	DocumentID  int64    `json:"document_id"`
	ProductID   int64    `json:"product_id"`
	Quantity    float64  `json:"quantity"`
	GrossWeight *float64 `json:"gross_weight,omitempty"`
	NetWeight   *float64 `json:"net_weight,omitempty"`
	Packages    *int     `json:"packages,omitempty"`
	UnitPrice   float64  `json:"unit_price"`
	CIFPrice    *float64 `json:"cif_price,omitempty"`
	Subtotal    float64  `json:"subtotal"`
	LineOrder   int      `json:"line_order"`
}

// EffectiveQuantity is the basis for the line's subtotal: net weight when
// present and non-zero, otherwise the plain quantity.
func EffectiveQuantity(l Line) float64 {
	if l.NetWeight != nil && *l.NetWeight != 0 {
		return *l.NetWeight
	}
	return l.Quantity
}

// ConversionPrice selects the unit price a line carries into a converted
// document. ImporterOffer lines convert at their adjusted CIF price; every
// other family carries the negotiated unit price.
func ConversionPrice(source Kind, l Line) float64 {
	if source == KindImporterOffer && l.CIFPrice != nil && *l.CIFPrice > 0 {
		return *l.CIFPrice
	}
	return l.UnitPrice
}

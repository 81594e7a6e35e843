package documents

import "time"

type LineRequest struct {
	ProductID   int64    `json:"product_id" validate:"required,gt=0"`
	Quantity    float64  `json:"quantity" validate:"required,gt=0"`
	GrossWeight *float64 `json:"gross_weight,omitempty" validate:"omitempty,gt=0"`
	NetWeight   *float64 `json:"net_weight,omitempty" validate:"omitempty,gt=0"`
	Packages    *int     `json:"packages,omitempty" validate:"omitempty,gt=0"`
	UnitPrice   float64  `json:"unit_price" validate:"required,gt=0"`
	CIFPrice    *float64 `json:"cif_price,omitempty" validate:"omitempty,gt=0"`
	LineOrder   int      `json:"line_order" validate:"gte=0"`
}

type CreateDocumentRequest struct {
	Kind       Kind          `json:"kind" validate:"required"`
	Number     *string       `json:"number,omitempty"`
	IssueDate  time.Time     `json:"issue_date" validate:"required"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
	ClientID   *int64        `json:"client_id,omitempty"`
	ImporterID *int64        `json:"importer_id,omitempty"`
	Taxes      float64       `json:"taxes" validate:"gte=0"`
	Discount   float64       `json:"discount" validate:"gte=0"`
	Notes      *string       `json:"notes,omitempty"`
	Lines      []LineRequest `json:"lines" validate:"dive"`
}

type UpdateDocumentRequest struct {
	Number    *string    `json:"number,omitempty"`
	IssueDate *time.Time `json:"issue_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	Taxes     *float64   `json:"taxes,omitempty" validate:"omitempty,gte=0"`
	Discount  *float64   `json:"discount,omitempty" validate:"omitempty,gte=0"`
}

type AdjustPricesRequest struct {
	TargetTotal float64 `json:"target_total" validate:"gte=0"`
}

type ConvertToInvoiceRequest struct {
	Number  string     `json:"number" validate:"required,max=30"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

type ConvertToImporterOfferRequest struct {
	ImporterID *int64 `json:"importer_id,omitempty" validate:"omitempty,gt=0"`
}

type ListDocumentsRequest struct {
	Kind       Kind       `json:"kind" validate:"required"`
	Status     *Status    `json:"status,omitempty"`
	ClientID   *int64     `json:"client_id,omitempty"`
	ImporterID *int64     `json:"importer_id,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Limit      int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int        `json:"offset" validate:"gte=0"`
}

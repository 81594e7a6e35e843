package units

// Unit is a unit of measure referenced by products (kg, box, sack, ...).
type Unit struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

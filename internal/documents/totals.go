package documents

import "math"

// round2 rounds a monetary amount to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidateLine enforces the positivity preconditions on a line before it is
// created or updated. Non-positive values are rejected, never clamped.
func ValidateLine(l Line) error {
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.NetWeight != nil && *l.NetWeight < 0 {
		return ErrInvalidQuantity
	}
	if l.GrossWeight != nil && *l.GrossWeight < 0 {
		return ErrInvalidQuantity
	}
	if l.UnitPrice <= 0 {
		return ErrInvalidPrice
	}
	if l.CIFPrice != nil && *l.CIFPrice <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// LineSubtotal computes effective quantity times unit price, rounded to
// cents. Callers must have validated the line first.
func LineSubtotal(l Line) float64 {
	return round2(EffectiveQuantity(l) * l.UnitPrice)
}

// ComputeTotals derives the document-level monetary fields from the current
// lines. Offers carry no taxes or discount, so their total equals the
// subtotal. A document with no lines has subtotal = total = 0.
func ComputeTotals(kind Kind, lines []Line, taxes, discount float64) (subtotal, total float64) {
	for _, l := range lines {
		subtotal += l.Subtotal
	}
	subtotal = round2(subtotal)
	if kind != KindInvoice {
		return subtotal, subtotal
	}
	return subtotal, round2(subtotal + taxes - discount)
}

package documents

// The price adjustment solver rescales every line's unit price by one uniform
// factor so the recomputed subtotal equals an externally negotiated target.
// Proportional scaling keeps the relative pricing structure the operator set
// by hand: premium lines stay relatively more expensive.

// TargetSubtotal translates a requested grand total into the subtotal the
// lines must sum to. Invoices back out the document-level taxes and discount;
// for offers the total is the subtotal.
func TargetSubtotal(kind Kind, target, taxes, discount float64) float64 {
	if kind != KindInvoice {
		return round2(target)
	}
	return round2(target - taxes + discount)
}

// ScaleToSubtotal returns a copy of lines with unit prices rescaled so the
// summed subtotals equal targetSubtotal exactly. Each line except the last is
// rounded to cents; the residual cents land on the last line so the sum never
// drifts. Fails with ErrInvalidTarget when the target is negative or any
// resulting price would be non-positive, and with ErrEmptyDocument when there
// is nothing to scale.
func ScaleToSubtotal(lines []Line, targetSubtotal float64) ([]Line, error) {
	if targetSubtotal < 0 {
		return nil, ErrInvalidTarget
	}

	var current float64
	for _, l := range lines {
		current += LineSubtotal(l)
	}
	current = round2(current)

	if current == 0 {
		if targetSubtotal == 0 {
			return append([]Line(nil), lines...), nil
		}
		return nil, ErrEmptyDocument
	}

	scaled := append([]Line(nil), lines...)

	factor := targetSubtotal / current
	if factor == 1 {
		// Already at the target; re-applying must not move prices.
		return scaled, nil
	}

	var sum float64
	for i := range scaled {
		if i == len(scaled)-1 {
			break
		}
		price := round2(scaled[i].UnitPrice * factor)
		if price <= 0 {
			return nil, ErrInvalidTarget
		}
		scaled[i].UnitPrice = price
		scaled[i].Subtotal = LineSubtotal(scaled[i])
		sum = round2(sum + scaled[i].Subtotal)
	}

	last := &scaled[len(scaled)-1]
	residual := round2(targetSubtotal - sum)
	if residual <= 0 {
		return nil, ErrInvalidTarget
	}
	qty := EffectiveQuantity(*last)
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	// The last unit price may carry sub-cent precision so the line subtotal,
	// and therefore the document total, is cent-exact.
	last.UnitPrice = residual / qty
	last.Subtotal = residual

	return scaled, nil
}

package documents

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// adjustTolerance bounds the acceptable drift between a requested target
// total and the recomputed total after price adjustment.
const adjustTolerance = 0.005

// Service implements the document engine: numbering, totals maintenance,
// price adjustment and conversion. Every mutation recomputes and persists the
// owning document's totals inside the same transaction, so readers never see
// totals stale relative to the lines.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create persists a new document with its lines. A caller-supplied number
// bypasses allocation but is still checked for uniqueness within its family;
// otherwise client and importer offers draw the next number from the shared
// year-prefixed counter and the remaining kinds allocate family-locally.
func (s *Service) Create(ctx context.Context, req CreateDocumentRequest) (*Document, error) {
	if !req.Kind.Valid() {
		return nil, ErrInvalidKind
	}

	lines := make([]Line, 0, len(req.Lines))
	for i, lr := range req.Lines {
		line := lineFromRequest(lr, i)
		if err := ValidateLine(line); err != nil {
			return nil, err
		}
		line.Subtotal = LineSubtotal(line)
		lines = append(lines, line)
	}

	number, err := s.resolveNumber(ctx, req.Kind, req.Number)
	if err != nil {
		return nil, err
	}

	taxes, discount := req.Taxes, req.Discount
	if req.Kind != KindInvoice {
		// Offers carry no document-level tax or discount fields.
		taxes, discount = 0, 0
	}
	subtotal, total := ComputeTotals(req.Kind, lines, taxes, discount)

	doc := Document{
		Kind:       req.Kind,
		Number:     number,
		IssueDate:  req.IssueDate,
		DueDate:    req.DueDate,
		Status:     initialStatus(req.Kind),
		ClientID:   req.ClientID,
		ImporterID: req.ImporterID,
		Subtotal:   subtotal,
		Taxes:      taxes,
		Discount:   discount,
		Total:      total,
		Notes:      req.Notes,
	}

	var docID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, doc)
		if err != nil {
			return err
		}
		docID = id
		for i := range lines {
			lines[i].DocumentID = docID
			if _, err := repo.InsertLine(ctx, lines[i]); err != nil {
				return fmt.Errorf("insert line: %w", err)
			}
		}
		return repo.InsertEvent(ctx, NewEvent(docID, EventCreated, string(doc.Kind)+" "+doc.Number))
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, docID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	if !req.Kind.Valid() {
		return nil, 0, ErrInvalidKind
	}
	return s.repo.List(ctx, req)
}

// NextNumber exposes the allocator's idempotent read: calling it twice
// without persisting in between returns the same number.
func (s *Service) NextNumber(ctx context.Context) (string, error) {
	return NextOfferNumber(ctx, s.repo, s.now())
}

// Update edits header fields. Renaming requires a uniqueness recheck within
// the family, not a renumber; tax or discount edits on invoices trigger a
// totals recomputation in the same transaction.
func (s *Service) Update(ctx context.Context, id int64, req UpdateDocumentRequest) (*Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, existing.Status)
	}

	updates := make(map[string]interface{})
	if req.Number != nil && *req.Number != existing.Number {
		other, err := s.repo.GetByNumber(ctx, existing.Kind, *req.Number)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, ErrDuplicateNumber
		}
		updates["number"] = *req.Number
	}
	if req.IssueDate != nil {
		updates["issue_date"] = *req.IssueDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	taxes, discount := existing.Taxes, existing.Discount
	recompute := false
	if existing.Kind == KindInvoice {
		if req.Taxes != nil {
			taxes, recompute = *req.Taxes, true
			updates["taxes"] = *req.Taxes
		}
		if req.Discount != nil {
			discount, recompute = *req.Discount, true
			updates["discount"] = *req.Discount
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if len(updates) > 0 {
			if err := repo.UpdateHeader(ctx, id, updates); err != nil {
				return err
			}
		}
		if recompute {
			if err := s.recomputeTotals(ctx, repo, existing.Kind, id, taxes, discount); err != nil {
				return err
			}
		}
		return repo.InsertEvent(ctx, NewEvent(id, EventUpdated, "header"))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// AddLine appends a line and recomputes the document totals atomically.
func (s *Service) AddLine(ctx context.Context, documentID int64, req LineRequest) (*Document, error) {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, doc.Status)
	}

	line := lineFromRequest(req, maxLineOrder(doc.Lines))
	if err := ValidateLine(line); err != nil {
		return nil, err
	}
	line.DocumentID = documentID
	line.Subtotal = LineSubtotal(line)

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.InsertLine(ctx, line); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, doc.Kind, documentID, doc.Taxes, doc.Discount)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, documentID)
}

// UpdateLine replaces a line's fields and recomputes totals atomically.
func (s *Service) UpdateLine(ctx context.Context, documentID, lineID int64, req LineRequest) (*Document, error) {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, doc.Status)
	}

	existing, err := s.repo.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if existing.DocumentID != documentID {
		return nil, ErrNotFound
	}

	line := lineFromRequest(req, existing.LineOrder-1)
	line.ID = lineID
	line.DocumentID = documentID
	if err := ValidateLine(line); err != nil {
		return nil, err
	}
	line.Subtotal = LineSubtotal(line)

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateLine(ctx, line); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, doc.Kind, documentID, doc.Taxes, doc.Discount)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, documentID)
}

// RemoveLine deletes a line and recomputes totals atomically.
func (s *Service) RemoveLine(ctx context.Context, documentID, lineID int64) (*Document, error) {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, doc.Status)
	}

	existing, err := s.repo.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if existing.DocumentID != documentID {
		return nil, ErrNotFound
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, doc.Kind, documentID, doc.Taxes, doc.Discount)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, documentID)
}

// AdjustPrices rescales every line's unit price so the document's grand total
// equals targetTotal, preserving the relative pricing structure. For invoices
// the target is first backed out through taxes and discount.
func (s *Service) AdjustPrices(ctx context.Context, documentID int64, targetTotal float64) (*Document, error) {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, doc.Status)
	}

	target := TargetSubtotal(doc.Kind, targetTotal, doc.Taxes, doc.Discount)
	scaled, err := ScaleToSubtotal(doc.Lines, target)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, line := range scaled {
			if err := repo.UpdateLine(ctx, line); err != nil {
				return err
			}
		}
		if err := s.recomputeTotals(ctx, repo, doc.Kind, documentID, doc.Taxes, doc.Discount); err != nil {
			return err
		}
		_, total := ComputeTotals(doc.Kind, scaled, doc.Taxes, doc.Discount)
		if math.Abs(total-round2(targetTotal)) > adjustTolerance {
			return fmt.Errorf("documents: adjusted total %.2f misses target %.2f", total, targetTotal)
		}
		return repo.InsertEvent(ctx, NewEvent(documentID, EventAdjusted, fmt.Sprintf("target %.2f", targetTotal)))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, documentID)
}

// Accept moves a pending offer to ACCEPTED.
func (s *Service) Accept(ctx context.Context, id int64) (*Document, error) {
	return s.transition(ctx, id, StatusPending, StatusAccepted)
}

// Reject moves a pending offer to the terminal REJECTED state.
func (s *Service) Reject(ctx context.Context, id int64) (*Document, error) {
	return s.transition(ctx, id, StatusPending, StatusRejected)
}

// MarkPaid moves an issued invoice to PAID.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*Document, error) {
	return s.transition(ctx, id, StatusIssued, StatusPaid)
}

// Cancel moves an issued invoice to CANCELLED.
func (s *Service) Cancel(ctx context.Context, id int64) (*Document, error) {
	return s.transition(ctx, id, StatusIssued, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id int64, from, to Status) (*Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != from {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, doc.Status, to)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		return repo.InsertEvent(ctx, NewEvent(id, EventStatus, string(to)))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// ConvertToInvoice copies an offer's lines into a new invoice under the given
// number, selecting the price field appropriate to the source family
// (ImporterOffer lines carry their adjusted CIF price). The copy, the totals
// and the source's status advance to CONVERTED commit as one transaction; any
// failure leaves no partial invoice behind.
func (s *Service) ConvertToInvoice(ctx context.Context, offerID int64, req ConvertToInvoiceRequest) (*Document, error) {
	src, err := s.repo.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !src.Kind.IsOffer() || !src.Status.Convertible() {
		return nil, fmt.Errorf("%w: %s %s", ErrNotConvertible, src.Kind, src.Status)
	}

	if _, err := s.repo.GetByNumber(ctx, KindInvoice, req.Number); err == nil {
		return nil, ErrDuplicateNumber
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	lines := make([]Line, 0, len(src.Lines))
	for i, l := range src.Lines {
		line := Line{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			GrossWeight: l.GrossWeight,
			NetWeight:   l.NetWeight,
			Packages:    l.Packages,
			UnitPrice:   ConversionPrice(src.Kind, l),
			LineOrder:   i + 1,
		}
		line.Subtotal = LineSubtotal(line)
		lines = append(lines, line)
	}
	subtotal, total := ComputeTotals(KindInvoice, lines, 0, 0)

	invoice := Document{
		Kind:       KindInvoice,
		Number:     req.Number,
		IssueDate:  s.now(),
		DueDate:    req.DueDate,
		Status:     StatusIssued,
		ClientID:   src.ClientID,
		ImporterID: src.ImporterID,
		Subtotal:   subtotal,
		Total:      total,
	}

	var invoiceID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, invoice)
		if err != nil {
			return err
		}
		invoiceID = id
		for i := range lines {
			lines[i].DocumentID = invoiceID
			if _, err := repo.InsertLine(ctx, lines[i]); err != nil {
				return fmt.Errorf("copy line: %w", err)
			}
		}
		if err := repo.UpdateStatus(ctx, offerID, StatusConverted); err != nil {
			return err
		}
		if err := repo.InsertEvent(ctx, NewEvent(offerID, EventConverted, "to invoice "+req.Number)); err != nil {
			return err
		}
		return repo.InsertEvent(ctx, NewEvent(invoiceID, EventCreated, "from "+src.Number))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, invoiceID)
}

// ConvertToImporterOffer copies a client offer into a new importer offer,
// allocating the new number from the shared counter and carrying the
// negotiated unit prices over. The source advances to CONVERTED.
func (s *Service) ConvertToImporterOffer(ctx context.Context, offerID int64, req ConvertToImporterOfferRequest) (*Document, error) {
	src, err := s.repo.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if src.Kind != KindClientOffer {
		return nil, fmt.Errorf("%w: %s", ErrNotConvertible, src.Kind)
	}
	if !src.Status.Convertible() {
		return nil, fmt.Errorf("%w: %s", ErrNotConvertible, src.Status)
	}

	lines := make([]Line, 0, len(src.Lines))
	for i, l := range src.Lines {
		line := Line{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			GrossWeight: l.GrossWeight,
			NetWeight:   l.NetWeight,
			Packages:    l.Packages,
			UnitPrice:   l.UnitPrice,
			LineOrder:   i + 1,
		}
		line.Subtotal = LineSubtotal(line)
		lines = append(lines, line)
	}
	subtotal, total := ComputeTotals(KindImporterOffer, lines, 0, 0)

	var newID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := NextOfferNumber(ctx, repo, s.now())
		if err != nil {
			return err
		}
		offer := Document{
			Kind:       KindImporterOffer,
			Number:     number,
			IssueDate:  s.now(),
			DueDate:    src.DueDate,
			Status:     StatusPending,
			ClientID:   src.ClientID,
			ImporterID: req.ImporterID,
			Subtotal:   subtotal,
			Total:      total,
		}
		id, err := repo.Create(ctx, offer)
		if err != nil {
			return err
		}
		newID = id
		for i := range lines {
			lines[i].DocumentID = newID
			if _, err := repo.InsertLine(ctx, lines[i]); err != nil {
				return fmt.Errorf("copy line: %w", err)
			}
		}
		if err := repo.UpdateStatus(ctx, offerID, StatusConverted); err != nil {
			return err
		}
		if err := repo.InsertEvent(ctx, NewEvent(offerID, EventConverted, "to importer offer")); err != nil {
			return err
		}
		return repo.InsertEvent(ctx, NewEvent(newID, EventCreated, "from "+src.Number))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, newID)
}

// ExpireOverdue flips pending offers whose validity date has passed to the
// terminal EXPIRED state. The worker runs it nightly.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	return s.repo.ExpireOverdue(ctx, s.now())
}

// recomputeTotals reloads the document's lines and persists the derived
// totals. Runs inside the caller's transaction.
func (s *Service) recomputeTotals(ctx context.Context, repo Repository, kind Kind, documentID int64, taxes, discount float64) error {
	lines, err := repo.Lines(ctx, documentID)
	if err != nil {
		return fmt.Errorf("reload lines: %w", err)
	}
	subtotal, total := ComputeTotals(kind, lines, taxes, discount)
	return repo.UpdateTotals(ctx, documentID, subtotal, taxes, discount, total)
}

func (s *Service) resolveNumber(ctx context.Context, kind Kind, explicit *string) (string, error) {
	if explicit != nil && *explicit != "" {
		if _, err := s.repo.GetByNumber(ctx, kind, *explicit); err == nil {
			return "", ErrDuplicateNumber
		} else if !errors.Is(err, ErrNotFound) {
			return "", err
		}
		return *explicit, nil
	}
	if kind == KindClientOffer || kind == KindImporterOffer {
		return NextOfferNumber(ctx, s.repo, s.now())
	}
	return NextFamilyNumber(ctx, s.repo, kind, s.now())
}

func initialStatus(kind Kind) Status {
	if kind == KindInvoice {
		return StatusIssued
	}
	return StatusPending
}

// maxLineOrder returns the highest order among the current lines, so an
// appended line never collides with a survivor after earlier removals.
func maxLineOrder(lines []Line) int {
	max := 0
	for _, l := range lines {
		if l.LineOrder > max {
			max = l.LineOrder
		}
	}
	return max
}

func lineFromRequest(req LineRequest, index int) Line {
	line := Line{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		GrossWeight: req.GrossWeight,
		NetWeight:   req.NetWeight,
		Packages:    req.Packages,
		UnitPrice:   req.UnitPrice,
		CIFPrice:    req.CIFPrice,
		LineOrder:   req.LineOrder,
	}
	if line.LineOrder == 0 {
		line.LineOrder = index + 1
	}
	return line
}

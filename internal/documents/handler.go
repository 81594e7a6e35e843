package documents

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comexsur/backoffice/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	doc, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListDocumentsRequest{
		Kind:   Kind(r.URL.Query().Get("kind")),
		Limit:  50,
		Offset: 0,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := Status(v)
		req.Status = &status
	}
	if v := r.URL.Query().Get("client_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.ClientID = &id
		}
	}
	if v := r.URL.Query().Get("importer_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.ImporterID = &id
		}
	}
	if v := r.URL.Query().Get("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.DateFrom = &t
		}
	}
	if v := r.URL.Query().Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.DateTo = &t
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			req.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			req.Offset = n
		}
	}

	docs, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list documents", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"total":     total,
	})
}

func (h *Handler) NextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.service.NextNumber(r.Context())
	if err != nil {
		h.respondError(w, "next number", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": number})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	doc, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var req LineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	doc, err := h.service.AddLine(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "add line", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := h.idParam(w, r, "lineID")
	if !ok {
		return
	}
	var req LineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	doc, err := h.service.UpdateLine(r.Context(), id, lineID, req)
	if err != nil {
		h.respondError(w, "update line", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := h.idParam(w, r, "lineID")
	if !ok {
		return
	}
	doc, err := h.service.RemoveLine(r.Context(), id, lineID)
	if err != nil {
		h.respondError(w, "remove line", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) AdjustPrices(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var req AdjustPricesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	doc, err := h.service.AdjustPrices(r.Context(), id, req.TargetTotal)
	if err != nil {
		h.respondError(w, "adjust prices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.service.Accept)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.service.Reject)
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.service.MarkPaid)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.service.Cancel)
}

func (h *Handler) ConvertToInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var req ConvertToInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	invoice, err := h.service.ConvertToInvoice(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "convert to invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) ConvertToImporterOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var req ConvertToImporterOfferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	offer, err := h.service.ConvertToImporterOffer(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "convert to importer offer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, offer)
}

func (h *Handler) statusAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) (*Document, error)) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	doc, err := fn(r.Context(), id)
	if err != nil {
		h.respondError(w, "status transition", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

// respondError maps domain errors onto distinguishable problem responses so
// the calling layer can render field-specific feedback.
func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Conflict(w, err.Error())
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidTarget),
		errors.Is(err, ErrEmptyDocument):
		httpx.UnprocessableEntity(w, err.Error())
	case errors.Is(err, ErrNotConvertible), errors.Is(err, ErrInvalidStatus):
		httpx.Conflict(w, err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Internal(w)
	}
}

package documents

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/next-number", h.NextNumber)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Patch("/", h.Update)
			r.Post("/lines", h.AddLine)
			r.Put("/lines/{lineID}", h.UpdateLine)
			r.Delete("/lines/{lineID}", h.RemoveLine)
			r.Post("/adjust-prices", h.AdjustPrices)
			r.Post("/accept", h.Accept)
			r.Post("/reject", h.Reject)
			r.Post("/mark-paid", h.MarkPaid)
			r.Post("/cancel", h.Cancel)
			r.Post("/convert-to-invoice", h.ConvertToInvoice)
			r.Post("/convert-to-importer-offer", h.ConvertToImporterOffer)
		})
	})
}

package points

import (
	"github.com/go-chi/chi/v5"
)

// CleanerRoutes returns the per-cleaner points routes, mounted under
// /cleaners/{id}/points.
func (h *Handler) CleanerRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Balance)
	r.Get("/ledger", h.Ledger)
	r.Post("/grant", h.Grant)
	r.Post("/redeem", h.Redeem)
	r.Post("/auto-debit", h.AutoDebit)

	return r
}

// Routes returns the cross-cleaner points routes, mounted under /points.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/batch", h.ApplyBatch)
	r.Patch("/ledger/{entryId}/note", h.Annotate)

	return r
}

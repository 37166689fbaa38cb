package policy

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cleanhub/cleanhub-api/internal/pkg/response"
	"github.com/cleanhub/cleanhub-api/internal/pkg/validator"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type updatePolicyRequest struct {
	TargetScope string `json:"target_scope" validate:"max=100"`
	ContentType string `json:"content_type" validate:"required"`
	UsageType   string `json:"usage_type" validate:"required"`
	FixedAmount int    `json:"fixed_amount" validate:"gte=0"`
	Status      string `json:"status" validate:"required"`
}

// Get handles GET /policy
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, p)
}

// Update handles PUT /policy
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p := &PointPolicy{
		TargetScope: req.TargetScope,
		ContentType: ContentType(req.ContentType),
		UsageType:   UsageType(req.UsageType),
		FixedAmount: req.FixedAmount,
		Status:      Status(req.Status),
	}

	if err := h.store.Update(r.Context(), p); err != nil {
		if errors.Is(err, ErrInvalidPolicy) {
			response.BadRequest(w, "Invalid policy values")
			return
		}
		response.InternalError(w)
		return
	}

	updated, err := h.store.Get(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, updated)
}

// Routes returns admin policy routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	return r
}

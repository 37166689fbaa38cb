package cleaner

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cleanhub/cleanhub-api/internal/pkg/response"
	"github.com/cleanhub/cleanhub-api/internal/pkg/validator"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type createCleanerRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Phone  string `json:"phone" validate:"max=30"`
	Region string `json:"region" validate:"max=100"`
	Status string `json:"status" validate:"cleaner_status"`
}

// Create handles POST /cleaners
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCleanerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	status := Status(req.Status)
	if status == "" {
		status = StatusActive
	}

	c := &Cleaner{
		Name:   req.Name,
		Phone:  req.Phone,
		Region: req.Region,
		Status: status,
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, c)
}

// Get handles GET /cleaners/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid cleaner ID")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Cleaner not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, c)
}

// List handles GET /cleaners
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	cleaners, err := h.repo.List(r.Context(), Pagination{Limit: limit, Offset: offset})
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, cleaners)
}

// Routes returns cleaner management routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	return r
}

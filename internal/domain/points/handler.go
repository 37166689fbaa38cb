package points

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cleanhub/cleanhub-api/internal/domain/policy"
	"github.com/cleanhub/cleanhub-api/internal/middleware"
	"github.com/cleanhub/cleanhub-api/internal/pkg/response"
	"github.com/cleanhub/cleanhub-api/internal/pkg/validator"
)

// Handler exposes the points engine to the admin console.
type Handler struct {
	coordinator Coordinator
	batch       *Batch
	resolver    *policy.Resolver
}

func NewHandler(coordinator Coordinator, batch *Batch, resolver *policy.Resolver) *Handler {
	return &Handler{coordinator: coordinator, batch: batch, resolver: resolver}
}

// Grant handles POST /cleaners/{id}/points/grant
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	h.applyMutation(w, r, KindCredit)
}

// Redeem handles POST /cleaners/{id}/points/redeem
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	h.applyMutation(w, r, KindDebit)
}

func (h *Handler) applyMutation(w http.ResponseWriter, r *http.Request, kind Kind) {
	cleanerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid cleaner ID")
		return
	}

	var req MutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	initiator := middleware.GetUserID(r.Context()).String()

	entry, err := h.coordinator.Apply(r.Context(), cleanerID, kind, req.Amount, req.Description, initiator)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.OK(w, entry)
}

// AutoDebit handles POST /cleaners/{id}/points/auto-debit.
// The amount comes from the point policy; the request amount is only used
// when the policy delegates it to the caller.
func (h *Handler) AutoDebit(w http.ResponseWriter, r *http.Request) {
	cleanerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid cleaner ID")
		return
	}

	var req AutoDebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	amount, err := h.resolver.ResolveAutoDebitAmount(r.Context(), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrPolicyInactive):
			response.Conflict(w, "Point policy is inactive, handle the debit manually")
		case errors.Is(err, policy.ErrInvalidAmount):
			response.BadRequest(w, "Policy requires a caller-supplied amount greater than zero")
		default:
			response.InternalError(w)
		}
		return
	}

	initiator := middleware.GetUserID(r.Context()).String()

	entry, err := h.coordinator.Apply(r.Context(), cleanerID, KindDebit, amount, req.Description, initiator)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.OK(w, entry)
}

// Balance handles GET /cleaners/{id}/points
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	cleanerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid cleaner ID")
		return
	}

	balance, err := h.coordinator.GetBalance(r.Context(), cleanerID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, "Points account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"cleaner_id": cleanerID,
		"balance":    balance,
	})
}

// Ledger handles GET /cleaners/{id}/points/ledger
func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	cleanerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid cleaner ID")
		return
	}

	filters, err := parseListFilters(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	entries, err := h.coordinator.ListEntries(r.Context(), cleanerID, filters)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"cleaner_id": cleanerID,
		"entries":    entries,
	})
}

// ApplyBatch handles POST /points/batch
func (h *Handler) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	initiator := middleware.GetUserID(r.Context()).String()

	result, err := h.batch.Apply(r.Context(), req.CleanerIDs, Kind(req.Kind), req.Amount, req.Description, initiator)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyBatch):
			response.BadRequest(w, "Batch requires at least one cleaner")
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "Amount must be greater than zero")
		default:
			response.InternalError(w)
		}
		return
	}

	// Partial failures ride inside the result, never as an HTTP error.
	response.OK(w, result)
}

// Annotate handles PATCH /points/ledger/{entryId}/note
func (h *Handler) Annotate(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "entryId"))
	if err != nil {
		response.BadRequest(w, "Invalid entry ID")
		return
	}

	var req AnnotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.coordinator.AnnotateEntry(r.Context(), entryID, req.Note); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			response.NotFound(w, "Ledger entry not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

func writeTransactionError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		response.ErrorWithDetails(w, http.StatusConflict, "INSUFFICIENT_BALANCE",
			"Debit would drive the balance negative", map[string]string{
				"balance":   strconv.Itoa(insufficient.Balance),
				"requested": strconv.Itoa(insufficient.Requested),
			})
	case errors.Is(err, ErrAccountNotFound):
		response.NotFound(w, "Points account not found")
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, "Amount must be greater than zero")
	case errors.Is(err, ErrTransactionConflict):
		response.Error(w, http.StatusConflict, "TRANSACTION_CONFLICT",
			"Concurrent update, please retry the operation")
	default:
		response.InternalError(w)
	}
}

func parseListFilters(r *http.Request) (ListFilters, error) {
	var filters ListFilters
	q := r.URL.Query()

	if v := q.Get("kind"); v != "" {
		kind := Kind(v)
		if !kind.Valid() {
			return filters, fmt.Errorf("invalid kind %q", v)
		}
		filters.Kind = &kind
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, fmt.Errorf("invalid from date: %v", err)
		}
		filters.DateFrom = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, fmt.Errorf("invalid to date: %v", err)
		}
		filters.DateTo = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filters, fmt.Errorf("invalid limit %q", v)
		}
		filters.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filters, fmt.Errorf("invalid offset %q", v)
		}
		filters.Offset = n
	}

	return filters, nil
}

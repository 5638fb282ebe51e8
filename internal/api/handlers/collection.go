// Package handlers contains the HTTP handlers for the local API server.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nmorel/altered-companion/internal/altered"
	"github.com/nmorel/altered-companion/internal/api/response"
	"github.com/nmorel/altered-companion/internal/companion"
)

// vendorError maps a vendor API failure to a response: authentication
// failures surface as 401, other vendor errors as 502.
func vendorError(w http.ResponseWriter, err error) {
	var terminal *altered.TerminalError
	if errors.As(err, &terminal) && terminal.StatusCode == http.StatusUnauthorized {
		response.Unauthorized(w, err)
		return
	}
	response.BadGateway(w, err)
}

// CollectionHandler handles collection-related API requests.
type CollectionHandler struct {
	service *companion.Service
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(service *companion.Service) *CollectionHandler {
	return &CollectionHandler{service: service}
}

type collectionPayload struct {
	Cards     interface{} `json:"cards"`
	UpdatedAt *time.Time  `json:"updatedAt,omitempty"`
}

// GetCollection returns the last persisted collection snapshot.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	cc, updatedAt, err := h.service.Collection(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	payload := collectionPayload{Cards: cc}
	if !updatedAt.IsZero() {
		payload.UpdatedAt = &updatedAt
	}
	response.Success(w, payload)
}

// RefreshCollection rebuilds the collection from the vendor.
func (h *CollectionHandler) RefreshCollection(w http.ResponseWriter, r *http.Request) {
	cc, err := h.service.RefreshCollection(r.Context())
	if err != nil {
		vendorError(w, err)
		return
	}

	response.Success(w, collectionPayload{Cards: cc})
}

// GetStats returns playset completion statistics.
func (h *CollectionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, stats)
}

// ToggleWantlist flips a card's wantlist membership.
func (h *CollectionHandler) ToggleWantlist(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		response.BadRequest(w, errors.New("card reference is required"))
		return
	}

	inWantlist, err := h.service.ToggleWantlist(r.Context(), reference)
	if err != nil {
		vendorError(w, err)
		return
	}

	response.Success(w, map[string]bool{"inMyWantlist": inWantlist})
}

// UpdateTradelist sets the offered quantity of one card on the user's own
// tradelist.
func (h *CollectionHandler) UpdateTradelist(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		response.BadRequest(w, errors.New("card reference is required"))
		return
	}

	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity < 0 {
		response.BadRequest(w, errors.New("quantity must be a non-negative integer"))
		return
	}

	if err := h.service.UpdateTradelist(r.Context(), reference, quantity); err != nil {
		vendorError(w, err)
		return
	}

	response.NoContent(w)
}

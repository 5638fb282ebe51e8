package handlers

import (
	"net/http"

	"github.com/nmorel/altered-companion/internal/api/response"
	"github.com/nmorel/altered-companion/internal/companion"
)

// FriendsHandler handles friend and tradelist API requests.
type FriendsHandler struct {
	service *companion.Service
}

// NewFriendsHandler creates a new FriendsHandler.
func NewFriendsHandler(service *companion.Service) *FriendsHandler {
	return &FriendsHandler{service: service}
}

// GetFriends returns the stored friend list.
func (h *FriendsHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Friends(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, list)
}

// RefreshFriends re-fetches the friend list from the vendor.
func (h *FriendsHandler) RefreshFriends(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.RefreshFriends(r.Context())
	if err != nil {
		vendorError(w, err)
		return
	}

	response.Success(w, list)
}

// GetTradelists returns every stored friend tradelist.
func (h *FriendsHandler) GetTradelists(w http.ResponseWriter, r *http.Request) {
	tradelists, err := h.service.Tradelists(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, tradelists)
}

// RefreshTradelists reassembles every friend's tradelist from the vendor.
func (h *FriendsHandler) RefreshTradelists(w http.ResponseWriter, r *http.Request) {
	tradelists, err := h.service.RefreshTradelists(r.Context())
	if err != nil {
		vendorError(w, err)
		return
	}

	response.Success(w, tradelists)
}

// ClearCardCache empties the durable unique card metadata cache.
func (h *FriendsHandler) ClearCardCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCardCache(r.Context()); err != nil {
		response.InternalError(w, err)
		return
	}

	response.NoContent(w)
}

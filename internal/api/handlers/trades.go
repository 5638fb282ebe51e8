package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nmorel/altered-companion/internal/altered"
	"github.com/nmorel/altered-companion/internal/api/response"
	"github.com/nmorel/altered-companion/internal/companion"
)

// TradesHandler handles trade lifecycle API requests.
type TradesHandler struct {
	service *companion.Service
}

// NewTradesHandler creates a new TradesHandler.
func NewTradesHandler(service *companion.Service) *TradesHandler {
	return &TradesHandler{service: service}
}

// GetTrades lists the user's trades, canceled ones excluded.
func (h *TradesHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Trades(r.Context())
	if err != nil {
		vendorError(w, err)
		return
	}

	response.Success(w, list)
}

type startTradeRequest struct {
	FriendID string `json:"friendId"`
	Cards    []struct {
		Reference string `json:"reference"`
		Quantity  int    `json:"quantity"`
	} `json:"cards"`
}

// StartTrade opens a trade towards a friend and accepts it.
func (h *TradesHandler) StartTrade(w http.ResponseWriter, r *http.Request) {
	var req startTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.FriendID == "" {
		response.BadRequest(w, errors.New("friendId is required"))
		return
	}
	if len(req.Cards) == 0 {
		response.BadRequest(w, errors.New("at least one card is required"))
		return
	}

	cards := make([]altered.CardQuantity, 0, len(req.Cards))
	for _, card := range req.Cards {
		if card.Reference == "" || card.Quantity <= 0 {
			response.BadRequest(w, errors.New("each card needs a reference and a positive quantity"))
			return
		}
		cards = append(cards, altered.CardQuantity{
			Reference: card.Reference,
			Quantity:  card.Quantity,
		})
	}

	tradeID, err := h.service.StartTrade(r.Context(), req.FriendID, cards)
	if err != nil {
		vendorError(w, err)
		return
	}

	response.Created(w, map[string]string{"id": tradeID})
}

// AcceptTrade accepts a pending trade.
func (h *TradesHandler) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "tradeID")
	if tradeID == "" {
		response.BadRequest(w, errors.New("trade ID is required"))
		return
	}

	if err := h.service.AcceptTrade(r.Context(), tradeID); err != nil {
		vendorError(w, err)
		return
	}

	response.NoContent(w)
}

// CancelTrade cancels a pending trade.
func (h *TradesHandler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "tradeID")
	if tradeID == "" {
		response.BadRequest(w, errors.New("trade ID is required"))
		return
	}

	if err := h.service.CancelTrade(r.Context(), tradeID); err != nil {
		vendorError(w, err)
		return
	}

	response.NoContent(w)
}

package altered

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const tradesPageSize = 1000

// GetTrades lists the authenticated user's trade requests, all statuses
// included. Page 1 only.
func (c *Client) GetTrades(ctx context.Context, token string) ([]APITradeListItem, error) {
	reqURL := fmt.Sprintf("%s/owner_exchange_requests?itemsPerPage=%d&page=1", c.baseURL, tradesPageSize)

	var result tradesResponse
	if err := c.getJSON(ctx, reqURL, token, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch trades: %w", err)
	}

	return result.Members, nil
}

// GetTrade retrieves the full detail of one trade request.
func (c *Client) GetTrade(ctx context.Context, token, tradeID string) (*APITradeDetail, error) {
	reqURL := fmt.Sprintf("%s/owner_exchange_requests/%s", c.baseURL, url.PathEscape(tradeID))

	var detail APITradeDetail
	if err := c.getJSON(ctx, reqURL, token, &detail); err != nil {
		return nil, fmt.Errorf("failed to get trade %s: %w", tradeID, err)
	}

	return &detail, nil
}

// CreateTrade opens a trade request towards a friend and returns the new
// trade's identifier, extracted from the Content-Location response header.
//
// Creation is deliberately NOT retried: the POST is not idempotent, and a
// retry after an ambiguous failure could open the same trade twice.
func (c *Client) CreateTrade(ctx context.Context, token, friendID string, cards []CardQuantity) (string, error) {
	type exchangeCard struct {
		Card     string `json:"card"`
		Quantity int    `json:"quantity"`
	}

	payload := struct {
		Friend             string         `json:"friend"`
		OwnerExchangeCards []exchangeCard `json:"ownerExchangeCards"`
	}{
		Friend: fmt.Sprintf("/users/%s", friendID),
	}
	for _, card := range cards {
		payload.OwnerExchangeCards = append(payload.OwnerExchangeCards, exchangeCard{
			Card:     fmt.Sprintf("/cards/%s", card.Reference),
			Quantity: card.Quantity,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal trade request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/owner_exchange_requests", c.baseURL)

	resp, err := c.DoOnce(ctx, http.MethodPost, reqURL, token, body)
	if err != nil {
		return "", fmt.Errorf("failed to create trade: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Content-Location is "/owner_exchange_requests/{id}".
	contentLocation := resp.Header.Get("Content-Location")
	parts := strings.Split(contentLocation, "/")
	if len(parts) < 3 || parts[2] == "" {
		return "", fmt.Errorf("trade created but no trade id in Content-Location %q", contentLocation)
	}

	return parts[2], nil
}

// AcceptTrade accepts a trade request.
func (c *Client) AcceptTrade(ctx context.Context, token, tradeID string) error {
	return c.putTradeAction(ctx, token, tradeID, "accept")
}

// CancelTrade cancels a trade request.
func (c *Client) CancelTrade(ctx context.Context, token, tradeID string) error {
	return c.putTradeAction(ctx, token, tradeID, "cancel")
}

func (c *Client) putTradeAction(ctx context.Context, token, tradeID, action string) error {
	reqURL := fmt.Sprintf("%s/owner_exchange_requests/%s/%s", c.baseURL, url.PathEscape(tradeID), action)

	resp, err := c.Do(ctx, http.MethodPut, reqURL, token, []byte("{}"))
	if err != nil {
		return fmt.Errorf("failed to %s trade %s: %w", action, tradeID, err)
	}
	_ = resp.Body.Close()

	return nil
}

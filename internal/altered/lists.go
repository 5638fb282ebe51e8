package altered

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// UpdateTradelist sets the quantity of one card offered on the authenticated
// user's own tradelist.
func (c *Client) UpdateTradelist(ctx context.Context, token, reference string, quantity int) error {
	type tradelistCard struct {
		Card     string `json:"card"`
		Quantity int    `json:"quantity"`
	}

	payload := struct {
		Cards []tradelistCard `json:"cards"`
	}{
		Cards: []tradelistCard{{
			Card:     fmt.Sprintf("/cards/%s", reference),
			Quantity: quantity,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal tradelist update: %w", err)
	}

	reqURL := fmt.Sprintf("%s/ownership_lists/tradelist", c.baseURL)

	resp, err := c.Do(ctx, http.MethodPut, reqURL, token, body)
	if err != nil {
		return fmt.Errorf("failed to update tradelist for %s: %w", reference, err)
	}
	_ = resp.Body.Close()

	return nil
}

// AddToWantlist adds a card to the authenticated user's wantlist.
func (c *Client) AddToWantlist(ctx context.Context, token, reference string) error {
	payload := struct {
		Name  string   `json:"name"`
		Cards []string `json:"cards"`
	}{
		Name:  "wantlist",
		Cards: []string{fmt.Sprintf("/cards/%s", reference)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal wantlist addition: %w", err)
	}

	reqURL := fmt.Sprintf("%s/card_user_list_cards", c.baseURL)

	resp, err := c.Do(ctx, http.MethodPost, reqURL, token, body)
	if err != nil {
		return fmt.Errorf("failed to add %s to wantlist: %w", reference, err)
	}
	_ = resp.Body.Close()

	return nil
}

// RemoveFromWantlist removes a card from the authenticated user's wantlist.
func (c *Client) RemoveFromWantlist(ctx context.Context, token, reference string) error {
	reqURL := fmt.Sprintf("%s/card_user_lists/wantlist/cards/%s", c.baseURL, url.PathEscape(reference))

	resp, err := c.Do(ctx, http.MethodDelete, reqURL, token, nil)
	if err != nil {
		return fmt.Errorf("failed to remove %s from wantlist: %w", reference, err)
	}
	_ = resp.Body.Close()

	return nil
}

package altered

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	// collectionPageSize is the fixed page size for faceted collection
	// queries. Only page 1 is fetched; the vendor caps facet results below
	// this threshold.
	collectionPageSize = 150
)

// CardFilter restricts a faceted /cards query. Empty slices leave the facet
// unconstrained.
type CardFilter struct {
	Factions  []string
	Rarities  []string
	CardTypes []string
}

// GetCards queries the card catalog with ownership counts for the
// authenticated user (collection=true). A single page of 150 items is
// fetched.
func (c *Client) GetCards(ctx context.Context, token string, filter CardFilter) ([]APICard, error) {
	query := url.Values{}

	if len(filter.Factions) > 0 {
		query.Set("factions", strings.Join(filter.Factions, ","))
	}
	if len(filter.Rarities) > 0 {
		query.Set("rarity", strings.Join(filter.Rarities, ","))
	}
	if len(filter.CardTypes) > 0 {
		query.Set("cardType", strings.Join(filter.CardTypes, ","))
	}
	query.Set("itemsPerPage", fmt.Sprintf("%d", collectionPageSize))
	query.Set("page", "1")
	query.Set("collection", "true")

	reqURL := fmt.Sprintf("%s/cards?%s", c.baseURL, query.Encode())

	var result cardsResponse
	if err := c.getJSON(ctx, reqURL, token, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch cards: %w", err)
	}

	return result.Members, nil
}

// GetCard retrieves a single card by its printing reference.
func (c *Client) GetCard(ctx context.Context, token, reference string) (*APICard, error) {
	reqURL := fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(reference))

	var card APICard
	if err := c.getJSON(ctx, reqURL, token, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", reference, err)
	}

	return &card, nil
}

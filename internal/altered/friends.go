package altered

import (
	"context"
	"fmt"
	"net/url"
)

const (
	// friendsPageSize caps the friend list fetch. Page 1 only.
	friendsPageSize = 500

	// tradelistPageSize caps a friend tradelist fetch. Page 1 only.
	tradelistPageSize = 1000
)

// tradelistCardTypes are the card types a tradelist query spans. Heroes and
// tokens cannot be traded, so the vendor UI never requests them either.
var tradelistCardTypes = []string{"SPELL", "PERMANENT", "CHARACTER"}

// GetFriendships lists the authenticated user's friendships.
func (c *Client) GetFriendships(ctx context.Context, token string) ([]APIFriendship, error) {
	reqURL := fmt.Sprintf("%s/user_friendships?itemsPerPage=%d&page=1", c.baseURL, friendsPageSize)

	var result friendshipsResponse
	if err := c.getJSON(ctx, reqURL, token, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch friendships: %w", err)
	}

	return result.Members, nil
}

// GetFriendTradelist fetches one rarity slice of a friend's tradelist.
// The vendor API splits tradelists by rarity class, so callers issue one
// query for {COMMON,RARE} and one for {UNIQUE}. Facets use the array-style
// parameter encoding this endpoint expects, unlike the /cards facets.
func (c *Client) GetFriendTradelist(ctx context.Context, token, friendID string, rarities []string) ([]APIFriendCard, error) {
	query := url.Values{}
	query.Set("itemsPerPage", fmt.Sprintf("%d", tradelistPageSize))
	query.Set("page", "1")
	for _, cardType := range tradelistCardTypes {
		query.Add("cardType[]", cardType)
	}
	for _, rarity := range rarities {
		query.Add("rarity[]", rarity)
	}

	reqURL := fmt.Sprintf("%s/ownership_lists/tradelist/users/%s?%s", c.baseURL, url.PathEscape(friendID), query.Encode())

	var result friendCardsResponse
	if err := c.getJSON(ctx, reqURL, token, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch tradelist for friend %s: %w", friendID, err)
	}

	return result.Members, nil
}

// Package friends tracks the user's friends and assembles their tradelists
// against the known card catalog.
package friends

import (
	"context"
	"time"

	"github.com/nmorel/altered-companion/internal/altered"
	"github.com/nmorel/altered-companion/internal/collection"
)

// Friend is a user the authenticated user can trade with. UpdatedAt marks
// the last successful tradelist refresh, not the last friend-list fetch:
// it survives friend-list refreshes untouched.
type Friend struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FriendCard is a card as it appears in a friend's tradelist. TheyHave is
// the quantity the friend offers. FriendCards live in per-friend lists and
// are never merged into the user's own collection.
type FriendCard struct {
	Name            string              `json:"name"`
	Reference       string              `json:"reference"`
	CollectorNumber string              `json:"collectorNumber"`
	CardType        collection.CardType `json:"cardType"`
	Rarity          collection.Rarity   `json:"rarity"`
	Faction         collection.Faction  `json:"faction"`
	ImagePath       string              `json:"imagePath"`
	TheyHave        int                 `json:"theyHave"`
}

// FetchFriends lists the authenticated user's friends. UpdatedAt is left
// zero; the repository merges timestamps from previously stored rows.
func FetchFriends(ctx context.Context, client *altered.Client, token string) ([]Friend, error) {
	friendships, err := client.GetFriendships(ctx, token)
	if err != nil {
		return nil, err
	}

	friends := make([]Friend, 0, len(friendships))
	for _, friendship := range friendships {
		friends = append(friends, Friend{
			ID:   friendship.UserFriend.ID,
			Name: friendship.UserFriend.NickName,
		})
	}

	return friends, nil
}

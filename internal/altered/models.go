package altered

// The vendor API is a Hydra/JSON-LD service: list endpoints wrap their
// results under "hydra:member" and nested resources carry reference strings.
// Only the fields the companion consumes are modelled.

// Reference is a nested named resource (faction, rarity, card type, subtype).
type Reference struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Name      string `json:"name"`
}

// APICard is a card as returned by the faceted /cards query and the
// single-card /cards/{reference} endpoint. The list endpoint formats the
// collector number under collectorNumberFormatted; the single-card endpoint
// uses collectorNumber.
type APICard struct {
	ID                       string      `json:"id"`
	Reference                string      `json:"reference"`
	Name                     string      `json:"name"`
	ImagePath                string      `json:"imagePath"`
	CollectorNumberFormatted string      `json:"collectorNumberFormatted"`
	CollectorNumber          string      `json:"collectorNumber"`
	CardType                 Reference   `json:"cardType"`
	CardSubTypes             []Reference `json:"cardSubTypes"`
	Rarity                   Reference   `json:"rarity"`
	MainFaction              Reference   `json:"mainFaction"`
	InMyCollection           int         `json:"inMyCollection"`
	InMyTradelist            int         `json:"inMyTradelist"`
	InMyWantlist             bool        `json:"inMyWantlist"`
}

// APIFriendship is one row of /user_friendships.
type APIFriendship struct {
	UserFriend struct {
		ID       string `json:"id"`
		NickName string `json:"nickName"`
	} `json:"userFriend"`
}

// APIFriendCard is one entry of a friend's tradelist. Quantity is how many
// copies the friend offers.
type APIFriendCard struct {
	Reference      string `json:"reference"`
	Name           string `json:"name"`
	ImagePath      string `json:"imagePath"`
	InMyCollection int    `json:"inMyCollection"`
	Quantity       int    `json:"quantity"`
}

// APIUser identifies a trade participant.
type APIUser struct {
	ID       string `json:"id"`
	NickName string `json:"nickName"`
	UniqueID string `json:"uniqueId"`
}

// APITradeCard is a card attached to a trade, with quantity.
type APITradeCard struct {
	Card struct {
		Reference string `json:"reference"`
		ImagePath string `json:"imagePath"`
	} `json:"card"`
	Quantity int `json:"quantity"`
}

// APITradeListItem is a trade summary from the list endpoint. Friend is the
// counterparty regardless of who initiated the trade.
type APITradeListItem struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Friend APIUser `json:"friend"`
	MyTurn bool    `json:"myTurn"`
}

// APITradeDetail is the full trade record. Sender/receiver card lists are
// labelled by role, not by viewer; callers must orient them against the
// authenticated user (see the trades package).
type APITradeDetail struct {
	ID                         string         `json:"id"`
	Status                     string         `json:"status"`
	Sender                     APIUser        `json:"sender"`
	Friend                     APIUser        `json:"friend"`
	MyTurn                     bool           `json:"myTurn"`
	OwnerExchangeCardsSender   []APITradeCard `json:"ownerExchangeCardsSender"`
	OwnerExchangeCardsReceiver []APITradeCard `json:"ownerExchangeCardsReceiver"`
}

// CardQuantity names one card and an amount, used when creating trades and
// updating the own tradelist.
type CardQuantity struct {
	Reference string
	Quantity  int
}

type cardsResponse struct {
	Members []APICard `json:"hydra:member"`
}

type friendshipsResponse struct {
	Members []APIFriendship `json:"hydra:member"`
}

type friendCardsResponse struct {
	Members []APIFriendCard `json:"hydra:member"`
}

type tradesResponse struct {
	Members []APITradeListItem `json:"hydra:member"`
}

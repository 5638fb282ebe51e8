package trades

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nmorel/altered-companion/internal/altered"
)

// Builder turns raw trade records into viewer-oriented Trades.
type Builder struct {
	client *altered.Client
}

// NewBuilder creates a trade builder over the given client.
func NewBuilder(client *altered.Client) *Builder {
	return &Builder{client: client}
}

// Build fetches a trade's detail and orients it towards the authenticated
// user. The raw detail labels its card lists by role: each role's list holds
// the cards that role RECEIVES. When the friend is the sender, the friend
// initiated the trade, the receiver list is what the friend gets (what I
// send) and the sender list is what the friend sends (what I receive);
// otherwise the mapping inverts.
func (b *Builder) Build(ctx context.Context, token string, item altered.APITradeListItem) (Trade, error) {
	detail, err := b.client.GetTrade(ctx, token, item.ID)
	if err != nil {
		return Trade{}, err
	}

	friendIsSender := detail.Sender.ID == item.Friend.ID

	trade := Trade{
		ID:            item.ID,
		TradeWith:     item.Friend.NickName,
		Status:        Status(item.Status),
		InitiatedByMe: !friendIsSender,
		MyTurn:        detail.MyTurn,
	}

	if friendIsSender {
		trade.Sending = convertCards(detail.OwnerExchangeCardsReceiver)
		trade.Receiving = convertCards(detail.OwnerExchangeCardsSender)
	} else {
		trade.Sending = convertCards(detail.OwnerExchangeCardsSender)
		trade.Receiving = convertCards(detail.OwnerExchangeCardsReceiver)
	}

	return trade, nil
}

// FetchTrades lists the user's trades with details, skipping canceled ones.
// Details are fetched concurrently; list order is preserved.
func (b *Builder) FetchTrades(ctx context.Context, token string) ([]Trade, error) {
	items, err := b.client.GetTrades(ctx, token)
	if err != nil {
		return nil, err
	}

	active := items[:0]
	for _, item := range items {
		if Status(item.Status) != StatusCanceled {
			active = append(active, item)
		}
	}

	trades := make([]Trade, len(active))

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range active {
		g.Go(func() error {
			trade, err := b.Build(gctx, token, item)
			if err != nil {
				return err
			}
			trades[i] = trade
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trades, nil
}

// Start opens a trade towards a friend and immediately accepts it, moving it
// out of the draft state so the counterparty sees it.
func (b *Builder) Start(ctx context.Context, token, friendID string, cards []altered.CardQuantity) (string, error) {
	tradeID, err := b.client.CreateTrade(ctx, token, friendID, cards)
	if err != nil {
		return "", err
	}

	if err := b.client.AcceptTrade(ctx, token, tradeID); err != nil {
		return tradeID, fmt.Errorf("trade %s created but not accepted: %w", tradeID, err)
	}

	return tradeID, nil
}

// Accept accepts a pending trade.
func (b *Builder) Accept(ctx context.Context, token, tradeID string) error {
	return b.client.AcceptTrade(ctx, token, tradeID)
}

// Cancel cancels a pending trade.
func (b *Builder) Cancel(ctx context.Context, token, tradeID string) error {
	return b.client.CancelTrade(ctx, token, tradeID)
}

func convertCards(raw []altered.APITradeCard) []TradeCard {
	cards := make([]TradeCard, 0, len(raw))
	for _, tc := range raw {
		cards = append(cards, TradeCard{
			Reference: tc.Card.Reference,
			ImagePath: tc.Card.ImagePath,
			Quantity:  tc.Quantity,
		})
	}
	return cards
}

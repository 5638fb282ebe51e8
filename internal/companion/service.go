// Package companion wires the vendor client, persistence, and domain logic
// into one service shared by the CLI and the local API server.
package companion

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nmorel/altered-companion/internal/altered"
	"github.com/nmorel/altered-companion/internal/auth"
	"github.com/nmorel/altered-companion/internal/collection"
	"github.com/nmorel/altered-companion/internal/friends"
	"github.com/nmorel/altered-companion/internal/storage"
	"github.com/nmorel/altered-companion/internal/storage/repository"
	"github.com/nmorel/altered-companion/internal/trades"
)

// Notifier receives domain events (collection refreshed, tradelists updated)
// for forwarding to interested clients.
type Notifier interface {
	Publish(event string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, interface{}) {}

// Event names published by the service.
const (
	EventCollectionRefreshed = "collection.refreshed"
	EventFriendsUpdated      = "friends.updated"
	EventTradelistsUpdated   = "tradelists.updated"
)

// Service exposes the companion's operations.
type Service struct {
	client   *altered.Client
	tokens   auth.TokenSource
	baseline collection.CardCollection

	collections repository.CollectionRepository
	friends     repository.FriendsRepository
	tradelists  repository.TradelistRepository
	cardCache   *repository.CardCacheRepository

	assembler *friends.Assembler
	builder   *trades.Builder
	notifier  Notifier
}

// Options configures a Service.
type Options struct {
	// BaseURL selects the vendor API host; empty means production.
	BaseURL string

	// Tokens provides the bearer token per call.
	Tokens auth.TokenSource

	// Baseline is the card catalog the collection build folds into.
	Baseline collection.CardCollection

	// CacheTTL bounds cached unique card metadata; zero keeps it forever.
	CacheTTL time.Duration

	// Notifier receives domain events; nil discards them.
	Notifier Notifier
}

// NewService assembles a service over an open database.
func NewService(db *storage.DB, opts Options) *Service {
	if opts.Baseline == nil {
		opts.Baseline = make(collection.CardCollection)
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}

	client := altered.NewClient(opts.BaseURL)
	cardCache := repository.NewCardCacheRepository(db.Conn(), opts.CacheTTL)

	return &Service{
		client:      client,
		tokens:      opts.Tokens,
		baseline:    opts.Baseline,
		collections: repository.NewCollectionRepository(db.Conn()),
		friends:     repository.NewFriendsRepository(db.Conn()),
		tradelists:  repository.NewTradelistRepository(db.Conn()),
		cardCache:   cardCache,
		assembler:   friends.NewAssembler(client, opts.Baseline, cardCache),
		builder:     trades.NewBuilder(client),
		notifier:    opts.Notifier,
	}
}

// SetNotifier replaces the event sink. Call before any refresh is running.
func (s *Service) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

func (s *Service) token() (string, error) {
	token, err := s.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("resolve API token: %w", err)
	}
	return token, nil
}

// RefreshCollection rebuilds the collection from the vendor, persists the
// snapshot, and returns it.
func (s *Service) RefreshCollection(ctx context.Context) (collection.CardCollection, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	cc, err := collection.BuildCollection(ctx, s.client, token, s.baseline)
	if err != nil {
		return nil, err
	}

	if err := s.collections.Save(ctx, cc); err != nil {
		return nil, err
	}

	s.notifier.Publish(EventCollectionRefreshed, map[string]int{"cards": len(cc)})
	return cc, nil
}

// Collection returns the last persisted collection snapshot.
func (s *Service) Collection(ctx context.Context) (collection.CardCollection, time.Time, error) {
	return s.collections.Load(ctx)
}

// Stats computes playset completion over the last persisted snapshot.
func (s *Service) Stats(ctx context.Context) (collection.Stats, error) {
	cc, _, err := s.collections.Load(ctx)
	if err != nil {
		return collection.Stats{}, err
	}
	return collection.ComputeStats(cc), nil
}

// RefreshFriends fetches the friend list from the vendor, syncs it into
// storage, and returns the stored list (with preserved refresh timestamps).
func (s *Service) RefreshFriends(ctx context.Context) ([]friends.Friend, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	list, err := friends.FetchFriends(ctx, s.client, token)
	if err != nil {
		return nil, err
	}

	if err := s.friends.Sync(ctx, list); err != nil {
		return nil, err
	}

	stored, err := s.friends.List(ctx)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(EventFriendsUpdated, map[string]int{"friends": len(stored)})
	return stored, nil
}

// Friends returns the stored friend list.
func (s *Service) Friends(ctx context.Context) ([]friends.Friend, error) {
	return s.friends.List(ctx)
}

// RefreshTradelists assembles every stored friend's tradelist, persists the
// results, and stamps each friend's refresh time.
func (s *Service) RefreshTradelists(ctx context.Context) (map[string][]friends.FriendCard, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	list, err := s.friends.List(ctx)
	if err != nil {
		return nil, err
	}

	assembled, err := s.assembler.AssembleAll(ctx, token, list)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for friendID, cards := range assembled {
		if err := s.tradelists.Save(ctx, friendID, cards); err != nil {
			return nil, err
		}
		if err := s.friends.TouchUpdatedAt(ctx, friendID, now); err != nil {
			return nil, err
		}
	}

	log.Printf("[RefreshTradelists] assembled %d tradelists", len(assembled))
	s.notifier.Publish(EventTradelistsUpdated, map[string]int{"tradelists": len(assembled)})
	return assembled, nil
}

// Tradelists returns the stored friend tradelists.
func (s *Service) Tradelists(ctx context.Context) (map[string][]friends.FriendCard, error) {
	return s.tradelists.LoadAll(ctx)
}

// Trades lists the user's trades, canceled ones excluded.
func (s *Service) Trades(ctx context.Context) ([]trades.Trade, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	return s.builder.FetchTrades(ctx, token)
}

// StartTrade opens and accepts a trade towards a friend consisting of the
// given cards, returning the trade ID.
func (s *Service) StartTrade(ctx context.Context, friendID string, cards []altered.CardQuantity) (string, error) {
	token, err := s.token()
	if err != nil {
		return "", err
	}
	return s.builder.Start(ctx, token, friendID, cards)
}

// AcceptTrade accepts a pending trade.
func (s *Service) AcceptTrade(ctx context.Context, tradeID string) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	return s.builder.Accept(ctx, token, tradeID)
}

// CancelTrade cancels a pending trade.
func (s *Service) CancelTrade(ctx context.Context, tradeID string) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	return s.builder.Cancel(ctx, token, tradeID)
}

// ToggleWantlist flips a card's wantlist membership and returns the new state.
func (s *Service) ToggleWantlist(ctx context.Context, reference string) (bool, error) {
	token, err := s.token()
	if err != nil {
		return false, err
	}
	return collection.ToggleWantlist(ctx, s.client, token, reference)
}

// UpdateTradelist sets the offered quantity of one card on the user's own
// tradelist.
func (s *Service) UpdateTradelist(ctx context.Context, reference string, quantity int) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	return s.client.UpdateTradelist(ctx, token, reference, quantity)
}

// ClearCardCache empties the durable unique card metadata cache.
func (s *Service) ClearCardCache(ctx context.Context) error {
	return s.cardCache.Clear(ctx)
}

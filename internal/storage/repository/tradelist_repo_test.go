package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorel/altered-companion/internal/friends"
)

func sampleTradelist() []friends.FriendCard {
	return []friends.FriendCard{
		{
			Name:            "Ouroboros Inkcaster",
			Reference:       "ALT_CORE_B_AX_01_C",
			CollectorNumber: "BTG-001-C",
			CardType:        "SPELL",
			Rarity:          "COMMON",
			Faction:         "AX",
			ImagePath:       "/cards/ALT_CORE_B_AX_01_C.jpg",
			TheyHave:        3,
		},
		{
			Name:            "Kelon Beast",
			Reference:       "ALT_CORE_B_MU_12_R",
			CollectorNumber: "BTG-112-R",
			CardType:        "CHARACTER",
			Rarity:          "RARE",
			Faction:         "MU",
			ImagePath:       "/cards/ALT_CORE_B_MU_12_R.jpg",
			TheyHave:        1,
		},
	}
}

func TestTradelistRepository_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTradelistRepository(db)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, repo.Save(ctx, "friend-1", sampleTradelist()))

	cards, updatedAt, err := repo.Load(ctx, "friend-1")
	require.NoError(t, err)
	assert.Equal(t, sampleTradelist(), cards)
	assert.True(t, updatedAt.After(before), "updated_at should be stamped on save")
}

func TestTradelistRepository_SaveReplacesPrevious(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTradelistRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "friend-1", sampleTradelist()))
	require.NoError(t, repo.Save(ctx, "friend-1", sampleTradelist()[:1]))

	cards, _, err := repo.Load(ctx, "friend-1")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
	assert.Equal(t, "ALT_CORE_B_AX_01_C", cards[0].Reference)
}

func TestTradelistRepository_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTradelistRepository(db)

	cards, updatedAt, err := repo.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, cards)
	assert.True(t, updatedAt.IsZero())
}

func TestTradelistRepository_LoadAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTradelistRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "friend-1", sampleTradelist()))
	require.NoError(t, repo.Save(ctx, "friend-2", sampleTradelist()[1:]))

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Len(t, all["friend-1"], 2)
	assert.Len(t, all["friend-2"], 1)
}

// Package collection models the user's card collection and builds it from
// the vendor's faceted catalog queries.
package collection

// Faction classifies a card into one of the six playable factions.
type Faction string

const (
	FactionAxiom  Faction = "AX"
	FactionBravos Faction = "BR"
	FactionLyra   Faction = "LY"
	FactionMuna   Faction = "MU"
	FactionOrdis  Faction = "OR"
	FactionYzmir  Faction = "YZ"
)

// AllFactions lists every faction, in the order collection fetches fan out.
var AllFactions = []Faction{
	FactionAxiom,
	FactionBravos,
	FactionLyra,
	FactionMuna,
	FactionOrdis,
	FactionYzmir,
}

// Rarity classifies a card printing.
type Rarity string

const (
	RarityCommon Rarity = "COMMON"
	RarityRare   Rarity = "RARE"
	RarityUnique Rarity = "UNIQUE"
)

// AllRarities lists every rarity.
var AllRarities = []Rarity{RarityCommon, RarityRare, RarityUnique}

// CardType classifies a card.
type CardType string

const (
	CardTypeSpell     CardType = "SPELL"
	CardTypePermanent CardType = "PERMANENT"
	CardTypeCharacter CardType = "CHARACTER"
	CardTypeHero      CardType = "HERO"
)

// PlaysetSize returns the maximum useful copies of a card for play: 3 for
// spells, permanents and characters, 1 for everything else (heroes).
func PlaysetSize(cardType CardType) int {
	switch cardType {
	case CardTypeSpell, CardTypePermanent, CardTypeCharacter:
		return 3
	default:
		return 1
	}
}

// VersionOwned tracks ownership counts for one specific printing (a card
// reference). A card concept may have several printings.
type VersionOwned struct {
	ID             string `json:"id"`
	Reference      string `json:"reference"`
	InMyCollection int    `json:"inMyCollection"`
	InMyTradelist  int    `json:"inMyTradelist"`
	InMyWantlist   bool   `json:"inMyWantlist"`
}

// Card aggregates every printing of a card concept, keyed by collector
// number. The aggregate counts always equal the sum of the per-version
// counts (logical OR for the wantlist flag); Merge maintains this.
type Card struct {
	Name            string         `json:"name"`
	CollectorNumber string         `json:"collectorNumber"`
	CardType        CardType       `json:"cardType"`
	CardSubTypes    []string       `json:"cardSubTypes"`
	Rarity          Rarity         `json:"rarity"`
	Faction         Faction        `json:"faction"`
	ImagePath       string         `json:"imagePath"`
	InMyCollection  int            `json:"inMyCollection"`
	InMyTradelist   int            `json:"inMyTradelist"`
	InMyWantlist    bool           `json:"inMyWantlist"`
	VersionsOwned   []VersionOwned `json:"versionOwned"`
}

// Clone returns a deep copy of the card.
func (c *Card) Clone() *Card {
	clone := *c
	clone.CardSubTypes = append([]string(nil), c.CardSubTypes...)
	clone.VersionsOwned = append([]VersionOwned(nil), c.VersionsOwned...)
	return &clone
}

// version returns the VersionOwned entry for the given reference, or nil.
func (c *Card) version(reference string) *VersionOwned {
	for i := range c.VersionsOwned {
		if c.VersionsOwned[i].Reference == reference {
			return &c.VersionsOwned[i]
		}
	}
	return nil
}

// CardCollection maps collector numbers to cards.
type CardCollection map[string]*Card

// Clone returns a deep copy of the collection. Merges are additive, so
// every rebuild must start from a fresh copy of the baseline catalog;
// merging into a previously merged collection doubles counts.
func (cc CardCollection) Clone() CardCollection {
	clone := make(CardCollection, len(cc))
	for number, card := range cc {
		clone[number] = card.Clone()
	}
	return clone
}

// FindByReference returns the card owning the given printing reference,
// scanning every card's version list.
func (cc CardCollection) FindByReference(reference string) (*Card, bool) {
	for _, card := range cc {
		if card.version(reference) != nil {
			return card, true
		}
	}
	return nil, false
}

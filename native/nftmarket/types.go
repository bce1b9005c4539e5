package nftmarket

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// MemberID identifies a platform member in the external membership registry.
type MemberID uint64

// ChannelID identifies the channel an asset was minted under. The channel
// registry resolves it to a creator reward account.
type ChannelID uint64

// AssetID uniquely identifies an asset record. Computed as
// keccak256(channel || reference) so mints are deterministic.
type AssetID [32]byte

// NewAssetID derives the canonical identifier for an asset minted under the
// given channel with a caller-supplied reference blob.
func NewAssetID(channel ChannelID, reference []byte) AssetID {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(channel))
	return AssetID(ethcrypto.Keccak256Hash(buf[:], reference))
}

// OwnerKind discriminates between channel (creator) and member ownership.
type OwnerKind uint8

const (
	OwnerChannel OwnerKind = iota
	OwnerMember
)

// Owner records the current holder of an asset. Member is meaningful only
// when Kind is OwnerMember.
type Owner struct {
	Kind   OwnerKind `json:"kind"`
	Member MemberID  `json:"member,omitempty"`
}

// StatusKind discriminates the transactional status union. Exactly one mode
// is active at a time; Idle is both the rest and the per-cycle terminal state.
type StatusKind uint8

const (
	StatusIdle StatusKind = iota
	StatusBuyNow
	StatusOffer
	StatusAuction
)

// TransactionalStatus is the tagged union of transaction modes. Price carries
// the fixed buy-now price in StatusBuyNow and the optional asking price in
// StatusOffer (nil means the offer is free). Auction is set only in
// StatusAuction.
type TransactionalStatus struct {
	Kind    StatusKind     `json:"kind"`
	Price   *big.Int       `json:"price,omitempty"`
	OfferTo MemberID       `json:"offerTo,omitempty"`
	Auction *AuctionRecord `json:"auction,omitempty"`
}

// AuctionType discriminates English (fixed end, anti-snipe extension) from
// Open (no fixed end, bids locked for a minimum duration) auctions.
type AuctionType uint8

const (
	AuctionEnglish AuctionType = iota
	AuctionOpen
)

// AuctionRecord models one active auction. Heights are block numbers from the
// injected height source. EndsAt is maintained for English auctions only and
// moves forward under the anti-snipe rule.
type AuctionRecord struct {
	Type            AuctionType `json:"type"`
	Duration        uint64      `json:"duration,omitempty"`
	ExtensionPeriod uint64      `json:"extensionPeriod,omitempty"`
	BidLockDuration uint64      `json:"bidLockDuration,omitempty"`
	StartsAt        uint64      `json:"startsAt"`
	EndsAt          uint64      `json:"endsAt,omitempty"`
	StartingPrice   *big.Int    `json:"startingPrice"`
	BidStep         *big.Int    `json:"bidStep"`
	LastBid         *Bid        `json:"lastBid,omitempty"`
}

// Bid is the currently escrowed top bid. The bidder's funds stay reserved for
// exactly as long as the bid is installed as LastBid.
type Bid struct {
	Bidder        MemberID `json:"bidder"`
	BidderAccount [20]byte `json:"bidderAccount"`
	Amount        *big.Int `json:"amount"`
	PlacedAt      uint64   `json:"placedAt"`
}

// AuctionParams carries caller-supplied auction configuration, validated by
// the bounds policy before an auction is installed.
type AuctionParams struct {
	Type            AuctionType
	Duration        uint64
	ExtensionPeriod uint64
	BidLockDuration uint64
	StartingPrice   *big.Int
	BidStep         *big.Int
	StartsAt        *uint64
}

// Asset is the tradeable record whose ownership and transaction mode the
// engine manages. RoyaltyBps is the optional creator royalty attached at mint.
type Asset struct {
	ID         AssetID             `json:"id"`
	Channel    ChannelID           `json:"channel"`
	Owner      Owner               `json:"owner"`
	RoyaltyBps *uint32             `json:"royaltyBps,omitempty"`
	Status     TransactionalStatus `json:"status"`
	MintedAt   uint64              `json:"mintedAt"`
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// Clone returns a deep copy of the bid.
func (b *Bid) Clone() *Bid {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Amount = cloneBigInt(b.Amount)
	return &clone
}

// Clone returns a deep copy of the auction record.
func (a *AuctionRecord) Clone() *AuctionRecord {
	if a == nil {
		return nil
	}
	clone := *a
	clone.StartingPrice = cloneBigInt(a.StartingPrice)
	clone.BidStep = cloneBigInt(a.BidStep)
	clone.LastBid = a.LastBid.Clone()
	return &clone
}

// Clone returns a deep copy of the asset so callers can mutate the copy
// without affecting the stored instance.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	clone := *a
	if a.RoyaltyBps != nil {
		royalty := *a.RoyaltyBps
		clone.RoyaltyBps = &royalty
	}
	clone.Status.Price = cloneBigInt(a.Status.Price)
	clone.Status.Auction = a.Status.Auction.Clone()
	return &clone
}

// setIdle resets the transactional status to its rest state.
func (a *Asset) setIdle() {
	a.Status = TransactionalStatus{Kind: StatusIdle}
}

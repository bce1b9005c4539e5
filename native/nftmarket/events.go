package nftmarket

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"nftmarket/core/types"
)

const (
	EventTypeAssetMinted          = "nftmarket.asset.minted"
	EventTypeBuyNowStarted        = "nftmarket.buynow.started"
	EventTypeBuyNowCompleted      = "nftmarket.buynow.completed"
	EventTypeOfferStarted         = "nftmarket.offer.started"
	EventTypeOfferAccepted        = "nftmarket.offer.accepted"
	EventTypeAuctionStarted       = "nftmarket.auction.started"
	EventTypeBidPlaced            = "nftmarket.auction.bid"
	EventTypeBidCancelled         = "nftmarket.auction.bid_cancelled"
	EventTypeAuctionCompleted     = "nftmarket.auction.completed"
	EventTypeTransactionCancelled = "nftmarket.transaction.cancelled"
	EventTypeSettlementCompleted  = "nftmarket.settlement.completed"
)

type marketEvent struct {
	evt *types.Event
}

func (m marketEvent) EventType() string {
	if m.evt == nil {
		return ""
	}
	return m.evt.Type
}

func (m marketEvent) Event() *types.Event { return m.evt }

func baseAttributes(asset *Asset) map[string]string {
	attrs := make(map[string]string)
	if asset == nil {
		return attrs
	}
	attrs["assetId"] = hex.EncodeToString(asset.ID[:])
	attrs["channel"] = strconv.FormatUint(uint64(asset.Channel), 10)
	switch asset.Owner.Kind {
	case OwnerChannel:
		attrs["owner"] = "channel"
	case OwnerMember:
		attrs["owner"] = "member:" + strconv.FormatUint(uint64(asset.Owner.Member), 10)
	}
	return attrs
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func newAssetMintedEvent(asset *Asset) *types.Event {
	attrs := baseAttributes(asset)
	if asset != nil && asset.RoyaltyBps != nil {
		attrs["royaltyBps"] = strconv.FormatUint(uint64(*asset.RoyaltyBps), 10)
	}
	return &types.Event{Type: EventTypeAssetMinted, Attributes: attrs}
}

func newBuyNowStartedEvent(asset *Asset) *types.Event {
	attrs := baseAttributes(asset)
	if asset != nil {
		attrs["price"] = amountString(asset.Status.Price)
	}
	return &types.Event{Type: EventTypeBuyNowStarted, Attributes: attrs}
}

func newBuyNowCompletedEvent(asset *Asset, buyer MemberID, price *big.Int) *types.Event {
	attrs := baseAttributes(asset)
	attrs["buyer"] = strconv.FormatUint(uint64(buyer), 10)
	attrs["price"] = amountString(price)
	return &types.Event{Type: EventTypeBuyNowCompleted, Attributes: attrs}
}

func newOfferStartedEvent(asset *Asset, to MemberID) *types.Event {
	attrs := baseAttributes(asset)
	attrs["to"] = strconv.FormatUint(uint64(to), 10)
	if asset != nil && asset.Status.Price != nil {
		attrs["price"] = asset.Status.Price.String()
	}
	return &types.Event{Type: EventTypeOfferStarted, Attributes: attrs}
}

func settlementAttributes(attrs map[string]string, settlement *Settlement) {
	if settlement == nil {
		return
	}
	attrs["amount"] = amountString(settlement.Amount)
	attrs["fee"] = amountString(settlement.Fee)
	attrs["royalty"] = amountString(settlement.Royalty)
	attrs["proceeds"] = amountString(settlement.Proceeds)
	if settlement.RoyaltyAccount != nil {
		attrs["royaltyAccount"] = hex.EncodeToString(settlement.RoyaltyAccount[:])
	}
	if settlement.RoyaltyToTreasury {
		attrs["royaltyToTreasury"] = "true"
	}
}

func newOfferAcceptedEvent(asset *Asset, by MemberID, settlement *Settlement) *types.Event {
	attrs := baseAttributes(asset)
	attrs["by"] = strconv.FormatUint(uint64(by), 10)
	settlementAttributes(attrs, settlement)
	return &types.Event{Type: EventTypeOfferAccepted, Attributes: attrs}
}

func newAuctionStartedEvent(asset *Asset) *types.Event {
	attrs := baseAttributes(asset)
	if asset != nil && asset.Status.Auction != nil {
		auction := asset.Status.Auction
		switch auction.Type {
		case AuctionEnglish:
			attrs["auctionType"] = "english"
			attrs["duration"] = strconv.FormatUint(auction.Duration, 10)
			attrs["extensionPeriod"] = strconv.FormatUint(auction.ExtensionPeriod, 10)
		case AuctionOpen:
			attrs["auctionType"] = "open"
			attrs["bidLockDuration"] = strconv.FormatUint(auction.BidLockDuration, 10)
		}
		attrs["startsAt"] = strconv.FormatUint(auction.StartsAt, 10)
		attrs["startingPrice"] = amountString(auction.StartingPrice)
		attrs["bidStep"] = amountString(auction.BidStep)
	}
	return &types.Event{Type: EventTypeAuctionStarted, Attributes: attrs}
}

func newBidPlacedEvent(asset *Asset, bid *Bid) *types.Event {
	attrs := baseAttributes(asset)
	if bid != nil {
		attrs["bidder"] = strconv.FormatUint(uint64(bid.Bidder), 10)
		attrs["amount"] = amountString(bid.Amount)
		attrs["placedAt"] = strconv.FormatUint(bid.PlacedAt, 10)
	}
	return &types.Event{Type: EventTypeBidPlaced, Attributes: attrs}
}

func newBidCancelledEvent(asset *Asset, bidder MemberID) *types.Event {
	attrs := baseAttributes(asset)
	attrs["bidder"] = strconv.FormatUint(uint64(bidder), 10)
	return &types.Event{Type: EventTypeBidCancelled, Attributes: attrs}
}

func newAuctionCompletedEvent(asset *Asset, winner MemberID, settlement *Settlement) *types.Event {
	attrs := baseAttributes(asset)
	attrs["winner"] = strconv.FormatUint(uint64(winner), 10)
	settlementAttributes(attrs, settlement)
	return &types.Event{Type: EventTypeAuctionCompleted, Attributes: attrs}
}

func newTransactionCancelledEvent(asset *Asset) *types.Event {
	return &types.Event{Type: EventTypeTransactionCancelled, Attributes: baseAttributes(asset)}
}

func newSettlementCompletedEvent(settlement *Settlement) *types.Event {
	attrs := make(map[string]string)
	attrs["payer"] = hex.EncodeToString(settlement.Payer[:])
	if settlement.Payee != nil {
		attrs["payee"] = hex.EncodeToString(settlement.Payee[:])
	}
	settlementAttributes(attrs, settlement)
	return &types.Event{Type: EventTypeSettlementCompleted, Attributes: attrs}
}

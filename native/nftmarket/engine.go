package nftmarket

import (
	"math/big"
	"sync"

	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/native/ledger"
)

type engineState interface {
	AssetGet(id AssetID) (*Asset, bool, error)
	AssetPut(asset *Asset) error
}

// MembershipProvider authenticates callers and resolves member payout
// accounts. Membership storage itself is external to the marketplace.
type MembershipProvider interface {
	Authenticate(member MemberID, account [20]byte) error
	AccountOf(member MemberID) ([20]byte, bool)
}

// ChannelRegistry resolves channels to creator reward accounts and authorizes
// channel-owner actions. Channel storage is external to the marketplace.
type ChannelRegistry interface {
	RewardAccountOf(channel ChannelID) ([20]byte, bool)
	AuthorizeOwner(channel ChannelID, account [20]byte) error
}

// Engine mediates exclusive ownership of asset records and their transfer
// through buy-now sales, member offers and escrowed auctions. All operations
// are serialized behind a single mutex and fail closed: the first violated
// precondition aborts with zero mutation.
type Engine struct {
	mu sync.Mutex

	state          engineState
	ledger         ledger.Ledger
	members        MembershipProvider
	channels       ChannelRegistry
	emitter        events.Emitter
	bounds         Bounds
	platformFeeBps uint32
	feeTreasury    [20]byte
	heightFn       func() uint64
}

// NewEngine constructs an engine with the supplied bounds policy and platform
// fee. State, ledger and registries are configured through setters.
func NewEngine(bounds Bounds, platformFeeBps uint32) *Engine {
	return &Engine{
		bounds:         bounds,
		platformFeeBps: platformFeeBps,
		emitter:        events.NoopEmitter{},
		heightFn:       func() uint64 { return 0 },
	}
}

// SetState configures the asset state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the currency ledger used for escrow and settlement.
func (e *Engine) SetLedger(l ledger.Ledger) { e.ledger = l }

// SetMembership configures the membership provider.
func (e *Engine) SetMembership(m MembershipProvider) { e.members = m }

// SetChannelRegistry configures the channel registry.
func (e *Engine) SetChannelRegistry(c ChannelRegistry) { e.channels = c }

// SetFeeTreasury configures the account that receives the platform fee and
// any royalty whose channel lacks a reward account.
func (e *Engine) SetFeeTreasury(addr [20]byte) { e.feeTreasury = addr }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetHeightFunc overrides the block height source. The engine never runs
// timers; expiry is evaluated lazily against this source.
func (e *Engine) SetHeightFunc(height func() uint64) {
	if height == nil {
		e.heightFn = func() uint64 { return 0 }
		return
	}
	e.heightFn = height
}

// Bounds returns the immutable bounds policy the engine was built with.
func (e *Engine) Bounds() Bounds { return e.bounds }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: evt})
}

func (e *Engine) height() uint64 {
	if e == nil || e.heightFn == nil {
		return 0
	}
	return e.heightFn()
}

func (e *Engine) ensureConfigured() error {
	switch {
	case e == nil || e.state == nil:
		return ErrNilState
	case e.ledger == nil:
		return ErrNilLedger
	case e.members == nil:
		return ErrNilMembership
	case e.channels == nil:
		return ErrNilChannelRegistry
	}
	return nil
}

func (e *Engine) loadAsset(id AssetID) (*Asset, error) {
	asset, ok, err := e.state.AssetGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || asset == nil {
		return nil, ErrAssetNotFound
	}
	return asset, nil
}

func (e *Engine) authenticate(member MemberID, account [20]byte) error {
	if err := e.members.Authenticate(member, account); err != nil {
		return ErrUnauthorized
	}
	return nil
}

// ensureOwnerAuth verifies that the caller controls the asset: member-owned
// assets require the owning member, channel-owned assets defer to the channel
// registry's authorization.
func (e *Engine) ensureOwnerAuth(asset *Asset, caller MemberID, account [20]byte) error {
	switch asset.Owner.Kind {
	case OwnerMember:
		if asset.Owner.Member != caller {
			return ErrNotOwner
		}
		return e.authenticate(caller, account)
	case OwnerChannel:
		if err := e.channels.AuthorizeOwner(asset.Channel, account); err != nil {
			return ErrNotOwner
		}
		return nil
	}
	return ErrNotOwner
}

// ownerPayoutAccount resolves where sale proceeds for the current owner go.
func (e *Engine) ownerPayoutAccount(asset *Asset) ([20]byte, bool) {
	switch asset.Owner.Kind {
	case OwnerMember:
		return e.members.AccountOf(asset.Owner.Member)
	case OwnerChannel:
		return e.channels.RewardAccountOf(asset.Channel)
	}
	return [20]byte{}, false
}

// Mint installs a new asset record under a deterministic identifier. The
// royalty, when supplied, is validated against the bounds policy.
func (e *Engine) Mint(channel ChannelID, reference []byte, owner Owner, royaltyBps *uint32) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	if royaltyBps != nil {
		if err := e.bounds.ValidateRoyalty(*royaltyBps); err != nil {
			return nil, err
		}
	}
	id := NewAssetID(channel, reference)
	if _, ok, err := e.state.AssetGet(id); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAssetExists
	}
	asset := &Asset{
		ID:       id,
		Channel:  channel,
		Owner:    owner,
		MintedAt: e.height(),
		Status:   TransactionalStatus{Kind: StatusIdle},
	}
	if royaltyBps != nil {
		royalty := *royaltyBps
		asset.RoyaltyBps = &royalty
	}
	if err := e.state.AssetPut(asset); err != nil {
		return nil, err
	}
	e.emit(newAssetMintedEvent(asset))
	return asset.Clone(), nil
}

// Asset returns a copy of the stored asset record.
func (e *Engine) Asset(id AssetID) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	return asset.Clone(), nil
}

// StartBuyNow puts an idle asset up for immediate sale at a fixed price.
func (e *Engine) StartBuyNow(caller MemberID, account [20]byte, id AssetID, price *big.Int) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	if err := e.ensureOwnerAuth(asset, caller, account); err != nil {
		return nil, err
	}
	if asset.Status.Kind != StatusIdle {
		return nil, ErrPendingTransaction
	}
	if price == nil || price.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	asset.Status = TransactionalStatus{Kind: StatusBuyNow, Price: new(big.Int).Set(price)}
	if err := e.state.AssetPut(asset); err != nil {
		return nil, err
	}
	e.emit(newBuyNowStartedEvent(asset))
	return asset.Clone(), nil
}

// BuyNow transfers an asset in buy-now state to the caller. The price is
// slashed from the buyer's spendable balance and deposited to the seller in
// full; royalties and platform fees do not apply to the fixed-price path.
func (e *Engine) BuyNow(caller MemberID, account [20]byte, id AssetID) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := e.authenticate(caller, account); err != nil {
		return nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	if asset.Status.Kind != StatusBuyNow {
		return nil, ErrNotInBuyNowState
	}
	price := asset.Status.Price
	if !e.ledger.CanSlash(account, price) {
		return nil, ErrInsufficientBalance
	}
	seller, ok := e.ownerPayoutAccount(asset)
	if !ok {
		return nil, ErrOwnerAccountUnknown
	}
	if err := e.ledger.Slash(account, price); err != nil {
		return nil, err
	}
	if _, err := e.ledger.DepositCreating(seller, price); err != nil {
		return nil, err
	}
	asset.Owner = Owner{Kind: OwnerMember, Member: caller}
	asset.setIdle()
	if err := e.state.AssetPut(asset); err != nil {
		return nil, err
	}
	e.emit(newBuyNowCompletedEvent(asset, caller, price))
	return asset.Clone(), nil
}

// StartOffer directs an offer for an idle asset at a single member. A nil
// price makes the offer free.
func (e *Engine) StartOffer(caller MemberID, account [20]byte, id AssetID, to MemberID, price *big.Int) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	if err := e.ensureOwnerAuth(asset, caller, account); err != nil {
		return nil, err
	}
	if asset.Status.Kind != StatusIdle {
		return nil, ErrPendingTransaction
	}
	if price != nil && price.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	asset.Status = TransactionalStatus{Kind: StatusOffer, OfferTo: to, Price: cloneBigInt(price)}
	if err := e.state.AssetPut(asset); err != nil {
		return nil, err
	}
	e.emit(newOfferStartedEvent(asset, to))
	return asset.Clone(), nil
}

// AcceptOffer completes a pending offer. Only the designated member may
// accept. Priced offers are settled through the settlement path with royalty
// and platform fee applied; the price is first reserved from the buyer so the
// settlement consumes escrowed funds like every other settled transfer.
func (e *Engine) AcceptOffer(caller MemberID, account [20]byte, id AssetID) (*Asset, *Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, nil, err
	}
	if err := e.authenticate(caller, account); err != nil {
		return nil, nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, nil, err
	}
	if asset.Status.Kind != StatusOffer || asset.Status.OfferTo != caller {
		return nil, nil, ErrNoIncomingOffers
	}
	var settlement *Settlement
	if price := asset.Status.Price; price != nil && price.Sign() > 0 {
		if !e.ledger.CanSlash(account, price) {
			return nil, nil, ErrInsufficientBalance
		}
		payee := e.settlementPayee(asset)
		if err := e.ledger.Reserve(account, price); err != nil {
			return nil, nil, err
		}
		settlement, err = e.completePayment(asset.Channel, asset.RoyaltyBps, price, account, payee)
		if err != nil {
			_ = e.ledger.Unreserve(account, price)
			return nil, nil, err
		}
	}
	asset.Owner = Owner{Kind: OwnerMember, Member: caller}
	asset.setIdle()
	if err := e.state.AssetPut(asset); err != nil {
		return nil, nil, err
	}
	e.emit(newOfferAcceptedEvent(asset, caller, settlement))
	return asset.Clone(), settlement, nil
}

// StartAuction installs an auction on an idle asset after validating the
// parameters against the bounds policy. When no start height is supplied the
// auction opens immediately.
func (e *Engine) StartAuction(caller MemberID, account [20]byte, id AssetID, params AuctionParams) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	if err := e.ensureOwnerAuth(asset, caller, account); err != nil {
		return nil, err
	}
	if asset.Status.Kind != StatusIdle {
		return nil, ErrPendingTransaction
	}
	now := e.height()
	if err := e.bounds.ValidateAuctionParams(params, now); err != nil {
		return nil, err
	}
	startsAt := now
	if params.StartsAt != nil {
		startsAt = *params.StartsAt
	}
	record := &AuctionRecord{
		Type:          params.Type,
		StartsAt:      startsAt,
		StartingPrice: new(big.Int).Set(params.StartingPrice),
		BidStep:       new(big.Int).Set(params.BidStep),
	}
	switch params.Type {
	case AuctionEnglish:
		record.Duration = params.Duration
		record.ExtensionPeriod = params.ExtensionPeriod
		record.EndsAt = startsAt + params.Duration
	case AuctionOpen:
		record.BidLockDuration = params.BidLockDuration
	}
	asset.Status = TransactionalStatus{Kind: StatusAuction, Auction: record}
	if err := e.state.AssetPut(asset); err != nil {
		return nil, err
	}
	e.emit(newAuctionStartedEvent(asset))
	return asset.Clone(), nil
}

// PlaceBid escrows a bid on an active auction. Superseding a bid reserves the
// new bidder's funds and releases the previous bidder's escrow within the
// same operation, so exactly the top bid is ever reserved. Late bids on
// English auctions push the end out to now plus the extension period.
func (e *Engine) PlaceBid(caller MemberID, account [20]byte, id AssetID, amount *big.Int) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := e.authenticate(caller, account); err != nil {
		return nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	if asset.Status.Kind != StatusAuction {
		return nil, ErrNotInAuctionState
	}
	auction := asset.Status.Auction
	now := e.height()
	if now < auction.StartsAt {
		return nil, ErrAuctionNotStarted
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	if prev := auction.LastBid; prev != nil {
		floor := new(big.Int).Add(prev.Amount, auction.BidStep)
		if amount.Cmp(floor) < 0 {
			return nil, ErrBidStepViolated
		}
	} else if amount.Cmp(auction.StartingPrice) < 0 {
		return nil, ErrStartingPriceViolated
	}
	if !e.ledger.CanReserve(account, amount) {
		return nil, ErrInsufficientBalance
	}
	if err := e.ledger.Reserve(account, amount); err != nil {
		return nil, err
	}
	if prev := auction.LastBid; prev != nil {
		if err := e.ledger.Unreserve(prev.BidderAccount, prev.Amount); err != nil {
			// Unwind the fresh reservation so the failed operation leaves
			// escrow untouched.
			_ = e.ledger.Unreserve(account, amount)
			return nil, err
		}
	}
	if auction.Type == AuctionEnglish && now+auction.ExtensionPeriod > auction.EndsAt {
		auction.EndsAt = now + auction.ExtensionPeriod
	}
	auction.LastBid = &Bid{
		Bidder:        caller,
		BidderAccount: account,
		Amount:        new(big.Int).Set(amount),
		PlacedAt:      now,
	}
	if err := e.state.AssetPut(asset); err != nil {
		return nil, err
	}
	e.emit(newBidPlacedEvent(asset, auction.LastBid))
	return asset.Clone(), nil
}

// CancelBid withdraws the caller's top bid from an open auction once the bid
// lock duration has elapsed. English auction bids are binding and cannot be
// withdrawn.
func (e *Engine) CancelBid(caller MemberID, account [20]byte, id AssetID) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := e.authenticate(caller, account); err != nil {
		return nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	if asset.Status.Kind != StatusAuction {
		return nil, ErrNotInAuctionState
	}
	auction := asset.Status.Auction
	bid := auction.LastBid
	if bid == nil {
		return nil, ErrLastBidAbsent
	}
	if bid.Bidder != caller {
		return nil, ErrNotLastBidder
	}
	if auction.Type != AuctionOpen {
		return nil, ErrBidNotCancellable
	}
	if e.height() < bid.PlacedAt+auction.BidLockDuration {
		return nil, ErrBidLockActive
	}
	if err := e.ledger.Unreserve(bid.BidderAccount, bid.Amount); err != nil {
		return nil, err
	}
	auction.LastBid = nil
	if err := e.state.AssetPut(asset); err != nil {
		return nil, err
	}
	e.emit(newBidCancelledEvent(asset, caller))
	return asset.Clone(), nil
}

// ensureCanBeCompleted enforces the lazy expiry rule: English auctions are
// completable once the (possibly extended) end height is reached, open
// auctions at any time.
func ensureCanBeCompleted(auction *AuctionRecord, now uint64) error {
	if auction.Type == AuctionEnglish && now < auction.EndsAt {
		return ErrAuctionCannotBeCompleted
	}
	return nil
}

// CompleteAuction settles an auction in favour of the top bid. The caller
// must be the last bidder. The already-escrowed bid amount is routed through
// the settlement path; spendable balance is not re-checked.
func (e *Engine) CompleteAuction(caller MemberID, account [20]byte, id AssetID) (*Asset, *Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, nil, err
	}
	if err := e.authenticate(caller, account); err != nil {
		return nil, nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, nil, err
	}
	if asset.Status.Kind != StatusAuction {
		return nil, nil, ErrNotInAuctionState
	}
	auction := asset.Status.Auction
	bid := auction.LastBid
	if bid == nil {
		return nil, nil, ErrLastBidAbsent
	}
	if err := ensureCanBeCompleted(auction, e.height()); err != nil {
		return nil, nil, err
	}
	if bid.Bidder != caller {
		return nil, nil, ErrNotLastBidder
	}
	payee := e.settlementPayee(asset)
	settlement, err := e.completePayment(asset.Channel, asset.RoyaltyBps, bid.Amount, bid.BidderAccount, payee)
	if err != nil {
		return nil, nil, err
	}
	asset.Owner = Owner{Kind: OwnerMember, Member: bid.Bidder}
	asset.setIdle()
	if err := e.state.AssetPut(asset); err != nil {
		return nil, nil, err
	}
	e.emit(newAuctionCompletedEvent(asset, caller, settlement))
	return asset.Clone(), settlement, nil
}

// CancelTransaction aborts the pending transaction regardless of mode. An
// active auction bid is fully unreserved, making this the guaranteed
// no-stranded-escrow recovery path.
func (e *Engine) CancelTransaction(caller MemberID, account [20]byte, id AssetID) (*Asset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	if err := e.ensureOwnerAuth(asset, caller, account); err != nil {
		return nil, err
	}
	if asset.Status.Kind == StatusIdle {
		return nil, ErrNoPendingTransaction
	}
	if asset.Status.Kind == StatusAuction {
		if bid := asset.Status.Auction.LastBid; bid != nil {
			if err := e.ledger.Unreserve(bid.BidderAccount, bid.Amount); err != nil {
				return nil, err
			}
		}
	}
	asset.setIdle()
	if err := e.state.AssetPut(asset); err != nil {
		return nil, err
	}
	e.emit(newTransactionCancelledEvent(asset))
	return asset.Clone(), nil
}

// settlementPayee resolves the proceeds destination for the current owner,
// or nil when no payout account is known.
func (e *Engine) settlementPayee(asset *Asset) *[20]byte {
	account, ok := e.ownerPayoutAccount(asset)
	if !ok {
		return nil
	}
	return &account
}

package nftmarket

import "errors"

var (
	ErrNilState           = errors.New("nftmarket: state not configured")
	ErrNilLedger          = errors.New("nftmarket: ledger not configured")
	ErrNilMembership      = errors.New("nftmarket: membership provider not configured")
	ErrNilChannelRegistry = errors.New("nftmarket: channel registry not configured")
	ErrNilTreasury        = errors.New("nftmarket: fee treasury not configured")

	ErrAssetExists   = errors.New("nftmarket: asset already exists")
	ErrAssetNotFound = errors.New("nftmarket: asset not found")

	ErrUnauthorized = errors.New("nftmarket: caller authentication failed")
	ErrNotOwner     = errors.New("nftmarket: caller does not own the asset")

	// State-machine violations.
	ErrPendingTransaction       = errors.New("nftmarket: pending transaction exists")
	ErrNoPendingTransaction     = errors.New("nftmarket: no pending transaction")
	ErrNotInBuyNowState         = errors.New("nftmarket: asset is not in buy-now state")
	ErrNoIncomingOffers         = errors.New("nftmarket: no incoming offers for member")
	ErrNotInAuctionState        = errors.New("nftmarket: asset is not in auction state")
	ErrAuctionNotStarted        = errors.New("nftmarket: auction has not started")
	ErrAuctionCannotBeCompleted = errors.New("nftmarket: auction cannot be completed")
	ErrNotLastBidder            = errors.New("nftmarket: caller is not the last bidder")
	ErrLastBidAbsent            = errors.New("nftmarket: auction has no bids")
	ErrBidStepViolated          = errors.New("nftmarket: bid below last bid plus minimal step")
	ErrStartingPriceViolated    = errors.New("nftmarket: bid below starting price")
	ErrBidLockActive            = errors.New("nftmarket: bid lock duration has not expired")
	ErrBidNotCancellable        = errors.New("nftmarket: english auction bids cannot be withdrawn")

	// Economic violations.
	ErrInsufficientBalance = errors.New("nftmarket: insufficient balance")
	ErrInvalidPrice        = errors.New("nftmarket: price must be positive")
	ErrOwnerAccountUnknown = errors.New("nftmarket: owner payout account unknown")

	// Bounds violations, one pair per configured bound.
	ErrAuctionDurationUpperBound = errors.New("nftmarket: auction duration above upper bound")
	ErrAuctionDurationLowerBound = errors.New("nftmarket: auction duration below lower bound")
	ErrExtensionPeriodUpperBound = errors.New("nftmarket: extension period above upper bound")
	ErrExtensionPeriodLowerBound = errors.New("nftmarket: extension period below lower bound")
	ErrExtensionExceedsDuration  = errors.New("nftmarket: extension period exceeds auction duration")
	ErrBidLockDurationUpperBound = errors.New("nftmarket: bid lock duration above upper bound")
	ErrBidLockDurationLowerBound = errors.New("nftmarket: bid lock duration below lower bound")
	ErrBidStepUpperBound         = errors.New("nftmarket: bid step above upper bound")
	ErrBidStepLowerBound         = errors.New("nftmarket: bid step below lower bound")
	ErrStartingPriceUpperBound   = errors.New("nftmarket: starting price above upper bound")
	ErrStartingPriceLowerBound   = errors.New("nftmarket: starting price below lower bound")
	ErrRoyaltyUpperBound         = errors.New("nftmarket: royalty above upper bound")
	ErrRoyaltyLowerBound         = errors.New("nftmarket: royalty below lower bound")
	ErrStartsAtLowerBound        = errors.New("nftmarket: auction start is not in the future")
	ErrStartsAtUpperBound        = errors.New("nftmarket: auction start exceeds max delta")
)

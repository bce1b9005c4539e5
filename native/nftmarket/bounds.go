package nftmarket

import "math/big"

// HeightRange is an inclusive (min,max) pair over block heights.
type HeightRange struct {
	Min uint64
	Max uint64
}

// PriceRange is an inclusive (min,max) pair over currency amounts.
type PriceRange struct {
	Min *big.Int
	Max *big.Int
}

// BpsRange is an inclusive (min,max) pair over basis-point rates.
type BpsRange struct {
	Min uint32
	Max uint32
}

// Bounds is the immutable bounds policy injected into the engine at
// construction. Checks run in a fixed order and the first failing check's
// error is returned.
type Bounds struct {
	AuctionDuration  HeightRange
	ExtensionPeriod  HeightRange
	BidLockDuration  HeightRange
	BidStep          PriceRange
	StartingPrice    PriceRange
	Royalty          BpsRange
	StartsAtMaxDelta uint64
}

// DefaultBounds returns a policy suitable for local deployments and tests.
func DefaultBounds() Bounds {
	return Bounds{
		AuctionDuration:  HeightRange{Min: 10, Max: 100_000},
		ExtensionPeriod:  HeightRange{Min: 1, Max: 1_000},
		BidLockDuration:  HeightRange{Min: 1, Max: 10_000},
		BidStep:          PriceRange{Min: big.NewInt(1), Max: new(big.Int).Lsh(big.NewInt(1), 62)},
		StartingPrice:    PriceRange{Min: big.NewInt(1), Max: new(big.Int).Lsh(big.NewInt(1), 62)},
		Royalty:          BpsRange{Min: 0, Max: 5_000},
		StartsAtMaxDelta: 10_000,
	}
}

func (b Bounds) ensureAuctionDuration(duration uint64) error {
	if duration > b.AuctionDuration.Max {
		return ErrAuctionDurationUpperBound
	}
	if duration < b.AuctionDuration.Min {
		return ErrAuctionDurationLowerBound
	}
	return nil
}

func (b Bounds) ensureExtensionPeriod(period uint64) error {
	if period > b.ExtensionPeriod.Max {
		return ErrExtensionPeriodUpperBound
	}
	if period < b.ExtensionPeriod.Min {
		return ErrExtensionPeriodLowerBound
	}
	return nil
}

func (b Bounds) ensureBidLockDuration(duration uint64) error {
	if duration > b.BidLockDuration.Max {
		return ErrBidLockDurationUpperBound
	}
	if duration < b.BidLockDuration.Min {
		return ErrBidLockDurationLowerBound
	}
	return nil
}

func (b Bounds) ensureBidStep(step *big.Int) error {
	if step == nil {
		return ErrBidStepLowerBound
	}
	if b.BidStep.Max != nil && step.Cmp(b.BidStep.Max) > 0 {
		return ErrBidStepUpperBound
	}
	if b.BidStep.Min != nil && step.Cmp(b.BidStep.Min) < 0 {
		return ErrBidStepLowerBound
	}
	return nil
}

func (b Bounds) ensureStartingPrice(price *big.Int) error {
	if price == nil {
		return ErrStartingPriceLowerBound
	}
	if b.StartingPrice.Max != nil && price.Cmp(b.StartingPrice.Max) > 0 {
		return ErrStartingPriceUpperBound
	}
	if b.StartingPrice.Min != nil && price.Cmp(b.StartingPrice.Min) < 0 {
		return ErrStartingPriceLowerBound
	}
	return nil
}

func (b Bounds) ensureStartsAtDelta(startsAt, now uint64) error {
	if startsAt <= now {
		return ErrStartsAtLowerBound
	}
	if startsAt > now+b.StartsAtMaxDelta {
		return ErrStartsAtUpperBound
	}
	return nil
}

// ValidateAuctionParams checks the caller-supplied auction parameters against
// the configured bounds. For English auctions the duration must also cover at
// least one extension period.
func (b Bounds) ValidateAuctionParams(params AuctionParams, now uint64) error {
	switch params.Type {
	case AuctionEnglish:
		if err := b.ensureAuctionDuration(params.Duration); err != nil {
			return err
		}
		if err := b.ensureExtensionPeriod(params.ExtensionPeriod); err != nil {
			return err
		}
		if params.ExtensionPeriod > params.Duration {
			return ErrExtensionExceedsDuration
		}
	case AuctionOpen:
		if err := b.ensureBidLockDuration(params.BidLockDuration); err != nil {
			return err
		}
	}
	if err := b.ensureStartingPrice(params.StartingPrice); err != nil {
		return err
	}
	if err := b.ensureBidStep(params.BidStep); err != nil {
		return err
	}
	if params.StartsAt != nil {
		if err := b.ensureStartsAtDelta(*params.StartsAt, now); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRoyalty checks a creator royalty rate against the configured bounds.
func (b Bounds) ValidateRoyalty(bps uint32) error {
	if bps > b.Royalty.Max {
		return ErrRoyaltyUpperBound
	}
	if bps < b.Royalty.Min {
		return ErrRoyaltyLowerBound
	}
	return nil
}

package nftmarket

import "math/big"

const bpsDenominator = 10_000

// Settlement summarises the fund movement of one completed transaction.
type Settlement struct {
	Amount            *big.Int
	Fee               *big.Int
	Royalty           *big.Int
	Proceeds          *big.Int
	Payer             [20]byte
	Payee             *[20]byte
	RoyaltyAccount    *[20]byte
	RoyaltyToTreasury bool
}

func mulBps(amount *big.Int, bps uint32) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return out.Div(out, big.NewInt(bpsDenominator))
}

// completePayment consumes the payer's reserved funds and distributes them:
// the platform fee goes to the configured treasury, the creator royalty (when
// the asset carries one) goes to the channel's reward account, and the
// remainder goes to the payee. Royalty whose channel has no reward account is
// routed to the treasury rather than dropped.
func (e *Engine) completePayment(channel ChannelID, royaltyBps *uint32, amount *big.Int, payer [20]byte, payee *[20]byte) (*Settlement, error) {
	if e.feeTreasury == ([20]byte{}) {
		return nil, ErrNilTreasury
	}
	total := new(big.Int).Set(amount)
	fee := mulBps(total, e.platformFeeBps)
	royalty := big.NewInt(0)
	if royaltyBps != nil {
		royalty = mulBps(total, *royaltyBps)
	}
	// The royalty is only honoured when the sale covers both deductions;
	// otherwise the whole remainder after the fee goes to the payee and no
	// royalty is paid out.
	deductions := new(big.Int).Add(royalty, fee)
	royaltyApplied := royaltyBps != nil && total.Cmp(deductions) > 0

	if err := e.ledger.SlashReserved(payer, total); err != nil {
		return nil, err
	}

	settlement := &Settlement{
		Amount:   total,
		Fee:      fee,
		Royalty:  big.NewInt(0),
		Proceeds: big.NewInt(0),
		Payer:    payer,
		Payee:    payee,
	}
	if royaltyApplied {
		settlement.Royalty = royalty
	}

	if payee != nil {
		proceeds := new(big.Int).Sub(total, fee)
		if royaltyApplied {
			proceeds = new(big.Int).Sub(total, deductions)
		}
		if proceeds.Sign() > 0 {
			if _, err := e.ledger.DepositCreating(*payee, proceeds); err != nil {
				return nil, err
			}
		}
		settlement.Proceeds = proceeds
	}

	if royaltyApplied && royalty.Sign() > 0 {
		royaltyTo, ok := e.channels.RewardAccountOf(channel)
		if !ok {
			royaltyTo = e.feeTreasury
			settlement.RoyaltyToTreasury = true
		}
		if _, err := e.ledger.DepositCreating(royaltyTo, royalty); err != nil {
			return nil, err
		}
		settlement.RoyaltyAccount = &royaltyTo
	}

	if fee.Sign() > 0 {
		if _, err := e.ledger.DepositCreating(e.feeTreasury, fee); err != nil {
			return nil, err
		}
	}
	e.emit(newSettlementCompletedEvent(settlement))
	return settlement, nil
}

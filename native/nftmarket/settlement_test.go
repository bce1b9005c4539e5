package nftmarket

import (
	"math/big"
	"testing"
)

func TestMulBps(t *testing.T) {
	cases := []struct {
		amount int64
		bps    uint32
		want   int64
	}{
		{1_000, 500, 50},
		{1_000, 200, 20},
		{1_000, 0, 0},
		{1, 500, 0},   // rounds down
		{999, 100, 9}, // 9.99 truncates
		{10_000, 10_000, 10_000},
	}
	for _, tc := range cases {
		got := mulBps(big.NewInt(tc.amount), tc.bps)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("mulBps(%d, %d) = %s, want %d", tc.amount, tc.bps, got, tc.want)
		}
	}
}

func TestSettlementRoyaltyWithoutRewardAccount(t *testing.T) {
	env := newTestEnv(t)
	delete(env.dir.rewards, testChannel)
	asset := env.mintOwnedBySeller(t, royalty(500))
	env.fund(env.buyerAccount, 1_000)

	if _, err := env.engine.StartOffer(sellerMember, env.sellerAccount, asset.ID, buyerMember, big.NewInt(1_000)); err != nil {
		t.Fatalf("start offer: %v", err)
	}
	_, settlement, err := env.engine.AcceptOffer(buyerMember, env.buyerAccount, asset.ID)
	if err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	if !settlement.RoyaltyToTreasury {
		t.Fatalf("royalty should fall back to the treasury")
	}
	// Royalty 50 plus fee 20 both land on the treasury.
	if got := env.account(env.treasury).Balance; got.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("treasury balance: got %s, want 70", got)
	}
	if got := env.account(env.sellerAccount).Balance; got.Cmp(big.NewInt(930)) != 0 {
		t.Fatalf("seller proceeds: got %s, want 930", got)
	}
}

func TestSettlementDegenerateRoyaltySkipped(t *testing.T) {
	env := newTestEnv(t)
	// Rebuild the engine with a royalty cap and rate where royalty+fee
	// consumes the whole amount.
	bounds := DefaultBounds()
	bounds.Royalty.Max = 9_800
	env.engine = NewEngine(bounds, 200)
	env.engine.SetState(env.state)
	env.engine.SetLedger(env.book)
	env.engine.SetMembership(env.dir)
	env.engine.SetChannelRegistry(env.dir)
	env.engine.SetFeeTreasury(env.treasury)
	env.engine.SetEmitter(env.emitter)

	asset := env.mintOwnedBySeller(t, royalty(9_800))
	env.fund(env.buyerAccount, 1_000)
	if _, err := env.engine.StartOffer(sellerMember, env.sellerAccount, asset.ID, buyerMember, big.NewInt(1_000)); err != nil {
		t.Fatalf("start offer: %v", err)
	}
	_, settlement, err := env.engine.AcceptOffer(buyerMember, env.buyerAccount, asset.ID)
	if err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	// royalty 980 + fee 20 == amount: the royalty is not honoured and the
	// payee keeps amount minus fee.
	if settlement.Royalty.Sign() != 0 {
		t.Fatalf("royalty should be skipped, got %s", settlement.Royalty)
	}
	if settlement.Proceeds.Cmp(big.NewInt(980)) != 0 {
		t.Fatalf("proceeds: got %s, want 980", settlement.Proceeds)
	}
	if got := env.account(env.rewardAccount).Balance; got.Sign() != 0 {
		t.Fatalf("reward account should receive nothing, got %s", got)
	}
	if got := env.account(env.treasury).Balance; got.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("treasury: got %s, want 20", got)
	}
}

func TestSettlementRequiresTreasury(t *testing.T) {
	env := newTestEnv(t)
	env.engine.SetFeeTreasury([20]byte{})
	asset := env.mintOwnedBySeller(t, nil)
	env.fund(env.buyerAccount, 1_000)
	if _, err := env.engine.StartOffer(sellerMember, env.sellerAccount, asset.ID, buyerMember, big.NewInt(100)); err != nil {
		t.Fatalf("start offer: %v", err)
	}
	if _, _, err := env.engine.AcceptOffer(buyerMember, env.buyerAccount, asset.ID); err != ErrNilTreasury {
		t.Fatalf("expected ErrNilTreasury, got %v", err)
	}
	acc := env.account(env.buyerAccount)
	if acc.Reserved.Sign() != 0 || acc.Balance.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("buyer funds stranded: balance=%s reserved=%s", acc.Balance, acc.Reserved)
	}
}

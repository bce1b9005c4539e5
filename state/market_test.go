package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/native/ledger"
	"nftmarket/native/nftmarket"
	"nftmarket/storage"
)

func TestAssetRoundTrip(t *testing.T) {
	st := NewMarketState(storage.NewMemDB())

	id := nftmarket.NewAssetID(7, []byte("video-1"))
	_, ok, err := st.AssetGet(id)
	require.NoError(t, err)
	require.False(t, ok)

	royalty := uint32(500)
	startsAt := uint64(100)
	asset := &nftmarket.Asset{
		ID:         id,
		Channel:    7,
		Owner:      nftmarket.Owner{Kind: nftmarket.OwnerMember, Member: 1},
		RoyaltyBps: &royalty,
		MintedAt:   42,
		Status: nftmarket.TransactionalStatus{
			Kind: nftmarket.StatusAuction,
			Auction: &nftmarket.AuctionRecord{
				Type:            nftmarket.AuctionEnglish,
				Duration:        50,
				ExtensionPeriod: 10,
				StartsAt:        startsAt,
				EndsAt:          150,
				StartingPrice:   big.NewInt(100),
				BidStep:         big.NewInt(10),
				LastBid: &nftmarket.Bid{
					Bidder:        2,
					BidderAccount: [20]byte{0x02},
					Amount:        big.NewInt(120),
					PlacedAt:      145,
				},
			},
		},
	}
	require.NoError(t, st.AssetPut(asset))

	loaded, ok, err := st.AssetGet(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, asset.Channel, loaded.Channel)
	require.Equal(t, asset.Owner, loaded.Owner)
	require.NotNil(t, loaded.RoyaltyBps)
	require.Equal(t, royalty, *loaded.RoyaltyBps)
	require.Equal(t, nftmarket.StatusAuction, loaded.Status.Kind)
	require.NotNil(t, loaded.Status.Auction)
	require.Equal(t, uint64(150), loaded.Status.Auction.EndsAt)
	require.NotNil(t, loaded.Status.Auction.LastBid)
	require.Zero(t, loaded.Status.Auction.LastBid.Amount.Cmp(big.NewInt(120)))
}

func TestLedgerAccountRoundTrip(t *testing.T) {
	st := NewMarketState(storage.NewMemDB())

	addr := [20]byte{0xAA}
	acc, err := st.LedgerAccountGet(addr)
	require.NoError(t, err)
	require.Nil(t, acc, "missing account resolves to nil for lazy creation")

	require.NoError(t, st.LedgerAccountPut(addr, &ledger.Account{
		Balance:  big.NewInt(1_000),
		Reserved: big.NewInt(120),
	}))
	loaded, err := st.LedgerAccountGet(addr)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Zero(t, loaded.Balance.Cmp(big.NewInt(1_000)))
	require.Zero(t, loaded.Reserved.Cmp(big.NewInt(120)))
}

func TestDirectoryAuthentication(t *testing.T) {
	dir := NewDirectory()
	member := [20]byte{0x01}
	dir.RegisterMember(1, member)

	require.NoError(t, dir.Authenticate(1, member))
	require.ErrorIs(t, dir.Authenticate(1, [20]byte{0x02}), ErrAccountMismatch)
	require.ErrorIs(t, dir.Authenticate(2, member), ErrMemberNotFound)

	account, ok := dir.AccountOf(1)
	require.True(t, ok)
	require.Equal(t, member, account)
}

func TestDirectoryChannels(t *testing.T) {
	dir := NewDirectory()
	owner := [20]byte{0x01}
	reward := [20]byte{0x04}
	dir.RegisterChannel(7, ChannelEntry{OwnerAccount: owner, RewardAccount: &reward})
	dir.RegisterChannel(8, ChannelEntry{OwnerAccount: owner})

	require.NoError(t, dir.AuthorizeOwner(7, owner))
	require.ErrorIs(t, dir.AuthorizeOwner(7, [20]byte{0x02}), ErrAccountMismatch)
	require.ErrorIs(t, dir.AuthorizeOwner(9, owner), ErrChannelNotFound)

	got, ok := dir.RewardAccountOf(7)
	require.True(t, ok)
	require.Equal(t, reward, got)

	_, ok = dir.RewardAccountOf(8)
	require.False(t, ok, "channel without reward account must report absence")
}

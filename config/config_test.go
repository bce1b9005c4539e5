package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, "127.0.0.1:8681", cfg.RPCAddress)
	require.Equal(t, uint32(200), cfg.PlatformFeeBps)
	require.NoError(t, cfg.Validate())

	// Reload parses the file it just wrote.
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Bounds, reloaded.Bounds)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
FeeTreasury = "00000000000000000000000000000000000000fe"

[[Members]]
ID = 1
Account = "0x0101010101010101010101010101010101010101"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8681", cfg.RPCAddress)
	require.Equal(t, uint64(6), cfg.BlockIntervalSeconds)
	require.Equal(t, uint64(10), cfg.Bounds.AuctionDurationMin)
	require.Len(t, cfg.Members, 1)
}

func TestValidateRejectsExcessiveRates(t *testing.T) {
	cfg := defaultConfig()
	cfg.PlatformFeeBps = 6_000
	cfg.Bounds.RoyaltyMaxBps = 5_000
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadAddresses(t *testing.T) {
	cfg := defaultConfig()
	cfg.FeeTreasury = "not-hex"
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Members = []MemberEntry{{ID: 1, Account: "0xff"}}
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Channels = []ChannelEntry{{ID: 7, OwnerAccount: "0x0101010101010101010101010101010101010101", RewardAccount: "xyz"}}
	require.Error(t, cfg.Validate())
}

func TestParseAddress(t *testing.T) {
	want := [20]byte{0x01, 0x02}
	got, err := ParseAddress("0x0102000000000000000000000000000000000000")
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = ParseAddress("0102000000000000000000000000000000000000")
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = ParseAddress("0102")
	require.Error(t, err)
}

func TestEngineBoundsConversion(t *testing.T) {
	cfg := defaultConfig()
	cfg.Bounds.StartingPriceMax = "123456789012345678901234567890"
	bounds, err := cfg.EngineBounds()
	require.NoError(t, err)
	require.Equal(t, "123456789012345678901234567890", bounds.StartingPrice.Max.String())
	require.Equal(t, uint64(10), bounds.AuctionDuration.Min)

	cfg.Bounds.BidStepMin = "-1"
	_, err = cfg.EngineBounds()
	require.Error(t, err)

	cfg.Bounds.BidStepMin = ""
	_, err = cfg.EngineBounds()
	require.Error(t, err)
}

package config

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"nftmarket/native/nftmarket"
)

// BoundsConfig mirrors the engine bounds policy in TOML-friendly types.
// Prices are decimal strings so amounts are not limited to int64.
type BoundsConfig struct {
	AuctionDurationMin uint64 `toml:"AuctionDurationMin"`
	AuctionDurationMax uint64 `toml:"AuctionDurationMax"`
	ExtensionPeriodMin uint64 `toml:"ExtensionPeriodMin"`
	ExtensionPeriodMax uint64 `toml:"ExtensionPeriodMax"`
	BidLockDurationMin uint64 `toml:"BidLockDurationMin"`
	BidLockDurationMax uint64 `toml:"BidLockDurationMax"`
	BidStepMin         string `toml:"BidStepMin"`
	BidStepMax         string `toml:"BidStepMax"`
	StartingPriceMin   string `toml:"StartingPriceMin"`
	StartingPriceMax   string `toml:"StartingPriceMax"`
	RoyaltyMinBps      uint32 `toml:"RoyaltyMinBps"`
	RoyaltyMaxBps      uint32 `toml:"RoyaltyMaxBps"`
	StartsAtMaxDelta   uint64 `toml:"StartsAtMaxDelta"`
}

// MemberEntry registers a member's controller account.
type MemberEntry struct {
	ID      uint64 `toml:"ID"`
	Account string `toml:"Account"`
}

// ChannelEntry registers a channel's owner and optional reward account.
type ChannelEntry struct {
	ID            uint64 `toml:"ID"`
	OwnerAccount  string `toml:"OwnerAccount"`
	RewardAccount string `toml:"RewardAccount,omitempty"`
}

type Config struct {
	RPCAddress           string         `toml:"RPCAddress"`
	DataDir              string         `toml:"DataDir"`
	Environment          string         `toml:"Environment"`
	FeeTreasury          string         `toml:"FeeTreasury"`
	PlatformFeeBps       uint32         `toml:"PlatformFeeBps"`
	GenesisUnix          int64          `toml:"GenesisUnix"`
	BlockIntervalSeconds uint64         `toml:"BlockIntervalSeconds"`
	Bounds               BoundsConfig   `toml:"Bounds"`
	Members              []MemberEntry  `toml:"Members"`
	Channels             []ChannelEntry `toml:"Channels"`
}

// Load reads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		RPCAddress:           "127.0.0.1:8681",
		DataDir:              "./marketdata",
		Environment:          "local",
		FeeTreasury:          "00000000000000000000000000000000000000fe",
		PlatformFeeBps:       200,
		BlockIntervalSeconds: 6,
		Bounds: BoundsConfig{
			AuctionDurationMin: 10,
			AuctionDurationMax: 100_000,
			ExtensionPeriodMin: 1,
			ExtensionPeriodMax: 1_000,
			BidLockDurationMin: 1,
			BidLockDurationMax: 10_000,
			BidStepMin:         "1",
			BidStepMax:         "1000000000000000000",
			StartingPriceMin:   "1",
			StartingPriceMax:   "1000000000000000000",
			RoyaltyMinBps:      0,
			RoyaltyMaxBps:      5_000,
			StartsAtMaxDelta:   10_000,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = def.RPCAddress
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = def.DataDir
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = def.Environment
	}
	if cfg.BlockIntervalSeconds == 0 {
		cfg.BlockIntervalSeconds = def.BlockIntervalSeconds
	}
	empty := BoundsConfig{}
	if cfg.Bounds == empty {
		cfg.Bounds = def.Bounds
	}
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseAddress decodes a 20-byte hex account, accepting an optional 0x prefix.
func ParseAddress(value string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("config: invalid account %q: %w", value, err)
	}
	if len(raw) != 20 {
		return addr, fmt.Errorf("config: account %q must be 20 bytes", value)
	}
	copy(addr[:], raw)
	return addr, nil
}

func parsePrice(value, field string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("config: %s is required", field)
	}
	price, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || price.Sign() < 0 {
		return nil, fmt.Errorf("config: %s must be a non-negative decimal", field)
	}
	return price, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.PlatformFeeBps > 10_000 {
		return fmt.Errorf("config: PlatformFeeBps out of range: %d", c.PlatformFeeBps)
	}
	if c.Bounds.RoyaltyMaxBps > 10_000 {
		return fmt.Errorf("config: RoyaltyMaxBps out of range: %d", c.Bounds.RoyaltyMaxBps)
	}
	// Royalty plus fee may never exceed a settled amount.
	if uint64(c.PlatformFeeBps)+uint64(c.Bounds.RoyaltyMaxBps) > 10_000 {
		return fmt.Errorf("config: PlatformFeeBps plus RoyaltyMaxBps exceeds 100%%")
	}
	if _, err := ParseAddress(c.FeeTreasury); err != nil {
		return err
	}
	for _, member := range c.Members {
		if _, err := ParseAddress(member.Account); err != nil {
			return err
		}
	}
	for _, channel := range c.Channels {
		if _, err := ParseAddress(channel.OwnerAccount); err != nil {
			return err
		}
		if strings.TrimSpace(channel.RewardAccount) != "" {
			if _, err := ParseAddress(channel.RewardAccount); err != nil {
				return err
			}
		}
	}
	if _, err := c.EngineBounds(); err != nil {
		return err
	}
	return nil
}

// EngineBounds converts the TOML bounds into the engine's policy value.
func (c *Config) EngineBounds() (nftmarket.Bounds, error) {
	bidStepMin, err := parsePrice(c.Bounds.BidStepMin, "BidStepMin")
	if err != nil {
		return nftmarket.Bounds{}, err
	}
	bidStepMax, err := parsePrice(c.Bounds.BidStepMax, "BidStepMax")
	if err != nil {
		return nftmarket.Bounds{}, err
	}
	priceMin, err := parsePrice(c.Bounds.StartingPriceMin, "StartingPriceMin")
	if err != nil {
		return nftmarket.Bounds{}, err
	}
	priceMax, err := parsePrice(c.Bounds.StartingPriceMax, "StartingPriceMax")
	if err != nil {
		return nftmarket.Bounds{}, err
	}
	return nftmarket.Bounds{
		AuctionDuration:  nftmarket.HeightRange{Min: c.Bounds.AuctionDurationMin, Max: c.Bounds.AuctionDurationMax},
		ExtensionPeriod:  nftmarket.HeightRange{Min: c.Bounds.ExtensionPeriodMin, Max: c.Bounds.ExtensionPeriodMax},
		BidLockDuration:  nftmarket.HeightRange{Min: c.Bounds.BidLockDurationMin, Max: c.Bounds.BidLockDurationMax},
		BidStep:          nftmarket.PriceRange{Min: bidStepMin, Max: bidStepMax},
		StartingPrice:    nftmarket.PriceRange{Min: priceMin, Max: priceMax},
		Royalty:          nftmarket.BpsRange{Min: c.Bounds.RoyaltyMinBps, Max: c.Bounds.RoyaltyMaxBps},
		StartsAtMaxDelta: c.Bounds.StartsAtMaxDelta,
	}, nil
}

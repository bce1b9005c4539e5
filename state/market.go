package state

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"nftmarket/native/ledger"
	"nftmarket/native/nftmarket"
	"nftmarket/storage"
)

const (
	assetPrefix   = "market/asset/"
	accountPrefix = "market/account/"
)

// MarketState persists asset records and ledger accounts in a key-value
// database. It backs both the marketplace engine and the ledger book.
type MarketState struct {
	db storage.Database
}

// NewMarketState wraps the supplied database.
func NewMarketState(db storage.Database) *MarketState {
	return &MarketState{db: db}
}

func assetKey(id nftmarket.AssetID) []byte {
	return []byte(assetPrefix + hex.EncodeToString(id[:]))
}

func accountKey(addr [20]byte) []byte {
	return []byte(accountPrefix + hex.EncodeToString(addr[:]))
}

// AssetGet loads an asset record by identifier.
func (s *MarketState) AssetGet(id nftmarket.AssetID) (*nftmarket.Asset, bool, error) {
	raw, err := s.db.Get(assetKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	asset := new(nftmarket.Asset)
	if err := json.Unmarshal(raw, asset); err != nil {
		return nil, false, fmt.Errorf("state: decode asset: %w", err)
	}
	return asset, true, nil
}

// AssetPut stores an asset record.
func (s *MarketState) AssetPut(asset *nftmarket.Asset) error {
	if asset == nil {
		return fmt.Errorf("state: nil asset")
	}
	raw, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("state: encode asset: %w", err)
	}
	return s.db.Put(assetKey(asset.ID), raw)
}

// LedgerAccountGet loads a ledger account. Missing accounts resolve to nil so
// the ledger can lazily create them.
func (s *MarketState) LedgerAccountGet(addr [20]byte) (*ledger.Account, error) {
	raw, err := s.db.Get(accountKey(addr))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	acc := new(ledger.Account)
	if err := json.Unmarshal(raw, acc); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	return acc, nil
}

// LedgerAccountPut stores a ledger account.
func (s *MarketState) LedgerAccountPut(addr [20]byte, acc *ledger.Account) error {
	if acc == nil {
		return fmt.Errorf("state: nil account")
	}
	raw, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("state: encode account: %w", err)
	}
	return s.db.Put(accountKey(addr), raw)
}

package state

import (
	"errors"
	"sync"

	"nftmarket/native/nftmarket"
)

var (
	ErrMemberNotFound  = errors.New("state: member not registered")
	ErrChannelNotFound = errors.New("state: channel not registered")
	ErrAccountMismatch = errors.New("state: account does not match registration")
)

// ChannelEntry holds the accounts registered for a channel. The reward
// account is the royalty destination; the owner account authorizes
// channel-owner marketplace actions.
type ChannelEntry struct {
	OwnerAccount  [20]byte
	RewardAccount *[20]byte
}

// Directory is a static identity provider satisfying the engine's
// MembershipProvider and ChannelRegistry interfaces. Entries are loaded once
// from configuration; membership management itself lives outside the
// marketplace.
type Directory struct {
	mu       sync.RWMutex
	members  map[nftmarket.MemberID][20]byte
	channels map[nftmarket.ChannelID]ChannelEntry
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		members:  make(map[nftmarket.MemberID][20]byte),
		channels: make(map[nftmarket.ChannelID]ChannelEntry),
	}
}

// RegisterMember records the controller account for a member.
func (d *Directory) RegisterMember(id nftmarket.MemberID, account [20]byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[id] = account
}

// RegisterChannel records the accounts for a channel.
func (d *Directory) RegisterChannel(id nftmarket.ChannelID, entry ChannelEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[id] = entry
}

// Authenticate verifies that the account controls the member.
func (d *Directory) Authenticate(member nftmarket.MemberID, account [20]byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	registered, ok := d.members[member]
	if !ok {
		return ErrMemberNotFound
	}
	if registered != account {
		return ErrAccountMismatch
	}
	return nil
}

// AccountOf resolves the member's payout account.
func (d *Directory) AccountOf(member nftmarket.MemberID) ([20]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	account, ok := d.members[member]
	return account, ok
}

// RewardAccountOf resolves the channel's royalty destination, when set.
func (d *Directory) RewardAccountOf(channel nftmarket.ChannelID) ([20]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.channels[channel]
	if !ok || entry.RewardAccount == nil {
		return [20]byte{}, false
	}
	return *entry.RewardAccount, true
}

// AuthorizeOwner verifies that the account controls the channel.
func (d *Directory) AuthorizeOwner(channel nftmarket.ChannelID, account [20]byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.channels[channel]
	if !ok {
		return ErrChannelNotFound
	}
	if entry.OwnerAccount != account {
		return ErrAccountMismatch
	}
	return nil
}

package ledger

import (
	"errors"
	"math/big"
)

var (
	ErrNilState             = errors.New("ledger: state not configured")
	ErrNegativeAmount       = errors.New("ledger: amount cannot be negative")
	ErrInsufficientBalance  = errors.New("ledger: insufficient spendable balance")
	ErrInsufficientReserved = errors.New("ledger: insufficient reserved balance")
)

// Ledger is the currency capability consumed by the marketplace engine. The
// reserve family backs auction escrow; the slash family backs direct sales.
// Implementations must keep spendable and reserved balances disjoint: Reserve
// moves funds from spendable into reserved, Unreserve moves them back, Slash
// burns spendable funds and SlashReserved burns reserved funds.
type Ledger interface {
	CanReserve(addr [20]byte, amount *big.Int) bool
	Reserve(addr [20]byte, amount *big.Int) error
	Unreserve(addr [20]byte, amount *big.Int) error
	CanSlash(addr [20]byte, amount *big.Int) bool
	Slash(addr [20]byte, amount *big.Int) error
	SlashReserved(addr [20]byte, amount *big.Int) error
	DepositCreating(addr [20]byte, amount *big.Int) (*big.Int, error)
}

// Account is the per-address balance record persisted by the state layer.
type Account struct {
	Balance  *big.Int `json:"balance"`
	Reserved *big.Int `json:"reserved"`
}

// Clone returns a deep copy so callers can mutate safely.
func (a *Account) Clone() *Account {
	clone := &Account{Balance: big.NewInt(0), Reserved: big.NewInt(0)}
	if a == nil {
		return clone
	}
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	if a.Reserved != nil {
		clone.Reserved = new(big.Int).Set(a.Reserved)
	}
	return clone
}

func ensureAccount(acc *Account) *Account {
	if acc == nil {
		return &Account{Balance: big.NewInt(0), Reserved: big.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	if acc.Reserved == nil {
		acc.Reserved = big.NewInt(0)
	}
	return acc
}

type bookState interface {
	LedgerAccountGet(addr [20]byte) (*Account, error)
	LedgerAccountPut(addr [20]byte, acc *Account) error
}

// Book implements Ledger over an injected account state backend.
type Book struct {
	state bookState
}

// NewBook constructs a ledger book. The state backend must be configured via
// SetState before use.
func NewBook() *Book { return &Book{} }

// SetState configures the account state backend used by the book.
func (b *Book) SetState(state bookState) { b.state = state }

func (b *Book) load(addr [20]byte) (*Account, error) {
	if b == nil || b.state == nil {
		return nil, ErrNilState
	}
	acc, err := b.state.LedgerAccountGet(addr)
	if err != nil {
		return nil, err
	}
	return ensureAccount(acc), nil
}

func (b *Book) store(addr [20]byte, acc *Account) error {
	if b == nil || b.state == nil {
		return ErrNilState
	}
	return b.state.LedgerAccountPut(addr, acc)
}

func checkAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return new(big.Int).Set(amount), nil
}

// CanReserve reports whether the spendable balance covers the amount.
func (b *Book) CanReserve(addr [20]byte, amount *big.Int) bool {
	amt, err := checkAmount(amount)
	if err != nil {
		return false
	}
	acc, err := b.load(addr)
	if err != nil {
		return false
	}
	return acc.Balance.Cmp(amt) >= 0
}

// Reserve moves amount from the spendable balance into escrow.
func (b *Book) Reserve(addr [20]byte, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if amt.Sign() == 0 {
		return nil
	}
	acc, err := b.load(addr)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amt)
	acc.Reserved = new(big.Int).Add(acc.Reserved, amt)
	return b.store(addr, acc)
}

// Unreserve releases escrowed funds back to the spendable balance.
func (b *Book) Unreserve(addr [20]byte, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if amt.Sign() == 0 {
		return nil
	}
	acc, err := b.load(addr)
	if err != nil {
		return err
	}
	if acc.Reserved.Cmp(amt) < 0 {
		return ErrInsufficientReserved
	}
	acc.Reserved = new(big.Int).Sub(acc.Reserved, amt)
	acc.Balance = new(big.Int).Add(acc.Balance, amt)
	return b.store(addr, acc)
}

// CanSlash reports whether the spendable balance covers the amount.
func (b *Book) CanSlash(addr [20]byte, amount *big.Int) bool {
	amt, err := checkAmount(amount)
	if err != nil {
		return false
	}
	acc, err := b.load(addr)
	if err != nil {
		return false
	}
	return acc.Balance.Cmp(amt) >= 0
}

// Slash withdraws amount from the spendable balance.
func (b *Book) Slash(addr [20]byte, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if amt.Sign() == 0 {
		return nil
	}
	acc, err := b.load(addr)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amt)
	return b.store(addr, acc)
}

// SlashReserved withdraws amount from the escrowed balance.
func (b *Book) SlashReserved(addr [20]byte, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if amt.Sign() == 0 {
		return nil
	}
	acc, err := b.load(addr)
	if err != nil {
		return err
	}
	if acc.Reserved.Cmp(amt) < 0 {
		return ErrInsufficientReserved
	}
	acc.Reserved = new(big.Int).Sub(acc.Reserved, amt)
	return b.store(addr, acc)
}

// DepositCreating credits the spendable balance, creating the account when it
// does not exist, and returns the resulting balance.
func (b *Book) DepositCreating(addr [20]byte, amount *big.Int) (*big.Int, error) {
	amt, err := checkAmount(amount)
	if err != nil {
		return nil, err
	}
	acc, err := b.load(addr)
	if err != nil {
		return nil, err
	}
	if amt.Sign() > 0 {
		acc.Balance = new(big.Int).Add(acc.Balance, amt)
		if err := b.store(addr, acc); err != nil {
			return nil, err
		}
	}
	return new(big.Int).Set(acc.Balance), nil
}

package ledger

import (
	"fmt"
	"sync"

	"neighborbid/internal/auctionerrors"
	model "neighborbid/internal/models"

	"github.com/shopspring/decimal"
)

// Ledger is the sole authority over wallet balances. Every operation is
// a single state change applied under one mutex, so a partial move (for
// example a debit of Balance without the matching credit of
// LockedBalance) is never observable.
type Ledger struct {
	mu      sync.RWMutex
	wallets map[string]*model.Wallet // key: userID
}

// NewLedger creates an empty wallet ledger.
func NewLedger() *Ledger {
	return &Ledger{wallets: make(map[string]*model.Wallet)}
}

// CreateWallet registers a wallet with an opening balance. Existing
// wallets are left untouched.
func (l *Ledger) CreateWallet(userID string, opening decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.wallets[userID]; ok {
		return
	}
	l.wallets[userID] = &model.Wallet{
		UserID:        userID,
		Balance:       opening,
		LockedBalance: decimal.Zero,
	}
}

// Reserve moves amount from the spendable balance into the locked
// balance. Two concurrent reservations on the same wallet serialize
// here, so their sum can never exceed the balance either saw.
func (l *Ledger) Reserve(userID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.wallet(userID)
	if err != nil {
		return err
	}
	if w.Balance.LessThan(amount) {
		return &auctionerrors.InsufficientBalanceError{Available: w.Balance, Requested: amount}
	}
	w.Balance = w.Balance.Sub(amount)
	w.LockedBalance = w.LockedBalance.Add(amount)
	return nil
}

// Release moves a previously reserved amount back to the spendable
// balance. The caller is responsible for only releasing amounts it
// reserved for the bid being refunded.
func (l *Ledger) Release(userID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.wallet(userID)
	if err != nil {
		return err
	}
	if w.LockedBalance.LessThan(amount) {
		return fmt.Errorf("release %s for user %s: locked balance is %s", amount, userID, w.LockedBalance)
	}
	w.LockedBalance = w.LockedBalance.Sub(amount)
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Capture removes a reserved amount permanently, settling a won auction.
func (l *Ledger) Capture(userID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.wallet(userID)
	if err != nil {
		return err
	}
	if w.LockedBalance.LessThan(amount) {
		return fmt.Errorf("capture %s for user %s: locked balance is %s", amount, userID, w.LockedBalance)
	}
	w.LockedBalance = w.LockedBalance.Sub(amount)
	return nil
}

// Deposit credits the spendable balance from outside the bid flow.
func (l *Ledger) Deposit(userID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.wallet(userID)
	if err != nil {
		return err
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Withdraw debits the spendable balance from outside the bid flow.
func (l *Ledger) Withdraw(userID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.wallet(userID)
	if err != nil {
		return err
	}
	if w.Balance.LessThan(amount) {
		return &auctionerrors.InsufficientBalanceError{Available: w.Balance, Requested: amount}
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Balances returns a snapshot of the wallet.
func (l *Ledger) Balances(userID string) (model.Wallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	w, err := l.wallet(userID)
	if err != nil {
		return model.Wallet{}, err
	}
	return *w, nil
}

// wallet looks up a wallet; callers must hold l.mu.
func (l *Ledger) wallet(userID string) (*model.Wallet, error) {
	w, ok := l.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet for user %s: %w", userID, auctionerrors.ErrWalletNotFound)
	}
	return w, nil
}

package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tonkeeper/tongo/ton"
)

var (
	ErrInvalidAmount      = errors.New("invalid transfer amount")
	ErrTransferRejected   = errors.New("transfer rejected by recipient")
	ErrUnknownDestination = errors.New("unknown destination account")
)

// ReceiveHook runs after an account is credited, while the originating
// transfer is still in flight. It models a recipient contract executing its
// own code inside the payout call chain.
type ReceiveHook func(amount *big.Int)

// Vault is an in-memory Treasury keeping plain account balances. It backs
// the daemon when no live chain binding is configured and lets tests script
// hostile recipients.
type Vault struct {
	balances map[ton.AccountID]*big.Int
	hooks    map[ton.AccountID]ReceiveHook
	rejected map[ton.AccountID]bool
}

func NewVault() *Vault {
	return &Vault{
		balances: make(map[ton.AccountID]*big.Int),
		hooks:    make(map[ton.AccountID]ReceiveHook),
		rejected: make(map[ton.AccountID]bool),
	}
}

func (v *Vault) Transfer(to ton.AccountID, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	if v.rejected[to] {
		return fmt.Errorf("%w: %s", ErrTransferRejected, to.ToRaw())
	}

	balance := v.balances[to]
	if balance == nil {
		balance = new(big.Int)
		v.balances[to] = balance
	}
	balance.Add(balance, amount)

	if hook := v.hooks[to]; hook != nil {
		hook(new(big.Int).Set(amount))
	}

	return nil
}

// Balance returns a copy of the account balance, zero for unknown accounts.
func (v *Vault) Balance(of ton.AccountID) *big.Int {
	if balance := v.balances[of]; balance != nil {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

// SetReceiveHook installs a hook invoked on every credit to the account.
// A nil hook removes the previous one.
func (v *Vault) SetReceiveHook(account ton.AccountID, hook ReceiveHook) {
	if hook == nil {
		delete(v.hooks, account)
		return
	}
	v.hooks[account] = hook
}

// RejectTransfers makes every transfer to the account fail, the way a
// contract without a receive path bounces incoming value.
func (v *Vault) RejectTransfers(account ton.AccountID, reject bool) {
	if !reject {
		delete(v.rejected, account)
		return
	}
	v.rejected[account] = true
}

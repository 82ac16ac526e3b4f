package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo/ton"

	"ledger/internal/events"
)

func TestRefundReturnsEntranceFee(t *testing.T) {
	f := newFixture(t, nil)
	f.enter(t, account(1), account(2))

	var refunded []events.Refunded
	f.bus.Subscribe(events.TopicRefunded, func(payload any) {
		refunded = append(refunded, payload.(events.Refunded))
	})

	require.NoError(t, f.ledger.Refund(account(1), 0))

	assert.Equal(t, testFee, f.vault.Balance(account(1)))
	assert.Equal(t, ton.AccountID{}, f.ledger.Entrants()[0])
	assert.Equal(t, 2, f.ledger.RegistryLen())
	assert.Equal(t, 1, f.ledger.ActiveCount())

	require.Len(t, refunded, 1)
	assert.Equal(t, account(1), refunded[0].Entrant)
}

func TestRefundTwiceFails(t *testing.T) {
	f := newFixture(t, nil)
	f.enter(t, account(1))

	require.NoError(t, f.ledger.Refund(account(1), 0))

	err := f.ledger.Refund(account(1), 0)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
	assert.Equal(t, testFee, f.vault.Balance(account(1)))
}

func TestRefundWrongCaller(t *testing.T) {
	f := newFixture(t, nil)
	f.enter(t, account(1), account(2))

	err := f.ledger.Refund(account(2), 0)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 2, f.ledger.ActiveCount())
}

func TestRefundIndexOutOfRange(t *testing.T) {
	f := newFixture(t, nil)
	f.enter(t, account(1))

	assert.ErrorIs(t, f.ledger.Refund(account(1), -1), ErrInvalidIndex)
	assert.ErrorIs(t, f.ledger.Refund(account(1), 1), ErrInvalidIndex)
}

func TestRefundTransferFailureRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	f.enter(t, account(1))

	f.vault.RejectTransfers(account(1), true)
	err := f.ledger.Refund(account(1), 0)
	require.ErrorIs(t, err, ErrTransferFailed)

	// slot and membership restored, no partial commit
	assert.Equal(t, account(1), f.ledger.Entrants()[0])
	assert.Equal(t, 1, f.ledger.ActiveCount())
	assert.Equal(t, big.NewInt(0), f.vault.Balance(account(1)))

	f.vault.RejectTransfers(account(1), false)
	require.NoError(t, f.ledger.Refund(account(1), 0))
	assert.Equal(t, testFee, f.vault.Balance(account(1)))
}

// A recipient whose receive path re-invokes Refund during its own payout
// must not drain more than one entrance fee.
func TestRefundReentrancyBounded(t *testing.T) {
	f := newFixture(t, nil)
	attacker := account(66)
	f.enter(t, attacker, account(2))

	var reentrant []error
	f.vault.SetReceiveHook(attacker, func(*big.Int) {
		for i := 0; i < 3; i++ {
			reentrant = append(reentrant, f.ledger.Refund(attacker, 0))
		}
	})

	require.NoError(t, f.ledger.Refund(attacker, 0))

	require.Len(t, reentrant, 3)
	for _, err := range reentrant {
		assert.ErrorIs(t, err, ErrReentrantCall)
	}

	// exactly one entrance fee received in total
	assert.Equal(t, testFee, f.vault.Balance(attacker))
	assert.Equal(t, 1, f.ledger.ActiveCount())

	// and a later retry sees the sentinel, not an active slot
	assert.ErrorIs(t, f.ledger.Refund(attacker, 0), ErrAlreadyRefunded)
}

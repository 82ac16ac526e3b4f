package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is. Every operation fails fast
// with one of these and leaves the ledger state exactly as it found it.
var (
	ErrInvalidParams     = errors.New("invalid ledger parameters")
	ErrIncorrectPayment  = errors.New("payment does not match entrance fee total")
	ErrEmptyEntry        = errors.New("empty participant list")
	ErrDuplicateEntrant  = errors.New("duplicate active entrant")
	ErrInvalidIndex      = errors.New("entrant index out of range")
	ErrAlreadyRefunded   = errors.New("entrant already refunded")
	ErrUnauthorized      = errors.New("unauthorized caller")
	ErrRoundNotOver      = errors.New("round deadline not reached")
	ErrNoEntrants        = errors.New("no active entrants")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrNothingToClaim    = errors.New("no prize credited to caller")
	ErrNothingToWithdraw = errors.New("fee accumulator is empty")
	ErrTransferFailed    = errors.New("value transfer failed")
	ErrReentrantCall     = errors.New("reentrant call rejected")
	ErrFeeRateOutOfRange = errors.New("fee rate out of range")
	ErrNoPendingProposal = errors.New("no pending fee rate proposal")
	ErrProposalNotReady  = errors.New("fee rate proposal delay not elapsed")
)

func wrapTransferFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrTransferFailed, err)
}

func wrapDuplicateEntrant(account string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateEntrant, account)
}

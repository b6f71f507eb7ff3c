package ledger

import "errors"

// Error taxonomy mirroring the contract's user error codes. Any of these
// aborts the whole call; the host discards every write the call made.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientAllowance is reserved for a spend-allowance path that
	// has no operation yet; approve/allowance exist without a transferFrom.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrContractPaused        = errors.New("contract paused")
	ErrInvalidAmount         = errors.New("invalid amount")
	// ErrAmountOverflow reports checked-arithmetic overflow. The original
	// runtime reverted the deploy on wide-integer overflow; surfacing an
	// error through the host rollback has the same observable effect.
	ErrAmountOverflow = errors.New("amount overflow")
)

// Code returns the numeric error code exposed to callers, matching the
// contract's taxonomy. Zero means the error is not a ledger error.
func Code(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return 1
	case errors.Is(err, ErrInsufficientAllowance):
		return 2
	case errors.Is(err, ErrUnauthorized):
		return 3
	case errors.Is(err, ErrContractPaused):
		return 4
	case errors.Is(err, ErrInvalidAmount):
		return 5
	case errors.Is(err, ErrAmountOverflow):
		return 6
	default:
		return 0
	}
}

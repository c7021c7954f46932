package summary

import "errors"

// ErrUnknownWallet is returned when the dashboard is asked for a wallet the
// user does not own.
var ErrUnknownWallet = errors.New("unknown wallet")

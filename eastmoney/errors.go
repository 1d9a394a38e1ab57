package eastmoney

import (
	"errors"
	"fmt"
)

// ErrLoginExhausted is returned when every bounded login attempt was rejected
// by the gateway. The caller must not proceed with the unauthenticated
// session.
var ErrLoginExhausted = errors.New("eastmoney: login attempts exhausted")

// ErrNoValidateKey is returned when the authenticated page does not carry the
// validate key marker. That means the login did not actually succeed; there
// is no point retrying.
var ErrNoValidateKey = errors.New("eastmoney: validate key marker not found")

// TradeError is an application-level rejection from the gateway: an expired
// session, a malformed request or a server-side business rule. The gateway
// reports it through a non-zero status in an otherwise well-formed envelope,
// which is also how session expiry is detected.
type TradeError struct {
	Status  int
	Message string
}

func (e *TradeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("eastmoney: gateway rejected the call (status %d)", e.Status)
	}
	return fmt.Sprintf("eastmoney: gateway rejected the call (status %d): %s", e.Status, e.Message)
}

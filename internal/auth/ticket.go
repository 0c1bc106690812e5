package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// TicketPrefix tags every login ticket issued by this service.
const TicketPrefix = "TC-"

const ticketRandomBytes = 20

// NewLoginTicket returns a fresh unpredictable login ticket. A failing random
// source panics: tickets must never be issued from a degraded source.
func NewLoginTicket() string {
	b := make([]byte, ticketRandomBytes)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("system random source unavailable: %v", err))
	}
	return TicketPrefix + strings.ToUpper(hex.EncodeToString(b))
}

// ResolveTicket decides whether an existing ticket is still usable. A
// non-empty ticket whose expiry has not passed is reused verbatim; anything
// else is replaced. The caller persists (ticket, now+duration) in both cases
// so a successful login always extends the expiry.
func ResolveTicket(existing string, expiry int64, now time.Time) (ticket string, isNew bool) {
	if existing != "" && expiry >= now.Unix() {
		return existing, false
	}
	return NewLoginTicket(), true
}

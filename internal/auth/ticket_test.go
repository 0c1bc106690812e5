package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoginTicket_Format(t *testing.T) {
	ticket := NewLoginTicket()

	require.True(t, strings.HasPrefix(ticket, TicketPrefix))
	assert.Len(t, ticket, len(TicketPrefix)+40, "20 random bytes hex encoded")
}

func TestNewLoginTicket_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ticket := NewLoginTicket()
		assert.False(t, seen[ticket], "duplicate ticket issued")
		seen[ticket] = true
	}
}

func TestResolveTicket_ReusesValidTicket(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	ticket, isNew := ResolveTicket("TC-EXISTING", now.Unix()+100, now)
	assert.Equal(t, "TC-EXISTING", ticket)
	assert.False(t, isNew)

	// Expiry exactly at now still counts as valid.
	ticket, isNew = ResolveTicket("TC-EXISTING", now.Unix(), now)
	assert.Equal(t, "TC-EXISTING", ticket)
	assert.False(t, isNew)
}

func TestResolveTicket_ReplacesExpiredOrMissing(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	ticket, isNew := ResolveTicket("TC-OLD", now.Unix()-1, now)
	assert.True(t, isNew)
	assert.NotEqual(t, "TC-OLD", ticket)
	assert.True(t, strings.HasPrefix(ticket, TicketPrefix))

	ticket2, isNew2 := ResolveTicket("", 0, now)
	assert.True(t, isNew2)
	assert.NotEqual(t, ticket, ticket2, "replacement tickets must be unique across calls")
}

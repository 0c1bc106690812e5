package models

import "time"

// BnetAccount is the credential row read at the start of the login pipeline.
// IsBanned is derived in the query: true when an account-level ban row exists
// whose unban date is still in the future.
type BnetAccount struct {
	ID                uint32
	Email             string
	ShaPassHash       string
	FailedLogins      uint32
	LoginTicket       string
	LoginTicketExpiry int64
	IsBanned          bool
}

// GameAccountRow is one game account bound to a login ticket. The ban columns
// come from a LEFT JOIN and are nil when the account has never been banned.
type GameAccountRow struct {
	Name      string
	Expansion uint32
	BanDate   *int64
	UnbanDate *int64
	BanReason *string
}

// BanMode selects what an automatic wrong-password ban applies to.
type BanMode string

const (
	BanModeIP      BanMode = "ip"
	BanModeAccount BanMode = "account"
)

// FailedLoginUpdate describes the atomic store update for one failed password
// check: the counter increment, plus the ban row and counter reset when the
// attempt crossed the configured threshold.
type FailedLoginUpdate struct {
	AccountID   uint32
	ImposeBan   bool
	BanMode     BanMode
	BanDuration time.Duration
	IPAddress   string
}

package models

// JSON shapes exchanged with the Battle.net login client. Field names are
// part of the wire protocol and must not change.

// LoginFormType is the only form type served by this gateway.
const LoginFormType = "LOGIN_FORM"

// Authentication states reported in LoginResult.
const (
	AuthStateLogin = "LOGIN"
	AuthStateDone  = "DONE"
)

// FormInput describes one field of the static login form.
type FormInput struct {
	InputID   string `json:"input_id"`
	Type      string `json:"type"`
	Label     string `json:"label"`
	MaxLength uint32 `json:"max_length,omitempty"`
}

// FormInputs is the form descriptor served on GET /login/.
type FormInputs struct {
	Type   string      `json:"type"`
	Inputs []FormInput `json:"inputs"`
}

// FormInputValue is one submitted field of a login form.
type FormInputValue struct {
	InputID string `json:"input_id" validate:"required"`
	Value   string `json:"value"`
}

// LoginForm is the POST /login/ request body.
type LoginForm struct {
	PlatformID string           `json:"platform_id,omitempty"`
	ProgramID  string           `json:"program_id,omitempty"`
	Version    string           `json:"version,omitempty"`
	Inputs     []FormInputValue `json:"inputs" validate:"required,dive"`
}

// LoginResult is the POST /login/ response body. A failed or unknown-account
// login is reported as DONE without a ticket; the shape never reveals whether
// the account exists.
type LoginResult struct {
	AuthenticationState string `json:"authentication_state"`
	ErrorCode           string `json:"error_code,omitempty"`
	ErrorMessage        string `json:"error_message,omitempty"`
	LoginTicket         string `json:"login_ticket,omitempty"`
}

// LoginRefreshResult is the POST /refreshLoginTicket/ response body. The
// ticket itself is never echoed; the caller already holds it.
type LoginRefreshResult struct {
	LoginTicketExpiry int64 `json:"login_ticket_expiry,omitempty"`
	IsExpired         bool  `json:"is_expired,omitempty"`
}

// GameAccountInfo is one entry of the GET /gameAccounts/ response. The
// suspension fields are only present when a ban row exists for the account.
type GameAccountInfo struct {
	DisplayName       string  `json:"display_name"`
	Expansion         uint32  `json:"expansion"`
	IsSuspended       *bool   `json:"is_suspended,omitempty"`
	IsBanned          *bool   `json:"is_banned,omitempty"`
	SuspensionReason  *string `json:"suspension_reason,omitempty"`
	SuspensionExpires *int64  `json:"suspension_expires,omitempty"`
}

// GameAccountList is the GET /gameAccounts/ response body.
type GameAccountList struct {
	GameAccounts []GameAccountInfo `json:"game_accounts"`
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/coreforge/bnetrest/internal/addr"
	"github.com/coreforge/bnetrest/internal/auth"
	"github.com/coreforge/bnetrest/internal/config"
	"github.com/coreforge/bnetrest/internal/models"
	"github.com/coreforge/bnetrest/pkg/logger"
)

// AccountRepository is the store surface the login pipeline needs.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.BnetAccount, error)
	GetGameAccounts(ctx context.Context, ticket string) ([]models.GameAccountRow, error)
	GetTicketExpiry(ctx context.Context, ticket string) (int64, error)
	UpdateLoginTicket(ctx context.Context, accountID uint32, ticket string, expiry int64) error
	UpdateTicketExpiry(ctx context.Context, ticket string, expiry int64) error
	ApplyFailedLogin(ctx context.Context, upd models.FailedLoginUpdate) error
}

// LoginService implements credential checks, ticket issuance and refresh, and
// the failed-login state machine.
type LoginService struct {
	repo      AccountRepository
	addrs     *addr.Table
	login     config.LoginConfig
	wrongPass config.WrongPassConfig
	form      models.FormInputs
	logger    *slog.Logger
	audit     *logger.AuditLogger
	now       func() time.Time
}

func NewLoginService(
	repo AccountRepository,
	addrs *addr.Table,
	loginCfg config.LoginConfig,
	wrongPassCfg config.WrongPassConfig,
	log *slog.Logger,
	audit *logger.AuditLogger,
) *LoginService {
	return &LoginService{
		repo:      repo,
		addrs:     addrs,
		login:     loginCfg,
		wrongPass: wrongPassCfg,
		form: models.FormInputs{
			Type: models.LoginFormType,
			Inputs: []models.FormInput{
				{InputID: "account_name", Type: "text", Label: "E-mail", MaxLength: 320},
				{InputID: "password", Type: "password", Label: "Password", MaxLength: 16},
				{InputID: "log_in_submit", Type: "submit", Label: "Log In"},
			},
		},
		logger: log,
		audit:  audit,
		now:    time.Now,
	}
}

// FormInputs returns the static login form descriptor.
func (s *LoginService) FormInputs() models.FormInputs {
	return s.form
}

// Portal returns the "hostname:port" string a client should connect to,
// picked by its source address.
func (s *LoginService) Portal(client netip.Addr) string {
	return fmt.Sprintf("%s:%d", s.addrs.HostnameForClient(client), s.login.PortalPort)
}

// Login runs the credential check for a submitted form. Unknown accounts and
// wrong passwords produce the same DONE result without a ticket, so the
// response never reveals whether the account exists.
func (s *LoginService) Login(ctx context.Context, form *models.LoginForm, clientIP string) (*models.LoginResult, error) {
	var username, password string
	for _, input := range form.Inputs {
		switch input.InputID {
		case "account_name":
			username = input.Value
		case "password":
			password = input.Value
		}
	}

	login := auth.UpperOnlyLatin(username)

	acct, err := s.repo.GetByEmail(ctx, login)
	if errors.Is(err, models.ErrNotFound) {
		s.audit.LogLoginAttempt(logger.AuditEvent{
			EventType:     "login",
			AccountEmail:  login,
			IPAddress:     clientIP,
			Success:       false,
			FailureReason: "unknown_account",
		})
		return &models.LoginResult{AuthenticationState: models.AuthStateDone}, nil
	}
	if err != nil {
		return nil, err
	}

	if !auth.VerifyPassword(login, password, acct.ShaPassHash) {
		s.handleWrongPassword(ctx, acct, login, clientIP)
		return &models.LoginResult{AuthenticationState: models.AuthStateDone}, nil
	}

	now := s.now()
	ticket, isNew := auth.ResolveTicket(acct.LoginTicket, acct.LoginTicketExpiry, now)
	expiry := now.Add(s.login.TicketDuration).Unix()

	if err := s.repo.UpdateLoginTicket(ctx, acct.ID, ticket, expiry); err != nil {
		return nil, err
	}

	s.logger.Debug("login ticket issued",
		slog.Uint64("account_id", uint64(acct.ID)),
		slog.Bool("reused", !isNew),
	)
	s.audit.LogLoginAttempt(logger.AuditEvent{
		EventType:    "login",
		AccountEmail: login,
		IPAddress:    clientIP,
		Success:      true,
	})

	return &models.LoginResult{
		AuthenticationState: models.AuthStateDone,
		LoginTicket:         ticket,
	}, nil
}

// handleWrongPassword advances the failed-login state machine. Already-banned
// accounts are skipped entirely, and a threshold of zero disables the whole
// mechanism, counter increments included. Store failures here are logged but
// never surface to the client; the login response is identical either way.
func (s *LoginService) handleWrongPassword(ctx context.Context, acct *models.BnetAccount, login, clientIP string) {
	if acct.IsBanned {
		return
	}

	if s.wrongPass.Logging {
		s.audit.LogWrongPassword(login, acct.ID, clientIP)
	}

	if s.wrongPass.MaxCount == 0 {
		return
	}

	upd := models.FailedLoginUpdate{
		AccountID: acct.ID,
		IPAddress: clientIP,
	}
	if acct.FailedLogins+1 >= s.wrongPass.MaxCount {
		upd.ImposeBan = true
		upd.BanMode = s.wrongPass.BanMode
		upd.BanDuration = s.wrongPass.BanTime
	}

	if err := s.repo.ApplyFailedLogin(ctx, upd); err != nil {
		s.logger.Error("failed to record wrong-password attempt",
			slog.Uint64("account_id", uint64(acct.ID)),
			slog.String("error", err.Error()),
		)
		return
	}

	if upd.ImposeBan {
		target := clientIP
		if upd.BanMode == models.BanModeAccount {
			target = logger.SanitizedEmail(login)
		}
		s.audit.LogAutoBan(string(upd.BanMode), target, upd.BanDuration)
	}
}

// RefreshTicket extends a still-valid ticket by the configured duration. The
// expiry write is fire-and-forget: a store failure is logged but the client
// still receives the new expiry, matching the best-effort contract of the
// endpoint.
func (s *LoginService) RefreshTicket(ctx context.Context, ticket string) (*models.LoginRefreshResult, error) {
	expiry, err := s.repo.GetTicketExpiry(ctx, ticket)
	if errors.Is(err, models.ErrNotFound) {
		return &models.LoginRefreshResult{IsExpired: true}, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if expiry <= now.Unix() {
		return &models.LoginRefreshResult{IsExpired: true}, nil
	}

	newExpiry := now.Add(s.login.TicketDuration).Unix()
	if err := s.repo.UpdateTicketExpiry(ctx, ticket, newExpiry); err != nil {
		s.logger.Error("failed to persist refreshed ticket expiry",
			slog.String("error", err.Error()),
		)
	}

	return &models.LoginRefreshResult{LoginTicketExpiry: newExpiry}, nil
}

// GameAccounts lists the game accounts reachable through a login ticket. An
// unknown ticket yields an empty list, not an error.
func (s *LoginService) GameAccounts(ctx context.Context, ticket string) (*models.GameAccountList, error) {
	rows, err := s.repo.GetGameAccounts(ctx, ticket)
	if err != nil {
		return nil, err
	}

	now := s.now().Unix()
	list := &models.GameAccountList{
		GameAccounts: make([]models.GameAccountInfo, 0, len(rows)),
	}

	for _, row := range rows {
		info := models.GameAccountInfo{
			DisplayName: formatDisplayName(row.Name),
			Expansion:   row.Expansion,
		}
		if row.BanDate != nil && row.UnbanDate != nil {
			suspended := *row.UnbanDate > now
			// A ban with no unban date difference is permanent.
			banned := *row.BanDate == *row.UnbanDate
			info.IsSuspended = &suspended
			info.IsBanned = &banned
			info.SuspensionReason = row.BanReason
			info.SuspensionExpires = row.UnbanDate
		}
		list.GameAccounts = append(list.GameAccounts, info)
	}

	return list, nil
}

// formatDisplayName rewrites the internal "name#realmIndex" form into the
// client-facing "WoW<realmIndex>" label.
func formatDisplayName(name string) string {
	if idx := strings.IndexByte(name, '#'); idx >= 0 {
		return "WoW" + name[idx+1:]
	}
	return name
}

package handlers

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/netip"
	"testing"

	"github.com/coreforge/bnetrest/internal/models"
)

// mockLoginService lets each test wire only the calls it expects.
type mockLoginService struct {
	formInputsFn   func() models.FormInputs
	portalFn       func(client netip.Addr) string
	loginFn        func(ctx context.Context, form *models.LoginForm, clientIP string) (*models.LoginResult, error)
	refreshFn      func(ctx context.Context, ticket string) (*models.LoginRefreshResult, error)
	gameAccountsFn func(ctx context.Context, ticket string) (*models.GameAccountList, error)
}

func (m *mockLoginService) FormInputs() models.FormInputs {
	return m.formInputsFn()
}

func (m *mockLoginService) Portal(client netip.Addr) string {
	return m.portalFn(client)
}

func (m *mockLoginService) Login(ctx context.Context, form *models.LoginForm, clientIP string) (*models.LoginResult, error) {
	return m.loginFn(ctx, form, clientIP)
}

func (m *mockLoginService) RefreshTicket(ctx context.Context, ticket string) (*models.LoginRefreshResult, error) {
	return m.refreshFn(ctx, ticket)
}

func (m *mockLoginService) GameAccounts(ctx context.Context, ticket string) (*models.GameAccountList, error) {
	return m.gameAccountsFn(ctx, ticket)
}

func newTestHandler(t *testing.T, svc *mockLoginService) *LoginHandler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoginHandler(svc, log, nil)
}

// basicAuthHeader builds the Authorization value the launcher sends: the
// ticket as the username of a Basic credential pair.
func basicAuthHeader(ticket string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(ticket+":"))
}

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/coreforge/bnetrest/internal/auth"
	"github.com/coreforge/bnetrest/internal/models"
	pkghttp "github.com/coreforge/bnetrest/pkg/http"
)

// The launcher shows this text verbatim when a login body cannot be decoded.
const unableToDecodeMessage = "There was an internal error while connecting to Battle.net. Please try again later."

// LoginService is the behaviour the login endpoints need.
type LoginService interface {
	FormInputs() models.FormInputs
	Portal(client netip.Addr) string
	Login(ctx context.Context, form *models.LoginForm, clientIP string) (*models.LoginResult, error)
	RefreshTicket(ctx context.Context, ticket string) (*models.LoginRefreshResult, error)
	GameAccounts(ctx context.Context, ticket string) (*models.GameAccountList, error)
}

// LoginHandler serves the five endpoints of the login REST surface.
type LoginHandler struct {
	service  LoginService
	logger   *slog.Logger
	ipConfig *pkghttp.IPConfig
}

func NewLoginHandler(service LoginService, logger *slog.Logger, ipConfig *pkghttp.IPConfig) *LoginHandler {
	return &LoginHandler{
		service:  service,
		logger:   logger,
		ipConfig: ipConfig,
	}
}

// GetForm handles GET /login/ and serves the static form descriptor.
func (h *LoginHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.service.FormInputs())
}

// PostLogin handles POST /login/. A body that cannot be decoded gets the
// protocol's UNABLE_TO_DECODE result; a failed credential check still returns
// 200 with a DONE result carrying no ticket.
func (h *LoginHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	var form models.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.writeDecodeFailure(w)
		return
	}
	if err := ValidateRequest(&form); err != nil {
		h.writeDecodeFailure(w)
		return
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Login(r.Context(), &form, clientIP)
	if err != nil {
		h.logger.Error("login failed", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "login failed")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

func (h *LoginHandler) writeDecodeFailure(w http.ResponseWriter) {
	pkghttp.WriteJSON(w, http.StatusBadRequest, models.LoginResult{
		AuthenticationState: models.AuthStateLogin,
		ErrorCode:           "UNABLE_TO_DECODE",
		ErrorMessage:        unableToDecodeMessage,
	})
}

// GetGameAccounts handles GET /gameAccounts/. The ticket travels as the
// username of a Basic authorization header.
func (h *LoginHandler) GetGameAccounts(w http.ResponseWriter, r *http.Request) {
	ticket := auth.ExtractTicket(r.Header.Get("Authorization"))
	if ticket == "" {
		h.writeUnauthorized(w)
		return
	}

	list, err := h.service.GameAccounts(r.Context(), ticket)
	if err != nil {
		h.logger.Error("game account listing failed", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "game account listing failed")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, list)
}

// GetPortal handles GET /portal/. Unlike the rest of the surface the response
// is plain text: "hostname:port".
func (h *LoginHandler) GetPortal(w http.ResponseWriter, r *http.Request) {
	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)
	client, err := netip.ParseAddr(clientIP)
	if err != nil {
		// Unparseable source addresses get the external endpoint.
		client = netip.Addr{}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.service.Portal(client)))
}

// PostRefreshLoginTicket handles POST /refreshLoginTicket/.
func (h *LoginHandler) PostRefreshLoginTicket(w http.ResponseWriter, r *http.Request) {
	ticket := auth.ExtractTicket(r.Header.Get("Authorization"))
	if ticket == "" {
		h.writeUnauthorized(w)
		return
	}

	result, err := h.service.RefreshTicket(r.Context(), ticket)
	if err != nil {
		h.logger.Error("ticket refresh failed", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "ticket refresh failed")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

func (h *LoginHandler) writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Battle.net"`)
	pkghttp.WriteUnauthorized(w, "login ticket required")
}

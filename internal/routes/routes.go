package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/coreforge/bnetrest/internal/handlers"
	"github.com/coreforge/bnetrest/internal/middleware"
)

// RegisterRoutes wires the login REST surface. The trailing slashes are part
// of the protocol; the launcher requests the paths exactly as written here.
func RegisterRoutes(router chi.Router, loginHandler *handlers.LoginHandler) {
	rateLimitConfig := middleware.DefaultLoginRateLimit()

	router.Get("/login/", loginHandler.GetForm)
	router.Get("/gameAccounts/", loginHandler.GetGameAccounts)
	router.Get("/portal/", loginHandler.GetPortal)

	// Only the credential-bearing POSTs are rate limited; the GETs carry no
	// secrets worth brute-forcing.
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/login/", loginHandler.PostLogin)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/refreshLoginTicket/", loginHandler.PostRefreshLoginTicket)
}

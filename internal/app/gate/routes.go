// Package gate собирает HTTP-приложение: маршруты, зависимости и жизненный цикл сервера.
package gate

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accountdashboard "github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/account/dashboard"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/account/pay"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/account/unlock"
	admindashboard "github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/admin/dashboard"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/admin/grant"
	adminlogin "github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/admin/login"
	adminlogout "github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/admin/logout"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/admin/revoke"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/health"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/home"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/page"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gate/internal/metrics"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/admin"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/auth"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/premium"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

// Deps зависимости обработчиков.
type Deps struct {
	Log        *slog.Logger
	Users      middlewarectx.UserGetter
	Sessions   *session.Manager
	Auth       *auth.Service
	Premium    *premium.Service
	Admin      *admin.Authenticator
	Display    middlewarectx.Display
	PaymentURL string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	log := d.Log

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Get("/healthz", health.New().ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.Session(d.Sessions, d.Users, d.Display, log))

		r.Get("/", home.New().ServeHTTP)

		// Открытые страницы
		r.Get("/signup", page.New(log, page.Options{Title: "Sign up"}).ServeHTTP)
		r.Post("/signup", signup.New(log, d.Auth, d.Sessions).ServeHTTP)
		r.Get("/signin", page.New(log, page.Options{Title: "Sign in", RedirectSignedIn: "/app"}).ServeHTTP)
		r.Post("/signin", signin.New(log, d.Auth, d.Sessions).ServeHTTP)
		r.Post("/logout", logout.New(log, d.Sessions).ServeHTTP)

		// Группа для вошедших пользователей
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(log))
			r.Get("/app", accountdashboard.New(log).ServeHTTP)
			r.Get("/upgrade", page.New(log, page.Options{
				Title: "Upgrade",
				Extra: map[string]any{"payUrl": "/pay"},
			}).ServeHTTP)
			r.Get("/pay", pay.New(log, d.PaymentURL).ServeHTTP)
			r.Get("/payment/unlock", unlock.New(log, d.Premium, d.Sessions).ServeHTTP)
		})

		r.Get("/admin/login", page.New(log, page.Options{Title: "Admin Login"}).ServeHTTP)
		r.Post("/admin/login", adminlogin.New(log, d.Admin, d.Sessions).ServeHTTP)

		// Группа для администратора
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAdmin(log))
			r.Post("/admin/logout", adminlogout.New(log, d.Sessions).ServeHTTP)
			r.Get("/admin", admindashboard.New(log, d.Premium).ServeHTTP)
			r.Post("/admin/grant/{id}", grant.New(log, d.Premium, d.Sessions).ServeHTTP)
			r.Post("/admin/revoke/{id}", revoke.New(log, d.Premium, d.Sessions).ServeHTTP)
		})
	})
}

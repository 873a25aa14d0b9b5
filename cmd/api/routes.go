package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/josh-kwaku/bank-ledger/api"
	"github.com/josh-kwaku/bank-ledger/internal/handler"
	"github.com/josh-kwaku/bank-ledger/internal/middleware"
)

type routerDeps struct {
	jwtSecret   string
	health      *handler.HealthHandler
	clients     *handler.ClientHandler
	accounts    *handler.AccountHandler
	movements   *handler.MovementHandler
	reports     *handler.ReportHandler
	idempotency func(http.Handler) http.Handler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.OTel("bank-ledger"), middleware.Tracing, middleware.Recovery)

	r.Get("/health", d.health.Liveness)
	r.Get("/health/ready", d.health.Readiness)
	r.Get("/docs", handler.ServeDocs("/docs/openapi.yaml"))
	r.Get("/docs/openapi.yaml", handler.ServeSpec(api.Spec))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.jwtSecret), middleware.Logging)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", d.clients.List)
			r.Post("/", d.clients.Create)
			r.Get("/by-client-id/{clientId}", d.clients.GetByClientID)
			r.Get("/exists/client-id/{clientId}", d.clients.ClientIDExists)
			r.Get("/exists/identification/{identification}", d.clients.IdentificationExists)
			r.Get("/{id}", d.clients.Get)
			r.Put("/{id}", d.clients.Update)
			r.Delete("/{id}", d.clients.Delete)
			r.Get("/{id}/accounts", d.accounts.ListByClient)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", d.accounts.List)
			r.Post("/", d.accounts.Create)
			r.Get("/number/{number}", d.accounts.GetByNumber)
			r.Get("/exists/{number}", d.accounts.NumberExists)
			r.Get("/{id}", d.accounts.Get)
			r.Put("/{id}", d.accounts.Update)
			r.Delete("/{id}", d.accounts.Delete)
			r.Get("/{id}/movements", d.movements.ListByAccount)
		})

		r.Route("/movements", func(r chi.Router) {
			r.Get("/", d.movements.List)
			r.With(d.idempotency).Post("/", d.movements.Create)
			r.Get("/{id}", d.movements.Get)
			r.Put("/{id}", d.movements.Update)
			r.Delete("/{id}", d.movements.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", d.reports.Generate)
			r.Get("/html", d.reports.HTML)
			r.Get("/pdf", d.reports.PDF)
			r.Get("/pdf/base64", d.reports.PDFBase64)
		})
	})

	return r
}

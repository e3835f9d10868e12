package server

import (
	"net/http"

	"github.com/gengocodes/gensupply-backend/handlers"
	"github.com/gorilla/mux"
)

// Route describes one registered endpoint.
type Route struct {
	Name        string
	Method      string
	Path        string
	RequireUser bool
	Handler     http.HandlerFunc
}

// Handlers groups everything NewRouter wires together.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Supply        *handlers.SupplyHandler
	Health        *handlers.HealthHandler
	Middleware    *handlers.AuthMiddleware
	AllowedOrigin string
}

func routes(h Handlers) []Route {
	return []Route{
		{Name: "HealthCheck", Method: http.MethodGet, Path: "/health", Handler: h.Health.Check},

		{Name: "Register", Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
		{Name: "Login", Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
		{Name: "Logout", Method: http.MethodGet, Path: "/logout", Handler: h.Auth.Logout},
		{Name: "UpdateName", Method: http.MethodPost, Path: "/updatename", RequireUser: true, Handler: h.Auth.UpdateName},
		{Name: "Me", Method: http.MethodGet, Path: "/", RequireUser: true, Handler: h.Auth.Me},

		{Name: "ListSupplies", Method: http.MethodGet, Path: "/supply", RequireUser: true, Handler: h.Supply.List},
		{Name: "CreateSupply", Method: http.MethodPost, Path: "/supply/create", RequireUser: true, Handler: h.Supply.Create},
		{Name: "UpdateSupply", Method: http.MethodPut, Path: "/supply/update/{id}", RequireUser: true, Handler: h.Supply.Update},
		{Name: "DeleteSupply", Method: http.MethodDelete, Path: "/supply/delete/{id}", RequireUser: true, Handler: h.Supply.Delete},
	}
}

// NewRouter registers every route and wraps the router with CSRF and CORS.
func NewRouter(h Handlers) http.Handler {
	router := mux.NewRouter()

	for _, route := range routes(h) {
		var handler http.Handler = route.Handler
		if route.RequireUser {
			handler = h.Middleware.RequireUser(handler)
		}
		router.Handle(route.Path, handler).Methods(route.Method).Name(route.Name)
	}

	return handlers.CORS(h.AllowedOrigin, handlers.CSRF(h.AllowedOrigin, router))
}

package handlers

import (
	"net/http"

	"github.com/haulbase/haulbase/internal/middleware"
	"github.com/haulbase/haulbase/internal/models"
)

// Handlers bundles the HTTP handlers for route registration.
type Handlers struct {
	Assets        *AssetHandler
	Trips         *TripHandler
	Documents     *DocumentHandler
	Subscriptions *SubscriptionHandler
	Users         *UserHandler
	Brokers       *BrokerHandler
}

// NewMux registers all routes behind the CORS and authentication
// middleware. The health endpoint stays unauthenticated.
func NewMux(h Handlers, authMW *middleware.AuthMiddleware, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	dispatch := authMW.RequireRole(models.RoleDispatcher, models.RoleCarrier)
	owner := authMW.RequireRole(models.RoleTruckOwner, models.RoleDispatcher, models.RoleCarrier)

	// Trucks and trailers share the registry; routes differ by kind.
	mux.Handle("POST /api/trucks", dispatch(h.Assets.Create(models.KindTruck)))
	mux.Handle("POST /api/trucks/register", owner(h.Assets.Register(models.KindTruck)))
	mux.Handle("GET /api/trucks/{id}", h.Assets.Get(models.KindTruck))
	mux.Handle("PUT /api/trucks/{id}", dispatch(h.Assets.Update(models.KindTruck)))
	mux.Handle("POST /api/trucks/{id}/deactivate", dispatch(h.Assets.Deactivate(models.KindTruck)))
	mux.Handle("POST /api/trucks/{id}/reactivate", dispatch(h.Assets.Reactivate(models.KindTruck)))

	mux.Handle("POST /api/trailers", dispatch(h.Assets.Create(models.KindTrailer)))
	mux.Handle("POST /api/trailers/register", owner(h.Assets.Register(models.KindTrailer)))
	mux.Handle("GET /api/trailers/{id}", h.Assets.Get(models.KindTrailer))
	mux.Handle("PUT /api/trailers/{id}", dispatch(h.Assets.Update(models.KindTrailer)))
	mux.Handle("POST /api/trailers/{id}/deactivate", dispatch(h.Assets.Deactivate(models.KindTrailer)))
	mux.Handle("POST /api/trailers/{id}/reactivate", dispatch(h.Assets.Reactivate(models.KindTrailer)))

	mux.HandleFunc("GET /api/assets", h.Assets.List)

	mux.Handle("POST /api/trips", dispatch(http.HandlerFunc(h.Trips.Create)))
	mux.HandleFunc("GET /api/trips", h.Trips.List)
	mux.HandleFunc("GET /api/trips/{id}", h.Trips.Get)
	mux.HandleFunc("PUT /api/trips/{id}/status", h.Trips.UpdateStatus)
	mux.Handle("PATCH /api/trips/{id}/financials", dispatch(http.HandlerFunc(h.Trips.UpdateFinancials)))

	mux.Handle("POST /api/users", dispatch(http.HandlerFunc(h.Users.Create)))
	mux.HandleFunc("GET /api/users", h.Users.List)
	mux.HandleFunc("GET /api/users/{id}", h.Users.Get)
	mux.Handle("POST /api/users/{id}/deactivate", dispatch(http.HandlerFunc(h.Users.Deactivate)))
	mux.HandleFunc("POST /api/users/placeholder", h.Subscriptions.CreatePlaceholder)

	mux.Handle("POST /api/brokers", dispatch(http.HandlerFunc(h.Brokers.Create)))
	mux.HandleFunc("GET /api/brokers", h.Brokers.List)
	mux.HandleFunc("GET /api/brokers/{id}", h.Brokers.Get)

	mux.HandleFunc("GET /api/subscriptions", h.Subscriptions.Get)
	mux.HandleFunc("PATCH /api/subscriptions", h.Subscriptions.Update)
	mux.HandleFunc("POST /api/entities/resolve", h.Subscriptions.Resolve)

	mux.HandleFunc("POST /api/documents", h.Documents.Upload)
	mux.HandleFunc("POST /api/documents/batch", h.Documents.BatchUpload)
	mux.HandleFunc("POST /api/documents/presign", h.Documents.PresignUpload)
	mux.HandleFunc("GET /api/documents/{entityType}/{entityId}", h.Documents.List)
	mux.HandleFunc("DELETE /api/documents/{entityType}/{entityId}/{id}", h.Documents.Delete)
	mux.HandleFunc("GET /api/documents/{entityType}/{entityId}/{id}/view", h.Documents.ViewURL)
	mux.HandleFunc("GET /api/documents/{entityType}/{entityId}/{id}/download", h.Documents.DownloadURL)

	mux.HandleFunc("POST /api/notes/{entityType}/{entityId}", h.Documents.CreateNote)
	mux.HandleFunc("GET /api/notes/{entityType}/{entityId}/{id}", h.Documents.GetNote)

	return middleware.CORS(allowedOrigins)(authMW.Authenticate(mux))
}

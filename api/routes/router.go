package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tableserve/pos-backend/api/controllers"
	"github.com/tableserve/pos-backend/api/middleware"
	"github.com/tableserve/pos-backend/internal/register"
	"github.com/tableserve/pos-backend/pkg/config"
	"github.com/tableserve/pos-backend/pkg/instance"
	"github.com/tableserve/pos-backend/pkg/logger"
)

func NewRouter(cfg *config.Config, logg *logger.Logger, registerSvc register.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Terminal(instance.GetID(), logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", controllers.Health(cfg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ListProducts(registerSvc, logg))
			r.Get("/addons", controllers.ListAddons(registerSvc, logg))
			r.Post("/reload", controllers.ReloadCatalog(registerSvc, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Post("/adjustments", controllers.AdjustStock(registerSvc, logg))
			r.Post("/commit", controllers.CommitStock(registerSvc, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(registerSvc, logg))
			r.Delete("/", controllers.CartClear(registerSvc, logg))
			r.Post("/products", controllers.CartAddProduct(registerSvc, logg))
			r.Post("/addons", controllers.CartAttachAddon(registerSvc, logg))
			r.Delete("/lines/last", controllers.CartRemoveLastLine(registerSvc, logg))
			r.Delete("/groups/{index}", controllers.CartRemoveGroup(registerSvc, logg))
			r.Delete("/groups/{index}/addons/{addonIndex}", controllers.CartRemoveAddon(registerSvc, logg))
			r.Get("/receipt", controllers.CartReceipt(registerSvc, logg))
		})

		r.Post("/kitchen/send", controllers.KitchenSend(registerSvc, logg))
		r.Post("/checkout", controllers.Checkout(registerSvc, logg))

		r.Route("/holds", func(r chi.Router) {
			r.Get("/", controllers.ListHolds(registerSvc, logg))
			r.Post("/", controllers.CreateHold(registerSvc, logg))
			r.Delete("/{holdId}", controllers.CancelHold(registerSvc, logg))
			r.Post("/{holdId}/resume", controllers.ResumeHold(registerSvc, logg))
		})

		r.Get("/orders/next-number", controllers.NextOrderNumber(registerSvc, logg))
	})

	return r
}

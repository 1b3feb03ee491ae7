package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bodefavour/skyflo-store-sub000/internal/cart"
	"github.com/bodefavour/skyflo-store-sub000/internal/catalog"
	"github.com/bodefavour/skyflo-store-sub000/internal/checkout"
	"github.com/bodefavour/skyflo-store-sub000/internal/currency"
	"github.com/bodefavour/skyflo-store-sub000/internal/wishlist"
)

type Deps struct {
	Catalog        catalog.Repository
	Carts          *cart.Store
	Wishlists      *wishlist.Store
	Currency       *currency.Service
	Checkout       *checkout.Service
	RequestTimeout time.Duration
}

func NewRouter(deps Deps) http.Handler {
	products := NewProductHandler(deps.Catalog)
	carts := NewCartHandler(deps.Carts, deps.Catalog, deps.Currency)
	wishlists := NewWishlistHandler(deps.Wishlists, deps.Catalog)
	prefs := NewPreferencesHandler(deps.Currency)
	orders := NewCheckoutHandler(deps.Checkout)
	admin := NewAdminHandler(deps.Catalog)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/{id}", products.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.Get)
			r.Delete("/", carts.Clear)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{product_id}", carts.UpdateQuantity)
			r.Delete("/items/{product_id}", carts.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlists.Get)
			r.Delete("/", wishlists.Clear)
			r.Post("/toggle", wishlists.Toggle)
			r.Delete("/{product_id}", wishlists.Remove)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", prefs.Get)
			r.Put("/", prefs.Update)
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", prefs.Rates)
			r.Post("/refresh", prefs.RefreshRates)
		})

		r.Post("/checkout", orders.PlaceOrder)

		r.Route("/admin/products", func(r chi.Router) {
			r.Post("/", admin.CreateProduct)
			r.Put("/{id}", admin.UpdateProduct)
			r.Delete("/{id}", admin.DeleteProduct)
		})
	})

	return r
}

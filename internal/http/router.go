package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/mimasafoods/storefront/internal/cart"
	"github.com/mimasafoods/storefront/internal/cartconfig"
	"github.com/mimasafoods/storefront/internal/catalog"
	"github.com/mimasafoods/storefront/internal/order"
	"github.com/mimasafoods/storefront/internal/pricing"
)

type RouterConfig struct {
	Products   catalog.Repository
	Carts      cart.Repository
	Config     cartconfig.Repository
	Provider   *cartconfig.Provider
	Resolver   *pricing.Resolver
	Orders     order.Repository
	Checkout   CheckoutService
	AdminToken string
	Logger     *log.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler)

	ph := NewProductHandler(cfg.Products)
	mux.HandleFunc("GET /api/products", ph.ListProducts)
	mux.HandleFunc("GET /api/products/{productId}", ph.GetProduct)

	ch := NewCartHandler(cfg.Carts, cfg.Resolver)
	mux.HandleFunc("GET /api/cart", ch.GetCart)
	mux.HandleFunc("POST /api/cart/items", ch.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{itemId}", ch.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{itemId}", ch.RemoveItem)

	kh := NewCheckoutHandler(cfg.Checkout, cfg.Logger)
	mux.HandleFunc("POST /api/checkout", kh.Begin)
	mux.HandleFunc("POST /api/checkout/cancel", kh.Cancel)
	mux.HandleFunc("POST /api/checkout/verify", kh.Verify)

	oh := NewOrderHandler(cfg.Orders)
	mux.HandleFunc("GET /api/orders/{orderNumber}", oh.GetOrder)

	ah := NewAdminHandler(cfg.Orders, cfg.Products, cfg.Config, cfg.Provider)
	admin := requireAdmin(cfg.AdminToken)
	mux.Handle("GET /api/admin/products", admin(http.HandlerFunc(ah.ListProducts)))
	mux.Handle("GET /api/admin/orders", admin(http.HandlerFunc(ah.ListOrders)))
	mux.Handle("PATCH /api/admin/orders/{orderId}/status", admin(http.HandlerFunc(ah.UpdateOrderStatus)))
	mux.Handle("GET /api/admin/config", admin(http.HandlerFunc(ah.ListConfig)))
	mux.Handle("PUT /api/admin/config/{name}", admin(http.HandlerFunc(ah.PutConfig)))

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sessionID extracts the anonymous cart session from the request. The
// frontend generates it once and sends it on every cart and checkout call.
func sessionID(r *http.Request) string {
	return r.Header.Get("X-Session-ID")
}

func requireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Header.Get("X-Admin-Token") != token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

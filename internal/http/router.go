package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/vending/products", app.productsHandler)
	mux.HandleFunc("/api/vending/products/", app.productItemHandler)
	mux.HandleFunc("/api/vending/coins", app.insertCoinHandler)
	mux.HandleFunc("/api/vending/coins/return", app.returnCoinsHandler)
	mux.HandleFunc("/api/vending/coins/total", app.totalInsertedHandler)
	mux.HandleFunc("/api/vending/state/balance", app.balanceHandler)
	mux.HandleFunc("/api/vending/state/change", app.reserveHandler)
	mux.HandleFunc("/api/vending/state/inserted-coins", app.insertedCoinsHandler)
	mux.HandleFunc("/api/vending/state/reserve/reset", app.resetReserveHandler)
	mux.HandleFunc("/healthz", app.healthHandler)
	mux.HandleFunc("/debug/metrics", app.metricsHandler)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/openapi.yaml", app.openapiHandler)
	mux.HandleFunc("/docs", app.docsHandler)
	return WithRequestID(WithLogging(mux))
}

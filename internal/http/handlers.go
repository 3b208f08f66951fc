package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/vending-machine-service/internal/coin"
	"github.com/fairyhunter13/vending-machine-service/internal/config"
	httpopenapi "github.com/fairyhunter13/vending-machine-service/internal/http/openapi"
	"github.com/fairyhunter13/vending-machine-service/internal/journal"
	"github.com/fairyhunter13/vending-machine-service/internal/model"
	"github.com/fairyhunter13/vending-machine-service/internal/vending"
)

type App struct {
	Cfg     config.Config
	Svc     *vending.Service
	Journal *journal.Manager
	started time.Time
}

func NewApp(cfg config.Config, svc *vending.Service, m *journal.Manager) *App {
	return &App{Cfg: cfg, Svc: svc, Journal: m, started: time.Now()}
}

// StartShutdown closes the journal intake ahead of server shutdown.
func (a *App) StartShutdown() {
	if a.Journal != nil {
		a.Journal.CloseIntake()
	}
}

// decodeStrict decodes a JSON body rejecting unknown fields. It writes the
// error response itself and reports whether decoding succeeded.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type addProductRequest struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

func (a *App) productsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.Svc.ListProducts()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, products)
	case http.MethodPost:
		var req addProductRequest
		if !decodeStrict(w, r, &req) {
			return
		}
		p, err := a.Svc.AddProduct(model.Product{Name: req.Name, Price: req.Price, Quantity: req.Quantity})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

// productItemHandler serves /api/vending/products/{id} and
// /api/vending/products/{id}/buy.
func (a *App) productItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/vending/products/")
	if rest == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if id, ok := strings.CutSuffix(rest, "/buy"); ok {
		if r.Method != http.MethodPost {
			WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
			return
		}
		change, err := a.Svc.Buy(id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, change)
		return
	}
	if strings.Contains(rest, "/") {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodPut:
		var patch model.ProductPatch
		if !decodeStrict(w, r, &patch) {
			return
		}
		p, err := a.Svc.UpdateProduct(rest, patch)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := a.Svc.RemoveProduct(rest); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

type insertCoinRequest struct {
	Coin string `json:"coin"`
}

func (a *App) insertCoinHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var req insertCoinRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	d, err := coin.Parse(req.Coin)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := a.Svc.InsertCoin(d); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"coin": d, "total": a.Svc.InsertedTotal()})
}

func (a *App) returnCoinsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, a.Svc.ReturnCoins())
}

func (a *App) totalInsertedHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": a.Svc.InsertedTotal()})
}

func (a *App) balanceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": a.Svc.ReserveBalance()})
}

func (a *App) reserveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, a.Svc.ReserveBreakdown())
}

func (a *App) insertedCoinsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, a.Svc.InsertedCoins())
}

func (a *App) resetReserveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	a.Svc.ResetReserve()
	writeJSON(w, http.StatusOK, map[string]string{"balance": a.Svc.ReserveBalance()})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"uptime_sec": time.Since(a.started).Seconds(),
	}
	if a.Journal != nil {
		enq, proc, backlog, depth := a.Journal.QueueMetrics()
		m["journal_enqueued"] = enq
		m["journal_processed"] = proc
		m["journal_backlog"] = backlog
		m["journal_depth"] = depth
		m["worker_count"] = a.Journal.WorkerCount()
		for k, v := range a.Journal.StatsSnapshot() {
			m[k] = v
		}
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}

package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negobi/negobi-gateway/internal/inventory/handler"
	"github.com/negobi/negobi-gateway/internal/inventory/repository"
	"github.com/negobi/negobi-gateway/internal/inventory/service"
	"github.com/negobi/negobi-gateway/pkg/config"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/httputil"
	"github.com/negobi/negobi-gateway/pkg/logger"
	"github.com/negobi/negobi-gateway/pkg/saga"
)

func newStockRouter(t *testing.T, upstream http.Handler) *chi.Mux {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	log := logger.New("test", "test")
	client := erp.NewClient(&config.UpstreamConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		PageSize:       50,
	}, log)
	svc := service.NewStockService(repository.NewStockRepository(client), saga.NewRunner(log), log)
	h := handler.NewStockHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/stock-by-warehouse", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/low", h.Low)
		r.Post("/transfers", h.Transfer)
		r.Get("/{id}", h.Get)
	})
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestStockGet_AnnotatesAnalysis(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stock-by-warehouse/3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    repository.StockRecord{ID: 3, Stock: 5, MinStock: 10},
		})
	})

	router := newStockRouter(t, mux)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stock-by-warehouse/3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var item service.StockItem
	require.NoError(t, json.Unmarshal(data, &item))
	assert.Equal(t, service.StockLevelLow, item.Analysis.StockLevel)
	assert.True(t, item.Analysis.NeedsReplenishment)
}

func TestStockGet_BadID(t *testing.T) {
	router := newStockRouter(t, http.NewServeMux())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stock-by-warehouse/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}

func TestStockTransfer_ValidatesBody(t *testing.T) {
	router := newStockRouter(t, http.NewServeMux())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock-by-warehouse/transfers",
		strings.NewReader(`{"from_id":1,"to_id":2}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "Quantity")
}

func TestStockTransfer_EndToEnd(t *testing.T) {
	stocks := map[string]float64{"1": 100, "2": 10}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stock-by-warehouse/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    repository.StockRecord{Stock: stocks[r.PathValue("id")]},
		})
	})
	mux.HandleFunc("PATCH /stock-by-warehouse/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		stocks[r.PathValue("id")] = body["stock"]
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    repository.StockRecord{Stock: body["stock"]},
		})
	})

	router := newStockRouter(t, mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock-by-warehouse/transfers",
		strings.NewReader(`{"from_id":1,"to_id":2,"quantity":40}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 60.0, stocks["1"])
	assert.Equal(t, 50.0, stocks["2"])
}

func TestStockLow_ListsOnlyLowRows(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stock-by-warehouse", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]repository.StockRecord{
			{ID: 1, Stock: 2, MinStock: 10},
			{ID: 2, Stock: 500},
		})
	})

	router := newStockRouter(t, mux)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stock-by-warehouse/low", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	items, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

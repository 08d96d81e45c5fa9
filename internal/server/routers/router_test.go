package routers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"oip/ratesync/internal/business/engine"
	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/domains/common/job"
	"oip/ratesync/internal/server/ginx"
	"oip/ratesync/internal/server/handlers/rate"
	"oip/ratesync/internal/server/middlewares"
	"oip/ratesync/pkg/logger"
)

type envelope struct {
	Meta ginx.Meta       `json:"meta"`
	Data json.RawMessage `json:"data"`
}

type fakeJobs struct {
	mu    sync.Mutex
	queue string
	jobs  []*job.Job
}

func (f *fakeJobs) PublishJSON(queue string, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = queue
	f.jobs = append(f.jobs, v.(*job.Job))
	return nil
}

func newTestRouter(jobs rate.JobPublisher, jobQueue string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logger.NewNopLogger()
	primary := engine.NewMockEngine(engine.MockConfig{Name: "primary", Carriers: []string{"fedex"}})
	legacy := engine.NewMockEngine(engine.MockConfig{Name: "legacy"})
	svc := rating.NewService(primary, legacy, log)

	h := rate.NewRateHandler(svc, engine.NewStaticCatalog([]string{"fedex", "ups"}), jobs, nil, rate.Options{
		DefaultTimeout: 2 * time.Second,
		JobQueue:       jobQueue,
		CallbackQueue:  "rate_quote_callback",
	}, log)
	return SetupRoutes(h, log)
}

func shipment(destPostal string) map[string]interface{} {
	return map[string]interface{}{
		"shipment_type": "courier",
		"origin":        map[string]interface{}{"postal_code": "M5V 2T6"},
		"destination":   map[string]interface{}{"postal_code": destPostal},
		"packages":      []interface{}{map[string]interface{}{"weight": 4, "length": 10, "width": 8, "height": 6}},
	}
}

func doJSON(t *testing.T, r http.Handler, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(nil, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middlewares.RequestIDHeader, "trace-123")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "trace-123", w.Header().Get(middlewares.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestValidateEndpoint(t *testing.T) {
	r := newTestRouter(nil, "")

	w, env := doJSON(t, r, "/api/v1/rates/validate", rate.ShipmentBody{Shipment: shipment("V6B 1A1")})
	require.Equal(t, http.StatusOK, w.Code)
	var ok rate.ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &ok))
	require.True(t, ok.IsValid)
	require.Equal(t, "V6B 1A1", ok.Request.Destination.PostalCode)

	w, env = doJSON(t, r, "/api/v1/rates/validate", rate.ShipmentBody{Shipment: shipment("")})
	require.Equal(t, http.StatusOK, w.Code)
	var bad rate.ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &bad))
	require.False(t, bad.IsValid)
	require.NotEmpty(t, bad.Errors)

	w, _ = doJSON(t, r, "/api/v1/rates/validate", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteEndpoint(t *testing.T) {
	r := newTestRouter(nil, "")

	w, env := doJSON(t, r, "/api/v1/rates/quote", rate.QuoteRequest{Shipment: shipment("V6B 1A1")})
	require.Equal(t, http.StatusOK, w.Code)

	var res rating.QuoteResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, 2, res.Aggregation.TotalRequested)
	require.Equal(t, 2, res.Aggregation.SuccessCount)
	require.NotNil(t, res.Selection.Recommended)
}

func TestQuoteEndpointErrors(t *testing.T) {
	r := newTestRouter(nil, "")

	w, env := doJSON(t, r, "/api/v1/rates/quote", rate.QuoteRequest{
		CarrierIDs: []string{"nope"},
		Shipment:   shipment("V6B 1A1"),
	})
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	require.Len(t, env.Meta.Details, 1)
	require.Equal(t, "nope", env.Meta.Details[0].Path)

	w, env = doJSON(t, r, "/api/v1/rates/quote", rate.QuoteRequest{
		CarrierIDs: []string{"fedex"},
		Shipment:   shipment(" "),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, w.Header().Get("Retry-After"))
	require.NotEmpty(t, env.Meta.Details)
	require.Equal(t, "destination.postal_code", env.Meta.Details[0].Path)
}

func TestRateCarrierEndpoint(t *testing.T) {
	r := newTestRouter(nil, "")

	w, env := doJSON(t, r, "/api/v1/rates/carriers/ups", rate.ShipmentBody{Shipment: shipment("V6B 1A1")})
	require.Equal(t, http.StatusOK, w.Code)
	var q rating.NormalizedQuote
	require.NoError(t, json.Unmarshal(env.Data, &q))
	require.Equal(t, "ups", q.CarrierID)
	require.Equal(t, rating.SourceLegacy, q.SourceEngine)

	w, _ = doJSON(t, r, "/api/v1/rates/carriers/nope", rate.ShipmentBody{Shipment: shipment("V6B 1A1")})
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSubmitJobEndpoint(t *testing.T) {
	jobs := &fakeJobs{}
	r := newTestRouter(jobs, "rate_quote")

	w, env := doJSON(t, r, "/api/v1/rates/jobs?wait=5", rate.QuoteRequest{
		CarrierIDs: []string{"fedex"},
		Shipment:   shipment("V6B 1A1"),
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, ginx.CodeProcessing, env.Meta.Code)

	var data ginx.ProcessingData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.RequestID)

	require.Equal(t, "rate_quote", jobs.queue)
	require.Len(t, jobs.jobs, 1)
	payload := jobs.jobs[0].Payload.Data
	require.Equal(t, job.ActionRateQuote, payload.ActionType)
	require.Equal(t, data.RequestID, payload.RequestID)

	var bizData job.RateQuoteData
	require.NoError(t, json.Unmarshal(payload.Data, &bizData))
	require.Equal(t, []string{"fedex"}, bizData.CarrierIDs)
	require.Equal(t, "rate_quote_callback", bizData.CallbackQueue)
}

func TestSubmitJobDisabled(t *testing.T) {
	r := newTestRouter(nil, "")

	w, _ := doJSON(t, r, "/api/v1/rates/jobs", rate.QuoteRequest{Shipment: shipment("V6B 1A1")})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

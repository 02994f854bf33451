package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/ledgerline/invoicer/internal/auth/domain"
	authrepo "github.com/ledgerline/invoicer/internal/auth/repository"
	authservice "github.com/ledgerline/invoicer/internal/auth/service"
	"github.com/ledgerline/invoicer/internal/config"
	customerdomain "github.com/ledgerline/invoicer/internal/customer/domain"
	customerrepo "github.com/ledgerline/invoicer/internal/customer/repository"
	customerservice "github.com/ledgerline/invoicer/internal/customer/service"
	invoicedomain "github.com/ledgerline/invoicer/internal/invoice/domain"
	invoicerepo "github.com/ledgerline/invoicer/internal/invoice/repository"
	invoiceservice "github.com/ledgerline/invoicer/internal/invoice/service"
	"github.com/ledgerline/invoicer/internal/observability"
	obsmetrics "github.com/ledgerline/invoicer/internal/observability/metrics"
	"github.com/ledgerline/invoicer/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&authdomain.User{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceRow{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		HTTPAddr:           ":0",
		JWTSecret:          "test-secret",
		JWTIssuer:          "invoicer",
		JWTAudience:        "invoicer-api",
		AccessTokenMinutes: 15,
		RefreshTokenDays:   7,
	}

	log := zap.NewNop()
	users := authrepo.New(conn)
	authsvc := authservice.New(authservice.Params{Cfg: cfg, Log: log, GenID: node, Repo: users})
	customerSvc := customerservice.New(customerservice.Params{
		DB: conn, Log: log, GenID: node, Repo: customerrepo.Provide(), Users: users,
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB: conn, Log: log, GenID: node, Repo: invoicerepo.Provide(), Customers: customerrepo.Provide(),
	})

	engine := NewEngine(observability.Config{ServiceName: "test"}, testMetrics(t))
	return NewServer(ServerParams{
		Gin:         engine,
		Cfg:         cfg,
		DB:          conn,
		GenID:       node,
		Authsvc:     authsvc,
		CustomerSvc: customerSvc,
		InvoiceSvc:  invoiceSvc,
	})
}

var sharedMetrics *obsmetrics.HTTPMetrics

// The default prometheus registry rejects duplicate registration, so the test
// instruments are created once per process.
func testMetrics(t *testing.T) *obsmetrics.HTTPMetrics {
	t.Helper()
	if sharedMetrics == nil {
		m, err := obsmetrics.NewHTTPMetrics()
		require.NoError(t, err)
		sharedMetrics = m
	}
	return sharedMetrics
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	return envelope.Data
}

type noopShutdowner struct{}

func (noopShutdowner) Shutdown(...fx.ShutdownOption) error { return nil }

func TestRunLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	lc := fxtest.NewLifecycle(t)
	run(lc, gin.New(), config.Config{HTTPAddr: "127.0.0.1:0"}, zap.NewNop(), noopShutdowner{})
	require.NoError(t, lc.Start(ctx))
	require.NoError(t, lc.Stop(ctx))

	// An occupied port fails the start hook instead of killing the process
	// from the serve goroutine.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	busy := fxtest.NewLifecycle(t)
	run(busy, gin.New(), config.Config{HTTPAddr: ln.Addr().String()}, zap.NewNop(), noopShutdowner{})
	assert.Error(t, busy.Start(ctx))
}

func TestHTTPFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Protected routes reject missing tokens.
	rec = doJSON(t, s, http.MethodGet, "/api/customer/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Jordan",
		"email":    "jordan@test.local",
		"password": "Sup3rsafe",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := decodeData(t, rec)["accessToken"].(string)
	require.NotEmpty(t, token)

	rec = doJSON(t, s, http.MethodPost, "/api/customer", token, map[string]any{
		"name":  "Acme",
		"email": "billing@acme.test",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customerID, _ := decodeData(t, rec)["id"].(string)
	require.NotEmpty(t, customerID)

	now := time.Now().UTC()
	rec = doJSON(t, s, http.MethodPost, "/api/invoice", token, map[string]any{
		"customerId": customerID,
		"startDate":  now.Add(-48 * time.Hour).Format(time.RFC3339),
		"endDate":    now.Add(-24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invoiceID, _ := decodeData(t, rec)["id"].(string)
	require.NotEmpty(t, invoiceID)

	rec = doJSON(t, s, http.MethodPost, "/api/invoicerow", token, map[string]any{
		"invoiceId": invoiceID,
		"service":   "consulting",
		"quantity":  "2",
		"rate":      "50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/invoice/"+invoiceID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	total := fmt.Sprintf("%v", decodeData(t, rec)["totalSum"])
	assert.Equal(t, "100", total)

	// Lifecycle gate surfaces as a conflict.
	rec = doJSON(t, s, http.MethodPatch, "/api/invoice/"+invoiceID, token, map[string]any{
		"status": "sent",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodDelete, "/api/invoice/hard/"+invoiceID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	// Unknown ids map to 404, malformed ids to 400.
	rec = doJSON(t, s, http.MethodGet, "/api/invoice/123456789", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/invoice/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Referential guard on invoice creation.
	rec = doJSON(t, s, http.MethodPost, "/api/invoice", token, map[string]any{
		"customerId": "987654321",
		"startDate":  now.Add(-48 * time.Hour).Format(time.RFC3339),
		"endDate":    now.Add(-24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	// Paged listing carries the envelope counts.
	rec = doJSON(t, s, http.MethodGet, "/api/invoice?page=1&pageSize=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.EqualValues(t, 1, data["totalCount"])
	assert.EqualValues(t, 1, data["totalPages"])
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/engine"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/ledger"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/storage/memory"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	accountLedger := ledger.NewAccountLedger(memory.NewStore(), "treasury", zerolog.Nop())
	require.NoError(t, accountLedger.Deposit(t.Context(), "treasury", decimal.NewFromInt(10000)))

	eng, err := engine.New(engine.Config{
		Admin:     "admin",
		Signers:   []models.Identity{"s1", "s2", "s3"},
		Threshold: 2,
		Ledger:    accountLedger,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	router := mux.NewRouter()
	NewAPI(eng, zerolog.Nop()).Register(router)
	return router
}

func do(t *testing.T, router *mux.Router, method, path, principal, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if principal != "" {
		req.Header.Set(principalHeader, principal)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, "GET", "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProposeEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("missing principal", func(t *testing.T) {
		rec := do(t, router, "POST", "/transactions", "", `{"recipient":"alice","value":100}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-signer forbidden", func(t *testing.T) {
		rec := do(t, router, "POST", "/transactions", "mallory", `{"recipient":"alice","value":100}`)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, router, "POST", "/transactions", "s1", `{`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("value above balance", func(t *testing.T) {
		rec := do(t, router, "POST", "/transactions", "s1", `{"recipient":"alice","value":10001}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		rec := do(t, router, "POST", "/transactions", "s1", `{"recipient":"alice","value":100}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]uint64
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, uint64(0), resp["index"])
	})
}

func TestTransactionLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, "POST", "/transactions", "s1", `{"recipient":"alice","value":500}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// below threshold
	rec = do(t, router, "POST", "/transactions/0/confirm", "s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, "POST", "/transactions/0/execute", "s1", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	// double confirm conflicts
	rec = do(t, router, "POST", "/transactions/0/confirm", "s1", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	// reach the threshold and execute
	rec = do(t, router, "POST", "/transactions/0/confirm", "s2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, "POST", "/transactions/0/execute", "s2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// terminal state
	rec = do(t, router, "POST", "/transactions/0/execute", "s1", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, "GET", "/transactions/0", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tx models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	require.True(t, tx.Executed)
	require.Equal(t, 2, tx.Confirmations)

	rec = do(t, router, "GET", "/transactions/0/confirmations", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTransactionLookupErrors(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, "GET", "/transactions/99", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, "GET", "/transactions/abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, "POST", "/transactions/99/confirm", "s1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignerEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("admin only", func(t *testing.T) {
		rec := do(t, router, "POST", "/signers", "s1", `{"identity":"s4"}`)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("add and remove", func(t *testing.T) {
		rec := do(t, router, "POST", "/signers", "admin", `{"identity":"s4"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = do(t, router, "DELETE", "/signers/s4", "admin", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("duplicate add conflicts", func(t *testing.T) {
		rec := do(t, router, "POST", "/signers", "admin", `{"identity":"s1"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("removal below threshold rejected", func(t *testing.T) {
		rec := do(t, router, "DELETE", "/signers/s3", "admin", "")
		require.Equal(t, http.StatusOK, rec.Code)
		// 2 signers left, threshold 2
		rec = do(t, router, "DELETE", "/signers/s2", "admin", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("threshold update", func(t *testing.T) {
		rec := do(t, router, "PUT", "/threshold", "admin", `{"threshold":1}`)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = do(t, router, "PUT", "/threshold", "admin", `{"threshold":9}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := do(t, router, "GET", "/signers", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

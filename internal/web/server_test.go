package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/lockdrop/internal/contract"
	"github.com/elys-network/lockdrop/internal/service"
	"github.com/elys-network/lockdrop/internal/state"
	"github.com/elys-network/lockdrop/internal/types"
)

type fakeBackend struct {
	sender    string
	funds     []sdk.Coin
	raw       []byte
	execErr   error
	queryResp any
	healthy   bool
}

func (f *fakeBackend) Execute(_ context.Context, sender string, funds []sdk.Coin, raw []byte) (*service.Result, error) {
	f.sender, f.funds, f.raw = sender, funds, raw
	if f.execErr != nil {
		return nil, f.execErr
	}
	return &service.Result{OperationID: "op-1", Commit: 4, Height: 12, Response: types.NewResponse("stake")}, nil
}

func (f *fakeBackend) Query(_ context.Context, raw []byte) (any, error) {
	f.raw = raw
	return f.queryResp, nil
}

func (f *fakeBackend) Status(context.Context) service.Status {
	return service.Status{Healthy: f.healthy, Height: 12, LastCommit: 4}
}

type fakeOperations struct{}

func (fakeOperations) RecentOperations(limit int) ([]state.OperationRecord, error) {
	return []state.OperationRecord{{OperationID: "op-1", Action: "stake", Success: true}}, nil
}

func (fakeOperations) UnemittedOperations(limit int) ([]state.OperationRecord, error) {
	return []state.OperationRecord{{OperationID: "op-2", Action: "claim", Success: true}}, nil
}

func (fakeOperations) OperationByID(id string) (*state.OperationRecord, error) {
	if id != "op-1" {
		return nil, errors.New("not found")
	}
	return &state.OperationRecord{OperationID: id, Action: "stake"}, nil
}

func (fakeOperations) OperationSummary() (*state.OperationSummary, error) {
	return &state.OperationSummary{TotalOperations: 1, Successful: 1, ByAction: map[string]int{"stake": 1}}, nil
}

func newTestServer(backend *fakeBackend, rateLimit float64) http.Handler {
	return NewWebServer(Config{
		Backend:    backend,
		Operations: fakeOperations{},
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "lockdrop_operations_total 1")
		}),
		RateLimit: rateLimit,
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, sender, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if sender != "" {
		req.Header.Set(senderHeader, sender)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestExecutePassesSenderAndFunds(t *testing.T) {
	backend := &fakeBackend{healthy: true}
	h := newTestServer(backend, 0)

	rec := do(t, h, http.MethodPost, "/api/execute", "alice",
		`{"msg":{"stake":{}},"funds":[{"denom":"ustake","amount":"100"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", backend.sender)
	require.Len(t, backend.funds, 1)
	require.Equal(t, "100ustake", backend.funds[0].String())
	require.JSONEq(t, `{"stake":{}}`, string(backend.raw))

	var got service.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "op-1", got.OperationID)
	require.Equal(t, int64(4), got.Commit)
}

func TestExecuteRequiresSender(t *testing.T) {
	rec := do(t, newTestServer(&fakeBackend{}, 0), http.MethodPost, "/api/execute", "", `{"msg":{"claim":{}}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecuteRejectsBadBody(t *testing.T) {
	h := newTestServer(&fakeBackend{}, 0)
	require.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/execute", "alice", `{`).Code)
	require.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPost, "/api/execute", "alice", `{"msg":{"stake":{}},"funds":[{"denom":"1bad","amount":"5"}]}`).Code)
}

func TestExecuteErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unauthorized", errorsmod.Wrap(types.ErrUnauthorized, "nope"), http.StatusForbidden},
		{"owner change", types.ErrOnlyOwnerCanChangeOwner, http.StatusForbidden},
		{"nothing to claim", types.ErrNothingToClaim, http.StatusConflict},
		{"too many claims", types.ErrTooManyClaims, http.StatusConflict},
		{"payment", types.ErrPayment, http.StatusBadRequest},
		{"not instantiated", contract.ErrNotInstantiated, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&fakeBackend{execErr: tt.err}, 0)
			rec := do(t, h, http.MethodPost, "/api/execute", "alice", `{"msg":{"claim":{}}}`)
			require.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRegisteredErrorCarriesCode(t *testing.T) {
	h := newTestServer(&fakeBackend{execErr: errorsmod.Wrap(types.ErrNothingToClaim, "no mature claims")}, 0)
	rec := do(t, h, http.MethodPost, "/api/execute", "alice", `{"msg":{"claim":{}}}`)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, types.ModuleName, body["codespace"])
	require.Equal(t, float64(10), body["code"])
}

func TestQueryWrapsData(t *testing.T) {
	backend := &fakeBackend{queryResp: map[string]string{"value": "60"}}
	rec := do(t, newTestServer(backend, 0), http.MethodPost, "/api/query", "", `{"msg":{"total_value":{}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"value":"60"}}`, rec.Body.String())
	require.JSONEq(t, `{"total_value":{}}`, string(backend.raw))
}

func TestHealthReflectsStatus(t *testing.T) {
	require.Equal(t, http.StatusOK, do(t, newTestServer(&fakeBackend{healthy: true}, 0), http.MethodGet, "/health", "", "").Code)
	require.Equal(t, http.StatusServiceUnavailable, do(t, newTestServer(&fakeBackend{}, 0), http.MethodGet, "/api/health", "", "").Code)
}

func TestOperationsAndMetricsRoutes(t *testing.T) {
	h := newTestServer(&fakeBackend{healthy: true}, 0)

	rec := do(t, h, http.MethodGet, "/api/operations?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	require.Equal(t, 5, list.Limit)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/operations/op-1", "", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/operations/missing", "", "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/operations/summary", "", "").Code)

	rec = do(t, h, http.MethodGet, "/api/operations/unemitted", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var unemitted struct {
		Operations []state.OperationRecord `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unemitted))
	require.Len(t, unemitted.Operations, 1)
	require.Equal(t, "op-2", unemitted.Operations[0].OperationID)

	rec = do(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "lockdrop_operations_total")
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestServer(&fakeBackend{}, 0), http.MethodOptions, "/api/execute", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), senderHeader)
}

func TestRateLimit(t *testing.T) {
	// A rate of 0.5/s gives a burst of one request.
	h := newTestServer(&fakeBackend{healthy: true}, 0.5)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "", "").Code)
	require.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/health", "", "").Code)
}

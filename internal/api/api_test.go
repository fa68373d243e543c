package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"droneWatch/internal/auth"
	"droneWatch/internal/testutil"
	"droneWatch/models"
	"droneWatch/repository"
)

const testSecret = "test-secret"

type testEnv struct {
	router   *gin.Engine
	accounts *repository.AccountRepository
	drones   *repository.DroneRepository
	tokens   *auth.TokenService
}

func newTestEnv(t *testing.T, name string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := testutil.OpenInMemoryDB(t, name)
	accounts := repository.NewAccountRepository(d)
	drones := repository.NewDroneRepository(d)
	tokens := auth.NewTokenService(testSecret)
	router := New(zap.NewNop().Sugar(), accounts, drones, tokens, false)
	return &testEnv{router: router, accounts: accounts, drones: drones, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup creates an account through the API and returns the stored record.
func (e *testEnv) signup(t *testing.T, username, email, password string, role models.Role) *models.Account {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/user/signup", gin.H{
		"username": username, "email": email, "password": password, "role": string(role),
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signup %s: status %d body %s", username, w.Code, w.Body.String())
	}
	acct, err := e.accounts.GetByUsername(context.Background(), username)
	if err != nil || acct == nil {
		t.Fatalf("signed-up account not stored: %v", err)
	}
	return acct
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

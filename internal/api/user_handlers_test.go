package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"droneWatch/internal/auth"
	"droneWatch/internal/testutil"
	"droneWatch/models"
)

func TestSignup_StoresHashedPassword(t *testing.T) {
	e := newTestEnv(t, "signup")

	acct := e.signup(t, "alice", "alice@example.com", "hunter2", models.RoleWO)
	stored, err := e.accounts.GetByEmail(context.Background(), "alice@example.com")
	if err != nil || stored == nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if stored.PasswordHash == "hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if !auth.CheckPassword("hunter2", stored.PasswordHash) {
		t.Fatalf("stored hash should verify against the plaintext")
	}
	if acct.Role != models.RoleWO {
		t.Fatalf("role mismatch: %+v", acct)
	}
}

func TestSignup_Validation(t *testing.T) {
	e := newTestEnv(t, "signupval")

	cases := []gin.H{
		{},
		{"username": "x", "email": "x@example.com", "password": "p"},
		{"username": "x", "email": "x@example.com", "role": "WO"},
		{"username": "x", "password": "p", "role": "WO"},
		{"email": "x@example.com", "password": "p", "role": "WO"},
	}
	for i, body := range cases {
		if w := e.do(t, http.MethodPost, "/api/v1/user/signup", body, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, w.Code)
		}
	}

	// Unknown role is rejected too.
	w := e.do(t, http.MethodPost, "/api/v1/user/signup", gin.H{
		"username": "x", "email": "x@example.com", "password": "p", "role": "colonel",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400, got %d", w.Code)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	e := newTestEnv(t, "signupdup")
	e.signup(t, "bob", "bob@example.com", "pw", models.RoleJWO)

	// Same username, different everything else.
	w := e.do(t, http.MethodPost, "/api/v1/user/signup", gin.H{
		"username": "bob", "email": "other@example.com", "password": "pw2", "role": "WO",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Username already exists") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSignin_IssuesTokenAndCookie(t *testing.T) {
	e := newTestEnv(t, "signin")
	acct := e.signup(t, "carol", "carol@example.com", "pw", models.RoleWO)

	w := e.do(t, http.MethodPost, "/api/v1/user/signin", gin.H{"email": "carol@example.com", "password": "pw"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signin: status %d body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decodeJSON(t, w, &resp)
	if !resp.Success || resp.Data.Token == "" {
		t.Fatalf("expected token in body: %s", w.Body.String())
	}

	// The token resolves back to the same account and role.
	p, err := e.tokens.Verify(resp.Data.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if p.AccountID != acct.ID || p.Role != models.RoleWO {
		t.Fatalf("principal mismatch: %+v", p)
	}

	// Session cookie set with the hardening attributes.
	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "token=") || !strings.Contains(cookie, "HttpOnly") || !strings.Contains(cookie, "SameSite=Lax") {
		t.Fatalf("unexpected cookie: %q", cookie)
	}
	if strings.Contains(cookie, "Secure") {
		t.Fatalf("Secure must be off outside production: %q", cookie)
	}

	// Successful signin is audited.
	activity, err := e.accounts.Activity(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(activity) != 1 || activity[0].Kind != models.ActivityLogin {
		t.Fatalf("expected one login entry, got %+v", activity)
	}
}

func TestSignin_DistinctFailures(t *testing.T) {
	e := newTestEnv(t, "signinerr")
	e.signup(t, "dave", "dave@example.com", "pw", models.RoleJWO)

	w := e.do(t, http.MethodPost, "/api/v1/user/signin", gin.H{"email": "ghost@example.com", "password": "pw"}, nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "User doesn't exist") {
		t.Fatalf("unknown email: %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/v1/user/signin", gin.H{"email": "dave@example.com", "password": "wrong"}, nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Incorrect Password") {
		t.Fatalf("wrong password: %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/v1/user/signin", gin.H{"email": "dave@example.com"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: expected 400, got %d", w.Code)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	e := newTestEnv(t, "logout")
	w := e.do(t, http.MethodGet, "/api/v1/user/logout", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "token=") || !strings.Contains(cookie, "Max-Age=0") {
		t.Fatalf("cookie not cleared: %q", cookie)
	}
}

func TestMe_ReturnsAuthenticatedAccount(t *testing.T) {
	e := newTestEnv(t, "me")
	acct := e.signup(t, "erin", "erin@example.com", "pw", models.RoleWO)
	tok := testutil.SignToken(t, testSecret, acct.ID, acct.Role)

	w := e.do(t, http.MethodGet, "/api/v1/user/me", nil, map[string]string{"Authorization": "Bearer " + tok})
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"username":"erin"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAuthGate_Rejections(t *testing.T) {
	e := newTestEnv(t, "authgate")
	acct := e.signup(t, "frank", "frank@example.com", "pw", models.RoleWO)

	// No header.
	if w := e.do(t, http.MethodGet, "/api/v1/user/me", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", w.Code)
	}
	// Malformed header.
	if w := e.do(t, http.MethodGet, "/api/v1/user/me", nil, map[string]string{"Authorization": "Token abc"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("malformed header: expected 401, got %d", w.Code)
	}
	// Expired token.
	expired := testutil.SignExpiredToken(t, testSecret, acct.ID, acct.Role)
	if w := e.do(t, http.MethodGet, "/api/v1/user/me", nil, map[string]string{"Authorization": "Bearer " + expired}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", w.Code)
	}
	// Valid token whose account no longer exists.
	ghost := testutil.SignToken(t, testSecret, "gone", models.RoleWO)
	if w := e.do(t, http.MethodGet, "/api/v1/user/me", nil, map[string]string{"Authorization": "Bearer " + ghost}); w.Code != http.StatusNotFound {
		t.Fatalf("deleted account: expected 404, got %d", w.Code)
	}
}

func TestAdminListUsers_RoleGate(t *testing.T) {
	e := newTestEnv(t, "adminlist")
	wo := e.signup(t, "officer", "officer@example.com", "pw", models.RoleWO)
	mwo := e.signup(t, "restricted", "restricted@example.com", "pw", models.RoleMWO)

	// MWO always refused, even with a valid token.
	mwoTok := testutil.SignToken(t, testSecret, mwo.ID, mwo.Role)
	w := e.do(t, http.MethodGet, "/api/v1/user/admin/get-users", nil, map[string]string{"Authorization": "Bearer " + mwoTok})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("MWO: expected 400, got %d", w.Code)
	}

	woTok := testutil.SignToken(t, testSecret, wo.ID, wo.Role)
	w = e.do(t, http.MethodGet, "/api/v1/user/admin/get-users", nil, map[string]string{"Authorization": "Bearer " + woTok})
	if w.Code != http.StatusOK {
		t.Fatalf("WO: expected 200, got %d %s", w.Code, w.Body.String())
	}
	var users []models.Account
	decodeJSON(t, w, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(users))
	}
	// The listing exposes credential hashes.
	if users[0].PasswordHash == "" {
		t.Fatalf("admin listing should include password hashes")
	}
}

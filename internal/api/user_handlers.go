package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"droneWatch/internal/auth"
	"droneWatch/models"
	"droneWatch/repository"
)

const sessionCookieName = "token"

// UserHandler serves account signup, signin and the admin listing.
type UserHandler struct {
	accounts      repository.AccountRepositoryI
	tokens        *auth.TokenService
	log           *zap.SugaredLogger
	secureCookies bool
}

func NewUserHandler(accounts repository.AccountRepositoryI, tokens *auth.TokenService, log *zap.SugaredLogger, secureCookies bool) *UserHandler {
	return &UserHandler{accounts: accounts, tokens: tokens, log: log, secureCookies: secureCookies}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Signup creates an account with a hashed password. The created record,
// hash included, is echoed back.
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Kindly Provide all arguments")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		respondError(c, http.StatusBadRequest, "Kindly Provide all arguments")
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		respondError(c, http.StatusBadRequest, "Unknown role")
		return
	}

	existing, err := h.accounts.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.log.Errorw("signup: lookup username", "err", err)
		respondInternal(c)
		return
	}
	if existing != nil {
		respondError(c, http.StatusBadRequest, "Username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Errorw("signup: hash password", "err", err)
		respondInternal(c)
		return
	}
	created, err := h.accounts.Create(c.Request.Context(), &models.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		// The pre-check can lose a race to a concurrent signup.
		if errors.Is(err, repository.ErrDuplicateUsername) {
			respondError(c, http.StatusBadRequest, "Username already exists")
			return
		}
		h.log.Errorw("signup: create account", "err", err)
		respondInternal(c)
		return
	}
	respondOK(c, "Account Created Successfully", created)
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signin verifies credentials, issues a session token, sets it as an
// HttpOnly cookie and returns it in the body.
func (h *UserHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please Provide all fields")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Please Provide all fields")
		return
	}

	acct, err := h.accounts.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.log.Errorw("signin: lookup email", "err", err)
		respondInternal(c)
		return
	}
	if acct == nil {
		respondError(c, http.StatusBadRequest, "User doesn't exist")
		return
	}
	if !auth.CheckPassword(req.Password, acct.PasswordHash) {
		respondError(c, http.StatusBadRequest, "Incorrect Password")
		return
	}

	token, err := h.tokens.Issue(acct.ID, acct.Role)
	if err != nil {
		h.log.Errorw("signin: issue token", "err", err)
		respondInternal(c)
		return
	}

	if err := h.accounts.AppendActivity(c.Request.Context(), acct.ID, models.ActivityEntry{
		Kind:      models.ActivityLogin,
		Action:    "Signed in",
		IPAddress: c.ClientIP(),
	}); err != nil {
		h.log.Warnw("signin: append activity", "account", acct.ID, "err", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, int(auth.TokenTTL.Seconds()), "/", "", h.secureCookies, true)
	respondOK(c, "Login Success", gin.H{"token": token})
}

// Logout clears the session cookie. Tokens stay valid until expiry; this
// only removes the browser's copy.
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", h.secureCookies, true)
	respondOK(c, "Logout successfully", nil)
}

// Me returns the authenticated account.
func (h *UserHandler) Me(c *gin.Context) {
	respondOK(c, "User fetched successfully", accountFromContext(c))
}

// AdminListUsers returns every account, credential hashes and activity logs
// included. The MWO rank is refused.
func (h *UserHandler) AdminListUsers(c *gin.Context) {
	acct := accountFromContext(c)
	if acct == nil {
		respondInternal(c)
		return
	}
	if acct.Role == models.RoleMWO {
		respondError(c, http.StatusBadRequest, "Unauthorized access")
		return
	}
	users, err := h.accounts.List(c.Request.Context())
	if err != nil {
		h.log.Errorw("admin list users", "err", err)
		respondInternal(c)
		return
	}
	c.JSON(http.StatusOK, users)
}

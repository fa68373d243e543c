package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"droneWatch/internal/auth"
	"droneWatch/internal/geo"
	"droneWatch/models"
	"droneWatch/repository"
)

// Shared secrets gating the two drone access tiers.
const (
	droneAccessSecret = "DroneIP"
	adminAccessSecret = "Admin11"
)

// maxPlausibleJumpMiles is the distance between consecutive fixes above
// which a telemetry report is logged as suspect.
const maxPlausibleJumpMiles = 500.0

// DroneHandler serves drone registration, telemetry and the gated read
// endpoints.
type DroneHandler struct {
	drones   repository.DroneRepositoryI
	accounts repository.AccountRepositoryI
	tokens   *auth.TokenService
	log      *zap.SugaredLogger
}

func NewDroneHandler(drones repository.DroneRepositoryI, accounts repository.AccountRepositoryI, tokens *auth.TokenService, log *zap.SugaredLogger) *DroneHandler {
	return &DroneHandler{drones: drones, accounts: accounts, tokens: tokens, log: log}
}

type verifyRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	Token  string `json:"token"`
}

// Verify is the dual-channel drone gate: email resolves the account, the
// shared secret picks the access tier, and the rank must not be MWO.
//
// The token field is required but only checked for presence; the drone-data
// endpoint performs its own token verification. A test pins this so any
// tightening is a deliberate contract change.
func (h *DroneHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "All fields are required")
		return
	}
	if req.Email == "" || req.Secret == "" || req.Token == "" {
		respondError(c, http.StatusBadRequest, "All fields are required")
		return
	}

	acct, err := h.accounts.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.log.Errorw("drone verify: lookup email", "err", err)
		respondInternal(c)
		return
	}
	if acct == nil {
		respondError(c, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if acct.Role == models.RoleMWO {
		respondError(c, http.StatusForbidden, "Access denied")
		return
	}
	if req.Secret != droneAccessSecret && req.Secret != adminAccessSecret {
		respondError(c, http.StatusForbidden, "Access denied")
		return
	}

	entry := models.ActivityEntry{
		Kind:      models.ActivityDroneAccessRequest,
		Action:    "Login And Requested for Drone Access",
		IPAddress: c.ClientIP(),
	}
	if req.Secret == adminAccessSecret {
		entry.Kind = models.ActivityAdminAccessRequest
		entry.Action = "Login And Requested for Admin Access"
	}
	if err := h.accounts.AppendActivity(c.Request.Context(), acct.ID, entry); err != nil {
		h.log.Errorw("drone verify: append activity", "account", acct.ID, "err", err)
		respondInternal(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Authentication successful"})
}

// GetDrone verifies the query token independently of the Verify gate, then
// returns the named drone and audits the access.
func (h *DroneHandler) GetDrone(c *gin.Context) {
	droneName := c.Query("droneName")
	tokenStr := c.Query("token")
	if droneName == "" || tokenStr == "" {
		respondError(c, http.StatusBadRequest, "Drone name and token are required")
		return
	}

	p, err := h.tokens.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, auth.ErrNoSecret) {
			respondInternal(c)
			return
		}
		respondError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	drone, err := h.drones.GetByName(c.Request.Context(), droneName)
	if err != nil {
		h.log.Errorw("get drone: lookup drone", "err", err)
		respondInternal(c)
		return
	}
	acct, err := h.accounts.GetByID(c.Request.Context(), p.AccountID)
	if err != nil {
		h.log.Errorw("get drone: lookup account", "err", err)
		respondInternal(c)
		return
	}
	if drone == nil {
		respondError(c, http.StatusNotFound, "Drone not found")
		return
	}
	if acct == nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	if err := h.accounts.AppendActivity(c.Request.Context(), acct.ID, models.ActivityEntry{
		Kind:      models.ActivityDroneView,
		Action:    "Accessed Drone " + drone.Name,
		DroneName: drone.Name,
		IPAddress: c.ClientIP(),
	}); err != nil {
		h.log.Errorw("get drone: append activity", "account", acct.ID, "err", err)
		respondInternal(c)
		return
	}
	c.JSON(http.StatusOK, drone)
}

// ListDrones returns all drones with their histories. No gate.
func (h *DroneHandler) ListDrones(c *gin.Context) {
	drones, err := h.drones.List(c.Request.Context())
	if err != nil {
		h.log.Errorw("list drones", "err", err)
		respondInternal(c)
		return
	}
	if drones == nil {
		drones = []models.Drone{}
	}
	c.JSON(http.StatusOK, drones)
}

type registerRequest struct {
	DroneName string `json:"droneName"`
}

// Register creates a drone record carrying only a name.
func (h *DroneHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DroneName == "" {
		respondError(c, http.StatusBadRequest, "Invalid Drone")
		return
	}
	d, err := h.drones.Create(c.Request.Context(), req.DroneName)
	if err != nil {
		h.log.Errorw("register drone", "err", err)
		respondInternal(c)
		return
	}
	c.JSON(http.StatusOK, d)
}

type telemetryRequest struct {
	DroneName     string   `json:"droneName"`
	Longitude     *float64 `json:"longitude"`
	Latitude      *float64 `json:"latitude"`
	Height        *float64 `json:"height"`
	AnomalyObject *string  `json:"anomalyObject"`
	AnomalyReason *string  `json:"anomalyReason"`
}

// ReceiveTelemetry ingests one position report: current fields are
// overwritten, anomaly fields update only when supplied, and exactly one
// snapshot is appended. The full updated history is returned.
func (h *DroneHandler) ReceiveTelemetry(c *gin.Context) {
	var req telemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DroneName == "" {
		respondError(c, http.StatusBadRequest, "Invalid Drone")
		return
	}

	drone, err := h.drones.GetByName(c.Request.Context(), req.DroneName)
	if err != nil {
		h.log.Errorw("telemetry: lookup drone", "err", err)
		respondInternal(c)
		return
	}
	if drone == nil {
		respondError(c, http.StatusBadRequest, "Invalid Drone")
		return
	}

	h.warnOnPositionJump(drone, req.Latitude, req.Longitude)

	history, err := h.drones.RecordTelemetry(c.Request.Context(), drone.ID, models.TelemetryReport{
		Longitude:     req.Longitude,
		Latitude:      req.Latitude,
		Height:        req.Height,
		AnomalyObject: req.AnomalyObject,
		AnomalyReason: req.AnomalyReason,
	})
	if err != nil {
		h.log.Errorw("telemetry: record", "drone", drone.Name, "err", err)
		respondInternal(c)
		return
	}
	if history == nil {
		history = []models.PositionSnapshot{}
	}
	c.JSON(http.StatusOK, history)
}

func (h *DroneHandler) warnOnPositionJump(d *models.Drone, lat, lng *float64) {
	if d.Latitude == nil || d.Longitude == nil || lat == nil || lng == nil {
		return
	}
	miles := geo.HaversineMiles(*d.Latitude, *d.Longitude, *lat, *lng)
	if miles > maxPlausibleJumpMiles {
		h.log.Warnw("implausible position jump", "drone", d.Name, "distance_miles", miles)
	}
}

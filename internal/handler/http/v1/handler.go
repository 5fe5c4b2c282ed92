package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nereus-app/coastal_risk_system/internal/auth"
	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/nereus-app/coastal_risk_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	authService       service.AuthService
	assessmentService service.AssessmentService
	tokens            *auth.Manager
	logger            *logrus.Logger
	validate          *validator.Validate
}

func NewHandler(authService service.AuthService, assessmentService service.AssessmentService, tokens *auth.Manager, logger *logrus.Logger) *Handler {
	return &Handler{
		authService:       authService,
		assessmentService: assessmentService,
		tokens:            tokens,
		logger:            logger,
		validate:          validator.New(),
	}
}

// @Summary Register a new user
// @Description Register a new account and receive a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration request"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Missing or invalid fields"
// @Failure 409 {object} map[string]string "Email already registered"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input RegisterRequest
	log := h.logger.WithField("method", "register")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.WithError(err).Error("Failed to register user in service")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: ModelToUserResponse(user)})
}

// @Summary Log in
// @Description Exchange email and password for a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Missing or invalid fields"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	log := h.logger.WithField("method", "login")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.WithError(err).Error("Failed to log in user in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: ModelToUserResponse(user)})
}

// @Summary List public alerts
// @Description Get the public alert feed, newest first. No authentication required.
// @Tags Alerts
// @Produce json
// @Success 200 {array} AlertResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listAlerts")

	alerts, err := h.assessmentService.ListAlerts(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list alerts from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary Submit a basic incident
// @Description Create a basic incident report without model inference. Requires bearer token.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateIncidentRequest true "Incident creation request"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}
	log := h.logger.WithField("method", "createIncident").WithField("owner_id", claims.UserID)

	var input CreateIncidentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.assessmentService.SubmitBasic(c.Request.Context(), claims.UserID, service.BasicIncidentInput{
		Type:        input.Type,
		Description: input.Description,
		Location:    input.Location,
		Lat:         input.Lat,
		Lng:         input.Lng,
		Photo:       input.Photo,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Failed to submit incident in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Submit a modelled risk report
// @Description Run the full assessment pipeline: validate features, call the inference engine, enrich with a narrative report and persist the incident. An inference failure is recorded inside the incident, not surfaced as an HTTP error. Requires bearer token.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.FeatureSet true "Environmental feature readings"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Missing mandatory numeric fields"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/report [post]
func (h *Handler) submitReport(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}
	log := h.logger.WithField("method", "submitReport").WithField("owner_id", claims.UserID)

	var features models.FeatureSet
	if err := c.ShouldBindJSON(&features); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	incident, err := h.assessmentService.SubmitReport(c.Request.Context(), claims.UserID, features)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Failed to submit report in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary List my incidents
// @Description Get the caller's incidents, newest first. Requires bearer token.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/my [get]
func (h *Handler) myIncidents(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}
	log := h.logger.WithField("method", "myIncidents").WithField("owner_id", claims.UserID)

	incidents, err := h.assessmentService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get my analytics
// @Description Compute the analytics snapshot over the caller's incidents. Recomputed on every request. Requires bearer token.
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AnalyticsSnapshot
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/analytics/my [get]
func (h *Handler) myAnalytics(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}
	log := h.logger.WithField("method", "myAnalytics").WithField("owner_id", claims.UserID)

	snapshot, err := h.assessmentService.Summarize(c.Request.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to compute analytics in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// @Summary Run inference only
// @Description Call the inference engine without persisting anything. An engine failure is returned as data inside the result.
// @Tags Inference
// @Accept json
// @Produce json
// @Param body body models.FeatureSet true "Environmental feature readings"
// @Success 200 {object} models.InferenceResult
// @Failure 400 {object} map[string]string "Missing mandatory numeric fields"
// @Router /predict [post]
func (h *Handler) predict(c *gin.Context) {
	log := h.logger.WithField("method", "predict")

	var features models.FeatureSet
	if err := c.ShouldBindJSON(&features); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.assessmentService.Predict(c.Request.Context(), features)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Failed to predict in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Generate a narrative report only
// @Description Call the narrative service without persisting anything. Returns 503 when the service is not configured or fails.
// @Tags Inference
// @Accept json
// @Produce json
// @Param body body AIReportRequest true "Features and prediction to narrate"
// @Success 200 {object} AIReportResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 503 {object} map[string]string "Narrative service unavailable"
// @Router /ai-report [post]
func (h *Handler) aiReport(c *gin.Context) {
	log := h.logger.WithField("method", "aiReport")

	var input AIReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.assessmentService.Report(c.Request.Context(), input.Features, input.PredictedRiskLevel, input.RiskScore)
	if err != nil {
		if errors.Is(err, service.ErrEnrichmentUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "narrative service unavailable"})
			return
		}
		log.WithError(err).Error("Failed to generate report in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, AIReportResponse{AIReport: report})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package v1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/sirupsen/logrus"
)

// RealtimeGateway принимает websocket-подключения уже аутентифицированных пользователей
type RealtimeGateway interface {
	ServeWS(w http.ResponseWriter, r *http.Request, actor models.Actor)
}

// HealthChecks проверки зависимостей по имени
type HealthChecks map[string]func(ctx context.Context) error

type Handler struct {
	emergencyService service.EmergencyService
	authService      service.AuthService
	realtime         RealtimeGateway
	health           HealthChecks
	logger           *logrus.Logger
	validate         *validator.Validate
}

func NewHandler(emergencyService service.EmergencyService, authService service.AuthService, realtime RealtimeGateway, health HealthChecks, logger *logrus.Logger) *Handler {
	return &Handler{
		emergencyService: emergencyService,
		authService:      authService,
		realtime:         realtime,
		health:           health,
		logger:           logger,
		validate:         validator.New(),
	}
}

// bind разбирает и проверяет тело запроса; при ошибке ответ уже отправлен
func (h *Handler) bind(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		badRequest(c, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		badRequest(c, err.Error())
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid emergency ID")
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	log := h.logger.WithField("method", "login")
	if !h.bind(c, log, &input) {
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: ModelToUserResponse(user)})
}

// @Summary Report an emergency
// @Description Create an emergency for the current user. Fails if the user already has an active one.
// @Tags Emergencies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param emergency body CreateEmergencyRequest true "Emergency report"
// @Success 201 {object} EmergencyResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Active emergency exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /emergencies [post]
func (h *Handler) createEmergency(c *gin.Context) {
	var input CreateEmergencyRequest
	log := h.logger.WithField("method", "createEmergency")
	if !h.bind(c, log, &input) {
		return
	}

	e, err := h.emergencyService.CreateEmergency(c.Request.Context(), actorFrom(c), DTOToNewEmergency(input))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToEmergencyResponse(e))
}

// @Summary Pending queue
// @Description Pending, non-fraud emergencies, oldest first, with reporter contacts
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PendingEmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /emergencies/pending [get]
func (h *Handler) listPending(c *gin.Context) {
	list, err := h.emergencyService.ListPending(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToPendingResponses(list))
}

// @Summary Active emergencies
// @Description Non-resolved, non-fraud emergencies by priority. Admin only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} EmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /emergencies/active [get]
func (h *Handler) listActive(c *gin.Context) {
	list, err := h.emergencyService.ListActive(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToEmergencyResponses(list))
}

// @Summary Fraud-marked emergencies
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} EmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /emergencies/fraud [get]
func (h *Handler) listFraud(c *gin.Context) {
	list, err := h.emergencyService.ListFraud(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToEmergencyResponses(list))
}

// @Summary My active emergency
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EmergencyResponse
// @Failure 404 {object} ErrorResponse "No active emergency"
// @Router /emergencies/mine/active [get]
func (h *Handler) myActiveEmergency(c *gin.Context) {
	e, err := h.emergencyService.MyActiveEmergency(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToEmergencyResponse(e))
}

// @Summary Get emergency by ID
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Success 200 {object} EmergencyResponse
// @Failure 400 {object} ErrorResponse "Invalid emergency ID"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Emergency not found"
// @Router /emergencies/{id} [get]
func (h *Handler) getEmergency(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	e, err := h.emergencyService.GetEmergency(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToEmergencyResponse(e))
}

// @Summary Emergency history
// @Description Audit entries in the order they were recorded
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Success 200 {array} HistoryEntryResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Emergency not found"
// @Router /emergencies/{id}/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	entries, err := h.emergencyService.GetHistory(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToHistoryResponses(entries))
}

// @Summary Assign a responder
// @Description Atomically assigns the responder and marks them on duty. Admin only.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Param assignment body AssignResponderRequest true "Responder"
// @Success 200 {object} EmergencyResponse
// @Failure 404 {object} ErrorResponse "Emergency or responder not found"
// @Failure 409 {object} ErrorResponse "Resolved, responder unavailable or vehicle unavailable"
// @Failure 422 {object} ErrorResponse "Responder not qualified"
// @Router /emergencies/{id}/assign [post]
func (h *Handler) assignResponder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input AssignResponderRequest
	log := h.logger.WithField("method", "assignResponder").WithField("id", id)
	if !h.bind(c, log, &input) {
		return
	}
	responderID, err := uuid.Parse(input.ResponderID)
	if err != nil {
		badRequest(c, "invalid responder ID")
		return
	}

	e, err := h.emergencyService.AssignResponder(c.Request.Context(), actorFrom(c), id, responderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToEmergencyResponse(e))
}

// transition общий обработчик переходов без тела запроса
func (h *Handler) transition(fn func(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Emergency, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		e, err := fn(c.Request.Context(), actorFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ModelToEmergencyResponse(e))
	}
}

// @Summary Accept an assignment
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Success 200 {object} EmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Emergency resolved"
// @Router /emergencies/{id}/accept [post]
func (h *Handler) acceptAssignment(c *gin.Context) {
	h.transition(h.emergencyService.AcceptAssignment)(c)
}

// @Summary Mark arrival
// @Description Idempotent; repeated calls return the arrived emergency unchanged
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Success 200 {object} EmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Emergency resolved"
// @Failure 500 {object} ErrorResponse "Arrival could not be persisted"
// @Router /emergencies/{id}/arrive [post]
func (h *Handler) markArrived(c *gin.Context) {
	h.transition(h.emergencyService.MarkArrived)(c)
}

// @Summary Resolve an emergency
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Success 200 {object} EmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Already resolved"
// @Router /emergencies/{id}/resolve [post]
func (h *Handler) resolveEmergency(c *gin.Context) {
	h.transition(h.emergencyService.ResolveEmergency)(c)
}

// @Summary Mark as fraud
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Success 200 {object} EmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /emergencies/{id}/fraud [post]
func (h *Handler) markFraud(c *gin.Context) {
	h.transition(h.emergencyService.MarkFraud)(c)
}

// @Summary Clear the fraud mark
// @Tags Emergencies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Success 200 {object} EmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Reporter already has another active emergency"
// @Router /emergencies/{id}/fraud [delete]
func (h *Handler) unmarkFraud(c *gin.Context) {
	h.transition(h.emergencyService.UnmarkFraud)(c)
}

// @Summary Update responder location
// @Description Stores the responder position and sends it to the reporter only
// @Tags Emergencies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Emergency ID"
// @Param location body LocationRequest true "Coordinates"
// @Success 200 {object} EmergencyResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Emergency resolved"
// @Router /emergencies/{id}/responder-location [put]
func (h *Handler) updateResponderLocation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input LocationRequest
	log := h.logger.WithField("method", "updateResponderLocation").WithField("id", id)
	if !h.bind(c, log, &input) {
		return
	}

	e, err := h.emergencyService.UpdateResponderLocation(c.Request.Context(), actorFrom(c), id, DTOToLocation(input))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToEmergencyResponse(e))
}

// @Summary History summaries
// @Description Latest history entry per emergency, newest emergencies first. Admin only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of emergencies" default(50)
// @Success 200 {array} HistorySummaryResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /history/summaries [get]
func (h *Handler) listHistorySummaries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	summaries, err := h.emergencyService.ListHistorySummaries(c.Request.Context(), actorFrom(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToSummaryResponses(summaries))
}

// @Summary Set own responder status
// @Tags Responders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status body ResponderStatusRequest true "Status"
// @Success 200 {object} ResponderStatusResponse
// @Failure 403 {object} ErrorResponse "Not a responder"
// @Failure 409 {object} ErrorResponse "Responder has an active assignment"
// @Router /responders/me/status [put]
func (h *Handler) setResponderStatus(c *gin.Context) {
	var input ResponderStatusRequest
	log := h.logger.WithField("method", "setResponderStatus")
	if !h.bind(c, log, &input) {
		return
	}

	actor := actorFrom(c)
	status := models.ResponderStatus(input.Status)
	if err := h.emergencyService.SetResponderStatus(c.Request.Context(), actor, status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResponderStatusResponse{ResponderID: actor.UserID, Status: string(status)})
}

// @Summary Realtime connection
// @Description Websocket upgrade. Token in the Authorization header or the token query parameter.
// @Tags Realtime
// @Security BearerAuth
// @Param token query string false "Bearer token"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /ws [get]
func (h *Handler) serveWS(c *gin.Context) {
	h.realtime.ServeWS(c.Writer, c.Request, actorFrom(c))
}

// @Summary Get application health status
// @Description Get health status of the application and its storage
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Failure 503 {object} map[string]string "A dependency is unavailable"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	code := http.StatusOK
	for name, check := range h.health {
		if err := check(c.Request.Context()); err != nil {
			h.logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
			resp[name] = "unavailable"
			resp["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp[name] = "ok"
	}
	c.JSON(code, resp)
}

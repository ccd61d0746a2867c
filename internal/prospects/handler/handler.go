package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoplaza_backend/internal/prospects/service"
	"autoplaza_backend/internal/prospects/transport"
	"autoplaza_backend/platform/httpkit"
	"autoplaza_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	query       *service.QueryService
	manage      *service.ManageService
	attachments *service.AttachmentService
	validate    *validator.Validator
}

func New(query *service.QueryService, manage *service.ManageService, attachments *service.AttachmentService, validate *validator.Validator) *Handler {
	return &Handler{query: query, manage: manage, attachments: attachments, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/stats", h.Stats)
	rg.GET("/hot", h.ListHot)
	rg.GET("/stale", h.ListStale)
	rg.GET("/mine", h.ListMine)
	rg.GET("/check-duplicate", h.CheckDuplicate)
	rg.GET("/created-by-me", h.ListCreatedByMe)
	rg.GET("/report", h.GenerateReport)
	rg.POST("/bulk-update", h.BulkUpdate)
	rg.POST("/bulk-delete", h.BulkDelete)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.POST("/:id/appointment", h.ScheduleAppointment)
	rg.PATCH("/:id/contact", h.UpdateContact)
	rg.PATCH("/:id/interest", h.UpdateInterest)
	rg.PUT("/:id/notes", h.UpdateNotes)
	rg.POST("/:id/tags", h.AddTag)
	rg.DELETE("/:id/tags", h.RemoveTag)
	rg.POST("/:id/reassign", h.Reassign)

	h.registerAttachmentRoutes(rg)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds and validates the request body, writing the error response
// itself on failure.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateProspectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.Create(c.Request.Context(), identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, prospect)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	prospect, err := h.query.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListProspectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.query.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Dashboard(c *gin.Context) {
	var assignedTo *uuid.UUID
	if raw := c.Query("assignedTo"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		assignedTo = &parsed
	}

	board, err := h.query.Dashboard(c.Request.Context(), assignedTo)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, board)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.query.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func (h *Handler) ListHot(c *gin.Context) {
	prospects, err := h.query.ListHot(c.Request.Context(), limitParam(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospects)
}

func (h *Handler) ListStale(c *gin.Context) {
	prospects, err := h.query.ListStale(c.Request.Context(), limitParam(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospects)
}

func (h *Handler) ListMine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	prospects, err := h.query.ListByAssignee(c.Request.Context(), identity.ActorID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospects)
}

func (h *Handler) ListCreatedByMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	prospects, err := h.query.ListByCreator(c.Request.Context(), identity.ActorID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospects)
}

func (h *Handler) CheckDuplicate(c *gin.Context) {
	rawPhone := c.Query("phone")
	if rawPhone == "" {
		httpkit.Error(c, http.StatusBadRequest, "phone query parameter is required", nil)
		return
	}

	result, err := h.query.CheckDuplicatePhone(c.Request.Context(), rawPhone)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.UpdateStatus(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) ScheduleAppointment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ScheduleAppointmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.ScheduleAppointment(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) UpdateContact(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateContactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.UpdateContact(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) UpdateInterest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateInterestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.UpdateInterest(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) UpdateNotes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateNotesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.UpdateNotes(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) AddTag(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.TagRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.AddTag(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) RemoveTag(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.TagRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.RemoveTag(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) Reassign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ReassignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prospect, err := h.manage.Reassign(c.Request.Context(), id, identity.ActorID(), identity.Roles(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) BulkUpdate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.BulkUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.manage.BulkUpdate(c.Request.Context(), identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) BulkDelete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	if !identity.HasRole("manager") && !identity.HasRole("admin") {
		httpkit.Error(c, http.StatusForbidden, "bulk delete requires the manager role", nil)
		return
	}

	var req transport.BulkDeleteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.manage.BulkDelete(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.manage.Delete(c.Request.Context(), id, identity.ActorID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GenerateReport(c *gin.Context) {
	var req transport.ListProspectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	report, err := h.manage.GenerateReport(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

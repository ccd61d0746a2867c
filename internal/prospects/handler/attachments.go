package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoplaza_backend/internal/prospects/transport"
	"autoplaza_backend/platform/httpkit"
)

func (h *Handler) registerAttachmentRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/attachments", h.ListAttachments)
	rg.POST("/:id/attachments/upload-url", h.RequestUploadURL)
	rg.POST("/:id/attachments", h.ConfirmUpload)
	rg.GET("/:id/attachments/:attachmentId/download-url", h.AttachmentDownloadURL)
	rg.DELETE("/:id/attachments/:attachmentId", h.DeleteAttachment)
}

func parseAttachmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) RequestUploadURL(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.RequestUploadURLRequest
	if !h.bindJSON(c, &req) {
		return
	}

	presigned, err := h.attachments.RequestUploadURL(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, presigned)
}

func (h *Handler) ConfirmUpload(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ConfirmUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attachment, err := h.attachments.ConfirmUpload(c.Request.Context(), id, identity.ActorID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, attachment)
}

func (h *Handler) ListAttachments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	attachments, err := h.attachments.List(c.Request.Context(), id, identity.ActorID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, attachments)
}

func (h *Handler) AttachmentDownloadURL(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	attachmentID, ok := parseAttachmentID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	presigned, err := h.attachments.DownloadURL(c.Request.Context(), id, attachmentID, identity.ActorID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, presigned)
}

func (h *Handler) DeleteAttachment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	attachmentID, ok := parseAttachmentID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.attachments.Delete(c.Request.Context(), id, attachmentID, identity.ActorID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Package api exposes the record store over HTTP as JSON.
package api

import (
	"net/http"
	"strconv"

	"github.com/celerix-dev/celerix-grid/internal/apierrors"
	"github.com/celerix-dev/celerix-grid/internal/engine"
	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	Store  engine.Store
	Logger *zap.Logger
}

// Register mounts the record routes on r, typically the /api group.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/records", h.ListRecords)
	r.POST("/records", h.CreateRecord)
	r.GET("/records/:id", h.GetRecord)
	r.PUT("/records/:id", h.UpdateRecord)
	r.DELETE("/records/:id", h.DeleteRecord)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListRecords(c *gin.Context) {
	spec := filter.FromQuery(c.Request.URL.Query(), "")
	records, err := h.Store.List(c.Request.Context(), spec)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	record, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var input schema.NewRecord
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{Error: err.Error(), Code: apierrors.ErrorCodeValidation})
		return
	}

	record, err := h.Store.Create(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	var input schema.FieldUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{Error: err.Error(), Code: apierrors.ErrorCodeValidation})
		return
	}

	record, err := h.Store.UpdateField(c.Request.Context(), id, input.Field, *input.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{Error: "invalid record id", Code: apierrors.ErrorCodeValidation})
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := apierrors.Classify(err)
	if status >= http.StatusInternalServerError && h.Logger != nil {
		h.Logger.Error("record store failure", zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(status, apierrors.ErrorResponse{Error: err.Error(), Code: code})
}

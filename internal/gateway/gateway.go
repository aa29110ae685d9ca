// Package gateway serves the grid frontend: it maps each browser interaction onto one
// record store call and answers with the matching HTML fragment.
package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/celerix-dev/celerix-grid/internal/apierrors"
	"github.com/celerix-dev/celerix-grid/internal/render"
	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"github.com/celerix-dev/celerix-grid/pkg/sdk"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// htmx response headers that redirect an error fragment away from the requested target.
const (
	headerRetarget = "HX-Retarget"
	headerReswap   = "HX-Reswap"
)

const readinessTimeout = 2 * time.Second

type Handler struct {
	Store    sdk.RecordStore
	Renderer *render.Renderer
	Logger   *zap.Logger
}

// Register installs the templates, static assets and grid routes on engine.
func (h *Handler) Register(engine *gin.Engine) {
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	engine.SetHTMLTemplate(h.Renderer.Template())
	engine.StaticFS("/static", render.StaticFS())

	engine.GET("/", h.Index)
	engine.GET("/healthz", h.Healthz)
	engine.GET("/readyz", h.Readyz)

	grid := engine.Group(render.BasePath)
	grid.GET("", h.ListRows)
	grid.POST("", h.CreateRecord)
	grid.DELETE("/:id", h.DeleteRecord)
	grid.GET("/:id/edit/:field", h.EditCell)
	grid.GET("/:id/view/:field", h.ViewCell)
	grid.PUT("/:id/field/:field", h.SaveCell)
}

// Index renders the full page. The record service being down still yields a page,
// with an empty table and a banner.
func (h *Handler) Index(c *gin.Context) {
	spec := filter.FromQuery(c.Request.URL.Query(), filter.FrontendPrefix)
	records, err := h.Store.List(c.Request.Context(), spec)
	page := render.NewPageView(records, spec)
	if err != nil {
		status := h.logFailure(c, "list", err)
		page.Error = apierrors.Message(err)
		c.HTML(status, render.TemplatePage, page)
		return
	}
	c.HTML(http.StatusOK, render.TemplatePage, page)
}

// ListRows answers a filter change with a new table body.
func (h *Handler) ListRows(c *gin.Context) {
	spec := filter.FromQuery(c.Request.URL.Query(), filter.FrontendPrefix)
	records, err := h.Store.List(c.Request.Context(), spec)
	if err != nil {
		h.banner(c, "list", err)
		return
	}
	c.HTML(http.StatusOK, render.TemplateRecords, render.RecordsView{Rows: render.NewRowViews(records)})
}

// CreateRecord answers the add form with the new row, appended by the client.
func (h *Handler) CreateRecord(c *gin.Context) {
	var input schema.NewRecord
	if err := c.ShouldBind(&input); err != nil {
		h.banner(c, "create", schema.ErrValidation)
		return
	}

	record, err := h.Store.Create(c.Request.Context(), input)
	if err != nil {
		h.banner(c, "create", err)
		return
	}
	c.HTML(http.StatusOK, render.TemplateRow, render.NewRowView(record))
}

// DeleteRecord answers with an empty body so the client drops the row.
// On failure the row stays and the error goes to the banner.
func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		h.banner(c, "delete", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", nil)
}

// EditCell moves one cell from Viewing to Editing.
func (h *Handler) EditCell(c *gin.Context) {
	id, field, ok := h.cellParams(c)
	if !ok {
		return
	}
	record, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		h.banner(c, "edit", err)
		return
	}
	c.HTML(http.StatusOK, render.TemplateCellEdit, render.NewEditView(record, field))
}

// ViewCell abandons an edit and shows the stored value again.
func (h *Handler) ViewCell(c *gin.Context) {
	id, field, ok := h.cellParams(c)
	if !ok {
		return
	}
	record, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		h.banner(c, "view", err)
		return
	}
	c.HTML(http.StatusOK, render.TemplateCell, render.NewCellView(record, field))
}

// SaveCell moves one cell from Editing back to Viewing with the submitted value.
// A failed save shows the value from before the edit together with the error.
func (h *Handler) SaveCell(c *gin.Context) {
	id, field, ok := h.cellParams(c)
	if !ok {
		return
	}
	value, ok := c.GetPostForm("value")
	if !ok {
		h.banner(c, "update", schema.ErrValidation)
		return
	}

	record, err := h.Store.UpdateField(c.Request.Context(), id, string(field), value)
	if err != nil {
		status := h.logFailure(c, "update", err)
		cell := render.CellView{ID: id, Field: field, Value: c.PostForm("original"), Error: apierrors.Message(err)}
		c.HTML(status, render.TemplateCell, cell)
		return
	}
	c.HTML(http.StatusOK, render.TemplateCell, render.NewCellView(record, field))
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports ready once the record service answers its health check.
// An embedded store is always ready.
func (h *Handler) Readyz(c *gin.Context) {
	pinger, ok := h.Store.(sdk.Pinger)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		h.Logger.Warn("record service not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.banner(c, "parse", schema.ErrValidation)
		return 0, false
	}
	return id, true
}

// cellParams reads the record id and field of a cell route. Fields outside the editable
// set are refused here, before the store is involved.
func (h *Handler) cellParams(c *gin.Context) (int64, schema.Field, bool) {
	id, ok := h.recordID(c)
	if !ok {
		return 0, "", false
	}
	field, err := schema.ParseField(c.Param("field"))
	if err != nil {
		h.banner(c, "parse", err)
		return 0, "", false
	}
	return id, field, true
}

// banner answers with an error message aimed at the page's error region instead of the
// element that issued the request.
func (h *Handler) banner(c *gin.Context, op string, err error) {
	status := h.logFailure(c, op, err)
	c.Header(headerRetarget, "#"+render.ErrorsID)
	c.Header(headerReswap, string(render.SwapInnerHTML))
	c.HTML(status, render.TemplateBanner, apierrors.Message(err))
}

func (h *Handler) logFailure(c *gin.Context, op string, err error) int {
	status := apierrors.StatusFor(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("grid request failed", fields...)
	} else {
		h.Logger.Debug("grid request rejected", fields...)
	}
	return status
}

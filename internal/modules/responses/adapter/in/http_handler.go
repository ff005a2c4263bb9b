package in

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kreosurvey/internal/modules/responses/dto"
	responsesin "kreosurvey/internal/modules/responses/port/in"
	apperrors "kreosurvey/internal/platform/errors"
)

// HTTPHandler serves the admin response endpoints. Callers mount it behind
// the admin auth middleware.
type HTTPHandler struct {
	usecase responsesin.Usecase
	logger  *slog.Logger
}

func NewHTTPHandler(usecase responsesin.Usecase, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{usecase: usecase, logger: logger}
}

func (h *HTTPHandler) Register(group *gin.RouterGroup) {
	group.GET("/responses", h.list)
	group.GET("/responses/export.csv", h.exportCSV)
	group.GET("/responses/:id", h.detail)
	group.POST("/responses/:id/detail", h.detailWithSummary)
	group.DELETE("/responses/:id", h.delete)
	group.GET("/summary", h.summary)
}

func (h *HTTPHandler) list(c *gin.Context) {
	records, err := h.usecase.List(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load responses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": records})
}

func (h *HTTPHandler) detail(c *gin.Context) {
	out, err := h.usecase.Detail(c.Request.Context(), dto.DetailInput{ID: c.Param("id")})
	if err != nil {
		h.fail(c, "Failed to load response", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// detailWithSummary accepts the row the dashboard already holds so a record
// deleted in the meantime can still be shown.
func (h *HTTPHandler) detailWithSummary(c *gin.Context) {
	var summary dto.RecordOutput
	if err := c.ShouldBindJSON(&summary); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	out, err := h.usecase.Detail(c.Request.Context(), dto.DetailInput{ID: c.Param("id"), Summary: &summary})
	if err != nil {
		h.fail(c, "Failed to load response", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.usecase.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "Failed to delete response", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (h *HTTPHandler) exportCSV(c *gin.Context) {
	var buf bytes.Buffer
	out, err := h.usecase.ExportCSV(c.Request.Context(), &buf)
	if err != nil {
		h.fail(c, "Failed to export responses", err)
		return
	}
	filename := fmt.Sprintf("kreo-survey-responses-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Export-Records", fmt.Sprint(out.Records))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *HTTPHandler) summary(c *gin.Context) {
	stats, err := h.usecase.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load summary", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) fail(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Response not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(message, "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("%s: %v", message, err)})
	}
}

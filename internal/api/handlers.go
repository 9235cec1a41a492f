package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JustJay7/barangay-case-dashboard/internal/analytics"
	"github.com/JustJay7/barangay-case-dashboard/internal/cache"
	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/JustJay7/barangay-case-dashboard/internal/config"
	"github.com/JustJay7/barangay-case-dashboard/internal/csvio"
	"github.com/JustJay7/barangay-case-dashboard/internal/service"
	"github.com/JustJay7/barangay-case-dashboard/internal/storage"
	"github.com/JustJay7/barangay-case-dashboard/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	svc    *service.Service
	cache  cache.Cache
	logger *logger.Logger
	cfg    *config.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *service.Service, cache cache.Cache, logger *logger.Logger, cfg *config.Config) *Handlers {
	return &Handlers{
		svc:    svc,
		cache:  cache,
		logger: logger,
		cfg:    cfg,
	}
}

// ListCases returns the cases matching the status, type and q query parameters.
func (h *Handlers) ListCases(c *gin.Context) {
	var f cases.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid filter: " + err.Error(),
		})
		return
	}

	list := h.svc.List(f)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
		"count":   len(list),
	})
}

func (h *Handlers) GetCase(c *gin.Context) {
	found, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    found,
	})
}

// CreateCase files a new case from the JSON form body.
func (h *Handlers) CreateCase(c *gin.Context) {
	var draft cases.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), draft)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created,
	})
}

// UpdateCase applies an edit. Fields missing from the body are left as they are.
func (h *Handlers) UpdateCase(c *gin.Context) {
	var patch cases.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

func (h *Handlers) UpdateStatus(c *gin.Context) {
	var req struct {
		Status cases.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

func (h *Handlers) DeleteCase(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Case %s deleted", id),
	})
}

// BulkStatus changes the status of every selected case.
func (h *Handlers) BulkStatus(c *gin.Context) {
	var req struct {
		IDs    []string     `json:"ids" binding:"required"`
		Status cases.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	updated, err := h.svc.BulkUpdateStatus(c.Request.Context(), req.IDs, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updated": updated,
		"message": fmt.Sprintf("Updated %d cases to %s", updated, req.Status),
	})
}

// BulkDelete removes the selected cases. The confirmation must be the number
// of selected cases typed back by the user.
func (h *Handlers) BulkDelete(c *gin.Context) {
	var req struct {
		IDs          []string `json:"ids" binding:"required"`
		Confirmation string   `json:"confirmation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	deleted, err := h.svc.BulkDelete(c.Request.Context(), req.IDs, req.Confirmation)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
		"message": fmt.Sprintf("Deleted %d cases", deleted),
	})
}

// ImportCases accepts a multipart upload in the "file" field or a raw CSV body.
func (h *Handlers) ImportCases(c *gin.Context) {
	body, source, err := importSource(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	defer body.Close()

	report, err := h.svc.Import(c.Request.Context(), body, source)
	if err != nil {
		switch {
		case errors.Is(err, csvio.ErrNoData):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "CSV file is empty or has no data rows",
			})
			return
		case errors.Is(err, service.ErrImportTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		case errors.Is(err, storage.ErrNotLoaded):
			h.respondError(c, err)
			return
		}
		if report == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Failed to read CSV: " + err.Error(),
			})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": len(report.Imported) > 0,
		"data":    report,
		"message": report.Summary(),
	})
}

// ExportCases downloads the selected cases, or all of them, as CSV.
func (h *Handlers) ExportCases(c *gin.Context) {
	var buf bytes.Buffer
	n, err := h.svc.Export(&buf, splitIDs(c.QueryArray("ids")))
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("barangay-cases-%s.csv", time.Now().Format(cases.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Case-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Summary returns chart data for the dashboard, filtered like ListCases.
func (h *Handlers) Summary(c *gin.Context) {
	var f cases.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid filter: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.svc.Summary(f),
	})
}

// StatusTrend returns per status counts of cases filed in the range query
// parameter: 7days, 30days (the default), monthly, 6months or yearly.
func (h *Handlers) StatusTrend(c *gin.Context) {
	rangeName := c.DefaultQuery("range", analytics.DefaultRange)
	points, err := h.svc.StatusTrend(rangeName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
			"ranges":  analytics.Ranges,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    points,
		"range":   rangeName,
	})
}

func (h *Handlers) RecentCases(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "limit must be a positive number",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.svc.Recent(limit),
	})
}

// ListImports returns the import history.
func (h *Handlers) ListImports(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	logs, total, err := h.svc.Imports(page, limit)
	if err != nil {
		h.logger.Error("Failed to list imports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list imports",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// StorageInfo reports which store backs the case set.
func (h *Handlers) StorageInfo(c *gin.Context) {
	info := gin.H{
		"type":        h.svc.StorageType(),
		"fileEnabled": h.cfg.FileStorageEnabled,
	}
	if h.cfg.FileStorageEnabled {
		info["path"] = h.cfg.CasesFile
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    info,
	})
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"office":  h.cfg.OfficeName,
		"storage": h.svc.StorageType(),
		"cases":   len(h.svc.List(cases.Filter{})),
		"cache":   h.cache.Stats(),
		"time":    time.Now().Unix(),
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	stats := h.cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// respondError maps service errors onto status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var verr *cases.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
			"field":   verr.Field,
		})
	case errors.Is(err, cases.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, cases.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, cases.ErrConfirmationMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, storage.ErrNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	default:
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save cases: " + err.Error(),
		})
	}
}

func importSource(c *gin.Context) (io.ReadCloser, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing CSV file: %w", err)
		}
		f, err := header.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open upload: %w", err)
		}
		return f, header.Filename, nil
	}
	if c.Request.Body == nil {
		return nil, "", errors.New("missing CSV body")
	}
	return c.Request.Body, "request body", nil
}

// splitIDs accepts both ids=a&ids=b and ids=a,b.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

const (
	statusOK       = "OK"
	statusFailed   = "FAILED"
	statusDegraded = "DEGRADED"
)

type databaseHealth struct {
	Connection string `json:"connection"`
	Read       string `json:"read"`
	Write      string `json:"write"`
}

type memoryUsage struct {
	Bytes uint64 `json:"bytes"`
	Human string `json:"human"`
}

type healthResponse struct {
	Status        string         `json:"status"`
	Database      databaseHealth `json:"database"`
	LastCronRun   *time.Time     `json:"last_cron_run"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	MemoryUsage   memoryUsage    `json:"memory_usage"`
	Timestamp     time.Time      `json:"timestamp"`
}

func okOrFailed(ok bool) string {
	if ok {
		return statusOK
	}
	return statusFailed
}

// health reports storage probes, the last import and process statistics.
// It answers 503 when the database fails a probe.
func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()
	resp := healthResponse{Status: statusOK}

	if s.storage != nil {
		h := s.storage.Probe(ctx)
		resp.Database = databaseHealth{
			Connection: okOrFailed(h.Connected),
			Read:       okOrFailed(h.Readable),
			Write:      okOrFailed(h.Writable),
		}
		if !h.Healthy() {
			resp.Status = statusDegraded
			s.log.Warn("database health check failed", zap.Error(h.Err))
		}
	}

	if s.sync != nil {
		last, err := s.sync.LastRunStartedAt(ctx)
		if err != nil {
			s.log.Warn("last import lookup failed", zap.Error(err))
		}
		resp.LastCronRun = last
	}

	now := s.now()
	uptime := now.Sub(s.startedAt)
	resp.UptimeSeconds = math.Round(uptime.Seconds()*100) / 100
	resp.Uptime = humanize.RelTime(s.startedAt, now, "", "")

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	resp.MemoryUsage = memoryUsage{Bytes: mem.Sys, Human: humanize.IBytes(mem.Sys)}
	resp.Timestamp = now.UTC()

	status := http.StatusOK
	if resp.Status != statusOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// productResponse is the JSON form of a product.
type productResponse struct {
	Code      int64     `json:"code"`
	Status    string    `json:"status"`
	ImportedT time.Time `json:"imported_t"`
	domain.ProductAttributes
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		Code:              p.Code.Int64(),
		Status:            p.Status.String(),
		ImportedT:         p.ImportedAt.UTC(),
		ProductAttributes: p.ProductAttributes,
	}
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type productListResponse struct {
	Data       []productResponse `json:"data"`
	Pagination pagination        `json:"pagination"`
}

// productPatchRequest is a partial update. Omitted or null attributes are
// left untouched; the code cannot be changed.
type productPatchRequest struct {
	domain.ProductAttributes
	Status *string `json:"status"`
}

type messageResponse struct {
	Message string           `json:"message"`
	Data    *productResponse `json:"data,omitempty"`
}

func (s *Server) listProducts(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(c, "limit", domain.DefaultPageSize)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if limit < 1 {
		limit = 1
	}

	result, err := s.products.List(c.Request.Context(), page, limit)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}

	resp := productListResponse{
		Data: make([]productResponse, 0, len(result.Products)),
		Pagination: pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	}
	for _, p := range result.Products {
		resp.Data = append(resp.Data, toProductResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getProduct(c *gin.Context) {
	code, ok := productCodeParam(c)
	if !ok {
		return
	}

	p, err := s.products.Get(c.Request.Context(), code)
	if err != nil {
		s.respondProductError(c, code, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (s *Server) updateProduct(c *gin.Context) {
	code, ok := productCodeParam(c)
	if !ok {
		return
	}

	var req productPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	patch := driving.ProductPatch{Attributes: req.ProductAttributes}
	if req.Status != nil {
		status, err := domain.ParseProductStatus(*req.Status)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		patch.Status = &status
	}

	p, err := s.products.Update(c.Request.Context(), code, patch)
	if err != nil {
		s.respondProductError(c, code, err)
		return
	}
	data := toProductResponse(*p)
	c.JSON(http.StatusOK, messageResponse{Message: "Product updated successfully", Data: &data})
}

func (s *Server) deleteProduct(c *gin.Context) {
	code, ok := productCodeParam(c)
	if !ok {
		return
	}

	if err := s.products.Delete(c.Request.Context(), code); err != nil {
		s.respondProductError(c, code, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Product moved to trash successfully"})
}

// runEntryResponse is the JSON form of a ledger entry.
type runEntryResponse struct {
	ID               int64      `json:"id"`
	RunID            string     `json:"run_id"`
	Filename         string     `json:"filename"`
	ProductsImported int        `json:"products_imported"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	ErrorMessage     *string    `json:"error_message"`
}

func toRunEntryResponse(e domain.RunEntry) runEntryResponse {
	r := runEntryResponse{
		ID:               e.ID,
		RunID:            e.RunID,
		Filename:         e.SourceName,
		ProductsImported: e.RecordsImported,
		Status:           e.State.String(),
		StartedAt:        e.StartedAt.UTC(),
		CompletedAt:      e.CompletedAt,
	}
	if e.ErrorDetail != "" {
		detail := e.ErrorDetail
		r.ErrorMessage = &detail
	}
	return r
}

func (s *Server) listImports(c *gin.Context) {
	limit, err := queryInt(c, "limit", domain.DefaultPageSize)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.runs.Recent(c.Request.Context(), limit)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}

	data := make([]runEntryResponse, 0, len(entries))
	for _, e := range entries {
		data = append(data, toRunEntryResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// respondProductError reports a missing product with the code in the message.
func (s *Server) respondProductError(c *gin.Context, code domain.ProductCode, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		respondError(c, http.StatusNotFound, fmt.Sprintf("Product with code %s not found", code))
		return
	}
	s.respondDomainError(c, err)
}

// productCodeParam parses the :code path segment, responding 400 on failure.
func productCodeParam(c *gin.Context) (domain.ProductCode, bool) {
	code, err := domain.ParseProductCode(c.Param("code"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return code, true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", name, raw)
	}
	return n, nil
}

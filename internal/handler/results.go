package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"newslens/internal/repository"
)

// ResultsHandler exposes the stored run history read-only.
type ResultsHandler struct {
	Repo repository.Repository
}

func (h *ResultsHandler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.GET("/runs", h.listRuns)
	v1.GET("/correlations", h.listCorrelations)
}

func (h *ResultsHandler) listRuns(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusServiceUnavailable, "run history disabled")
		return
	}
	params := repository.ListRunsParams{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if task := strings.TrimSpace(c.Query("task")); task != "" {
		params.Task = &task
	}
	items, err := h.Repo.ListRuns(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	OkList(c, items, listMeta{Count: len(items), Limit: params.Limit, Offset: params.Offset})
}

func (h *ResultsHandler) listCorrelations(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusServiceUnavailable, "run history disabled")
		return
	}
	params := repository.ListCorrelationsParams{
		Limit:  queryInt(c, "limit", 100),
		Offset: queryInt(c, "offset", 0),
	}
	if ticker := strings.TrimSpace(c.Query("ticker")); ticker != "" {
		params.Ticker = &ticker
	}
	if raw := strings.TrimSpace(c.Query("run_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid run_id")
			return
		}
		params.RunID = &id
	}
	items, err := h.Repo.ListCorrelationRows(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	OkList(c, items, listMeta{Count: len(items), Limit: params.Limit, Offset: params.Offset})
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

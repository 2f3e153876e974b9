package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"sampletrack/internal/report"
)

// StatusResponse reports service health and the latest run.
type StatusResponse struct {
	Ready      bool   `json:"ready"`
	MasterFile string `json:"master_file"`
	LastRunID  string `json:"last_run_id,omitempty"`
	LastRunAt  string `json:"last_run_at,omitempty"`
	LastState  string `json:"last_state,omitempty"`
}

// GetStatus reports the latest recorded run.
// GET /api/status
func (s *Server) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Ready:      true,
		MasterFile: s.cfg.Paths.MasterPath,
	}
	runs, err := s.store.ListRuns(1)
	if err == nil && len(runs) > 0 {
		resp.LastRunID = runs[0].ID
		resp.LastRunAt = runs[0].StartedAt.Format("2006-01-02 15:04:05")
		resp.LastState = runs[0].Status
	}
	c.JSON(http.StatusOK, resp)
}

// TriggerRun executes the pipeline synchronously and returns its result.
// Overlapping triggers are rejected, not queued.
// POST /api/runs
func (s *Server) TriggerRun(c *gin.Context) {
	result, err := s.service.Run()
	if errors.Is(err, report.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListRuns returns recent runs, newest first.
// GET /api/runs?limit=20
func (s *Server) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	runs, err := s.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun returns one run record.
// GET /api/runs/:id
func (s *Server) GetRun(c *gin.Context) {
	run, err := s.store.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListWarnings returns a run's data-quality findings.
// GET /api/runs/:id/warnings
func (s *Server) ListWarnings(c *gin.Context) {
	warnings, err := s.store.ListWarnings(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"warnings": warnings})
}

// ListOutputs returns the files a run produced.
// GET /api/runs/:id/outputs
func (s *Server) ListOutputs(c *gin.Context) {
	outputs, err := s.store.ListOutputs(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outputs": outputs})
}

// DownloadOutput streams one produced report file. The path must be one
// the run recorded; arbitrary paths are rejected.
// GET /api/runs/:id/outputs/download?path=...
func (s *Server) DownloadOutput(c *gin.Context) {
	wanted := c.Query("path")
	if wanted == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing path parameter"})
		return
	}

	outputs, err := s.store.ListOutputs(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, out := range outputs {
		if out.Path != wanted {
			continue
		}
		c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(out.Path)+`"`)
		c.File(out.Path)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "output not recorded for this run"})
}

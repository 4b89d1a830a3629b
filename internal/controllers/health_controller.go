package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/ratelimit"
)

type HealthController struct {
	storage string
	stats   *ratelimit.MemoryStats
}

// NewHealthController reports the storage backend by name. stats may be nil.
func NewHealthController(storage string, stats *ratelimit.MemoryStats) *HealthController {
	return &HealthController{storage: storage, stats: stats}
}

type healthResponse struct {
	Status    string              `json:"status"`
	Storage   string              `json:"storage"`
	RateLimit *ratelimit.Counters `json:"rateLimit,omitempty"`
}

// Health handles GET /health
func (hc *HealthController) Health(c *gin.Context) {
	resp := healthResponse{Status: "ok", Storage: hc.storage}
	if hc.stats != nil {
		total := hc.stats.Total()
		resp.RateLimit = &total
	}
	c.JSON(http.StatusOK, resp)
}

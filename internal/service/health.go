package service

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthResponse is the body returned by checkHealth.
type healthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks"`
}

// checkHealth reports whether the service can reach its database. It responds with OK if so and
// with SERVICE UNAVAILABLE otherwise.
//
// Example REST API call:
//
//	> curl http://localhost:8080/health
//
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  healthResponse
// @Failure      503  {object}  healthResponse
// @Router       /health [get]
func (s *Service) checkHealth(c *gin.Context) {
	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: s.config.Primary.Env,
		Checks:      map[string]string{"database": "healthy"},
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Database.PingTimeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		Logger(c).Warn().Err(err).Msg("database health check failed")
		response.Status = "unhealthy"
		response.Checks["database"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	c.IndentedJSON(status, response)
}

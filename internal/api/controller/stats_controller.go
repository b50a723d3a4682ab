package controller

import (
	"ctchen222/knn-tic-tac-toe/internal/api/response"
	"ctchen222/knn-tic-tac-toe/internal/api/service"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// StatsController serves the game history of players.
type StatsController struct {
	statsService service.StatsService
}

func NewStatsController(statsService service.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// GetStats returns the win/loss/tie counts of the player in the path.
func (sc *StatsController) GetStats(c *gin.Context) {
	stats, err := sc.statsService.PlayerStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to load player stats", "player.id", c.Param("id"), "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to load stats")
		return
	}

	response.SuccessResponse(c, stats)
}

// GetRecentGames lists the latest finished games of the player in the path.
func (sc *StatsController) GetRecentGames(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = n
	}

	games, err := sc.statsService.RecentGames(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to load recent games", "player.id", c.Param("id"), "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to load games")
		return
	}

	response.SuccessResponseList(c, games)
}

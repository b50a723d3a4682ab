package server

import (
	"ctchen222/knn-tic-tac-toe/internal/api/controller"
	"ctchen222/knn-tic-tac-toe/internal/api/response"
	"ctchen222/knn-tic-tac-toe/internal/api/service"
	"ctchen222/knn-tic-tac-toe/internal/bot"
	"ctchen222/knn-tic-tac-toe/internal/hub"
	"ctchen222/knn-tic-tac-toe/internal/player"
	"ctchen222/knn-tic-tac-toe/internal/repository"
	"ctchen222/knn-tic-tac-toe/internal/room"
	"ctchen222/knn-tic-tac-toe/internal/session"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Hub          *hub.Hub
	UserService  service.UserService
	StatsService service.StatsService
	Sessions     repository.SessionRepository
	Results      repository.ResultRepository
	Examples     []bot.Example
	Neighbors    int
}

type Server struct {
	engine   *gin.Engine
	deps     Deps
	upgrader websocket.Upgrader
}

func NewServer(deps Deps) *Server {
	s := &Server{
		engine: gin.New(),
		deps:   deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.registerHandlers()
	return s
}

// Engine returns the HTTP handler of the server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHandlers() {
	userController := controller.NewUserController(s.deps.UserService)
	statsController := controller.NewStatsController(s.deps.StatsService)

	api := s.engine.Group("/api")
	api.POST("/register", userController.Register)
	api.POST("/login", userController.Login)
	api.POST("/guest", userController.GuestLogin)
	api.GET("/players/:id/stats", statsController.GetStats)
	api.GET("/players/:id/games", statsController.GetRecentGames)

	s.engine.GET("/ws", s.handleWebSocket)
}

func (s *Server) newSelector(difficulty bot.Difficulty) session.MoveSelector {
	return bot.NewCalculator(s.deps.Examples, s.deps.Neighbors, difficulty)
}

// handleWebSocket upgrades the connection, binds it to a session and
// serves the player's messages until the connection closes.
//
// Query parameters: token (optional JWT, a guest ID is generated without
// it), session (resume an earlier session), difficulty (easy, medium, knn).
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))

	playerID := uuid.New().String()
	if token := c.Query("token"); token != "" {
		id, err := s.deps.UserService.ParseToken(token)
		if err != nil {
			slog.WarnContext(ctx, "Rejected websocket with invalid token", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid token")
			span.End()
			response.ErrorResponse(c, http.StatusUnauthorized, "invalid token")
			return
		}
		playerID = id
	}
	span.SetAttributes(attribute.String("player.id", playerID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		span.End()
		return
	}

	p := player.NewPlayer(playerID, conn)
	rm := room.NewRoom(p, s.deps.Sessions, s.deps.Results, s.newSelector)
	rm.Open(ctx, c.Query("session"), c.Query("difficulty"))
	span.SetAttributes(
		attribute.String("session.id", rm.ID),
		attribute.String("game.difficulty", string(rm.Difficulty)),
	)
	span.End()

	s.deps.Hub.Register(rm)
	defer s.deps.Hub.Unregister(rm)
	rm.ReadPump(c.Request.Context())
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

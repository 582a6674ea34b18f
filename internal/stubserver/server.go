// Package stubserver is a local in-memory implementation of the task
// service REST contract, used for development and integration tests.
package stubserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/task"
)

const accountKey = "stubserver.account"

// Server serves the REST contract over gin.
type Server struct {
	engine *gin.Engine
	store  *Store
	logger *log.Logger
}

// New constructs the server with routes and middleware configured.
func New(store *Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine: router,
		store:  store,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves on addr until the listener fails or ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.logger.Info("stub server listening", "addr", addr)

	srv := &http.Server{Addr: addr, Handler: s.engine.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("stub server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		auth := api.Group("/auth")
		{
			auth.POST("/login", s.handleLogin)
			auth.POST("/register", s.handleRegister)
		}

		tasks := api.Group("/tasks", s.requireAuth)
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.DELETE(":id", s.handleDeleteTask)
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireAuth resolves the bearer token to an account or rejects the
// request with 401.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
		return
	}

	acct, ok := s.store.Resolve(token)
	if !ok {
		s.logger.Warn("unknown token rejected", "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		return
	}

	c.Set(accountKey, acct)
	c.Next()
}

func (s *Server) handleLogin(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	id, ok := s.store.Login(creds.Email, creds.Password)
	if !ok {
		s.logger.Warn("login rejected", "email", creds.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}

	s.logger.Info("login", "email", creds.Email)
	c.JSON(http.StatusOK, id)
}

func (s *Server) handleRegister(c *gin.Context) {
	var reg service.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if reg.Email == "" || reg.Password == "" {
		s.respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	if err := s.store.AddAccount(reg.Email, reg.Password, reg.Name); err != nil {
		s.respondError(c, http.StatusConflict, err.Error())
		return
	}

	s.logger.Info("registered", "email", reg.Email)
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

func (s *Server) handleListTasks(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", 10)
	if page < 1 || pageSize < 1 {
		s.respondError(c, http.StatusBadRequest, "page and pageSize must be positive")
		return
	}

	filter := task.FilterAll
	if raw := c.Query("status"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || !task.Status(v).Valid() {
			s.respondError(c, http.StatusBadRequest, "unknown status value")
			return
		}
		filter = task.FilterBy(task.Status(v))
	}

	c.JSON(http.StatusOK, s.store.List(page, pageSize, filter))
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req task.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if verr := req.Validate(); verr != nil {
		s.respondError(c, http.StatusBadRequest, verr.Error())
		return
	}

	acct := c.MustGet(accountKey).(Account)
	created := s.store.Create(req, acct.Name)
	s.logger.Info("task created", "id", created.ID, "title", created.Title)
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req task.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if verr := req.Validate(); verr != nil {
		s.respondError(c, http.StatusBadRequest, verr.Error())
		return
	}

	updated, found := s.store.Update(id, req)
	if !found {
		s.respondError(c, http.StatusNotFound, "task not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if !s.store.Delete(id) {
		s.respondError(c, http.StatusNotFound, "task not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid identifier"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// respondError returns the message in the envelope the client reads
// verbatim.
func (s *Server) respondError(c *gin.Context, status int, message string) {
	s.logger.Warn("request rejected", "path", c.FullPath(), "status", status, "message", message)
	c.JSON(status, gin.H{"message": message})
}

// Package api exposes the topic feeds over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/aggregate"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/config"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/storage"
)

type Server struct {
	store     *storage.Store
	pipelines map[string]*aggregate.Pipeline
	cfg       *config.Config
	log       *zap.SugaredLogger
}

func NewServer(store *storage.Store, pipelines map[string]*aggregate.Pipeline, cfg *config.Config, log *zap.SugaredLogger) *Server {
	return &Server{store: store, pipelines: pipelines, cfg: cfg, log: log}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	for topic := range s.pipelines {
		g := v1.Group("/" + topic)
		g.GET("", s.list(topic))
		g.GET("/sources", s.sources(topic))
		g.POST("/fetch", s.fetch(topic))
		g.POST("/clear", s.clear(topic))
		g.GET("/stats", s.stats(topic))
		g.GET("/export", s.export(topic))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) list(topic string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit <= 0 {
			limit = 50
		}
		source := c.Query("source")

		items, err := s.store.List(c.Request.Context(), topic, limit, source)
		if err != nil {
			s.log.Errorw("list failed", "topic", topic, "err", err)
			internalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"code":        "ok",
			"message":     "success",
			"count":       len(items),
			"last_update": s.store.LastUpdate(c.Request.Context(), topic),
			"data":        items,
		})
	}
}

func (s *Server) sources(topic string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code": "ok",
			"data": s.pipelines[topic].Sources(),
		})
	}
}

type fetchRequest struct {
	Days     int      `json:"days"`
	Sources  []string `json:"sources"`
	MaxItems int      `json:"max_items"`
}

// fetch runs the topic pipeline on demand, stores the result and
// refreshes the serving cache.
func (s *Server) fetch(topic string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fetchRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": err.Error()})
				return
			}
		}
		if req.Days <= 0 {
			req.Days = s.cfg.FetchDays
		}
		if req.MaxItems <= 0 {
			req.MaxItems = s.cfg.MaxItems
		}

		ctx := c.Request.Context()
		items := s.pipelines[topic].Run(ctx, req.Days, req.Sources, req.MaxItems)
		if err := s.store.SaveBatch(ctx, topic, items); err != nil {
			s.log.Errorw("save failed", "topic", topic, "err", err)
			internalError(c)
			return
		}
		s.store.CacheItems(ctx, topic, items)
		c.JSON(http.StatusOK, gin.H{
			"code":    "ok",
			"message": "success",
			"count":   len(items),
		})
	}
}

// clear drops both the topic's archived rows and its serving cache, so a
// later fetch starts from nothing.
func (s *Server) clear(topic string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := s.store.Clear(ctx, topic); err != nil {
			s.log.Errorw("clear failed", "topic", topic, "err", err)
			internalError(c)
			return
		}
		if err := s.store.ClearCache(ctx, topic); err != nil {
			s.log.Errorw("clear cache failed", "topic", topic, "err", err)
			internalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "cleared"})
	}
}

func (s *Server) stats(topic string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := s.store.Stats(c.Request.Context(), topic)
		if err != nil {
			s.log.Errorw("stats failed", "topic", topic, "err", err)
			internalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": "ok", "data": st})
	}
}

func (s *Server) export(topic string) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := s.store.Export(c.Request.Context(), topic)
		if err != nil {
			s.log.Errorw("export failed", "topic", topic, "err", err)
			internalError(c)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+topic+`.json"`)
		c.JSON(http.StatusOK, items)
	}
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}

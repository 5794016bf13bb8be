package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soochol/postplan/internal/metrics"
	"github.com/soochol/postplan/internal/services"
	"github.com/soochol/postplan/internal/storage"
)

// Metric names recorded by the HTTP layer.
const (
	MetricRequestDuration = "http.request_ms"
	MetricServerErrors    = "http.5xx"
)

type Server struct {
	postSvc        *services.PostService
	scheduleSvc    *services.ScheduleService
	bulkSvc        *services.BulkService
	calendarSvc    *services.CalendarService
	metrics        *metrics.Registry
	media          storage.Storage
	maxUpload      int64
	allowedOrigins []string
	jwtSecret      string
}

func NewServer(
	postSvc *services.PostService,
	scheduleSvc *services.ScheduleService,
	bulkSvc *services.BulkService,
	calendarSvc *services.CalendarService,
) *Server {
	return &Server{
		postSvc:     postSvc,
		scheduleSvc: scheduleSvc,
		bulkSvc:     bulkSvc,
		calendarSvc: calendarSvc,
	}
}

// SetMetrics configures the registry exposed at /api/metrics and fed by
// request timings.
func (s *Server) SetMetrics(reg *metrics.Registry) {
	s.metrics = reg
}

// SetMedia enables the /api/media upload endpoints. maxBytes <= 0 uses the
// default limit.
func (s *Server) SetMedia(st storage.Storage, maxBytes int64) {
	s.media = st
	s.maxUpload = maxBytes
}

// SetAllowedOrigins configures the CORS origins. Empty allows any origin.
func (s *Server) SetAllowedOrigins(origins []string) {
	s.allowedOrigins = origins
}

// SetJWTSecret enables HS256 bearer auth on /api.
func (s *Server) SetJWTSecret(secret string) {
	s.jwtSecret = secret
}

func (s *Server) Handler() http.Handler {
	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(s.recordMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Route("/posts", func(r chi.Router) {
			r.Post("/", s.createPost)
			r.Get("/", s.listPosts)
			r.Get("/export", s.exportPosts)
			r.Get("/{id}", s.getPost)
			r.Put("/{id}", s.updatePost)
			r.Delete("/{id}", s.deletePost)
		})
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", s.createSchedule)
			r.Get("/", s.listSchedules)
			r.Post("/preview", s.previewSchedule)
			r.Get("/{id}", s.getSchedule)
			r.Put("/{id}", s.updateSchedule)
			r.Delete("/{id}", s.deleteSchedule)
			r.Post("/{id}/pause", s.pauseSchedule)
			r.Post("/{id}/resume", s.resumeSchedule)
		})
		r.Route("/bulk", func(r chi.Router) {
			r.Post("/", s.commitBulk)
			r.Post("/preview", s.previewBulk)
			r.Post("/export", s.exportBulk)
		})
		r.Route("/media", func(r chi.Router) {
			r.Post("/", s.uploadMedia)
			r.Get("/", s.listMedia)
			r.Get("/{id}", s.serveMedia)
			r.Delete("/{id}", s.deleteMedia)
		})
		r.Post("/calendar", s.monthCalendar)
		r.Get("/metrics", s.getMetrics)
	})

	return r
}

// recordMetrics times every request and counts server errors.
func (s *Server) recordMetrics(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.metrics.Observe(MetricRequestDuration, start)
		if ww.Status() >= 500 {
			s.metrics.Inc(MetricServerErrors, time.Now())
			s.metrics.Inc("http."+strconv.Itoa(ww.Status()), time.Now())
		}
	})
}

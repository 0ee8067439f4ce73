package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/limbo/placebetween/docs"
	"github.com/limbo/placebetween/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mx              *chi.Mux
	httpServer      *http.Server
	userService     service.UserServiceI
	mirrorService   service.MirrorServiceI
	reminderService service.ReminderServiceI
	jwtService      JWTServiceI
	internalToken   string
}

type ServicesList struct {
	UserService     service.UserServiceI
	MirrorService   service.MirrorServiceI
	ReminderService service.ReminderServiceI
	JwtService      JWTServiceI
	// Shared secret expected in X-Internal-Token by the reminders trigger
	InternalToken string
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:              chi.NewMux(),
		userService:     servicesOptions.UserService,
		mirrorService:   servicesOptions.MirrorService,
		reminderService: servicesOptions.ReminderService,
		jwtService:      servicesOptions.JwtService,
		internalToken:   servicesOptions.InternalToken,
	}
	s.mountEndpoints()
	return s
}

func (s *Server) mountEndpoints() {
	s.mx.Use(middleware.Recoverer, s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Get("/health", s.Health)
	s.mx.Handle("/metrics", promhttp.Handler())
	s.mx.Get("/swagger/*", httpSwagger.WrapHandler)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)
			r.Get("/mirror/range", s.MirrorRange)
			r.Get("/mirror/week", s.MirrorWeek)
			r.Get("/mirror/month", s.MirrorMonth)
		})
		r.With(s.InternalTokenMiddleware).Post("/internal/reminders/send", s.SendReminders)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mx.ServeHTTP(w, r)
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mx,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      3 * time.Minute,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

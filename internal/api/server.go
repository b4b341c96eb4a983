package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/limbo/virtualpet/internal/service"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	mx          *chi.Mux
	userService service.UserServiceI
	petService  service.PetServiceI
	jwtService  JWTServiceI
}

type ServicesList struct {
	UserService service.UserServiceI
	PetService  service.PetServiceI
	JwtService  JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:          chi.NewMux(),
		userService: servicesOptions.UserService,
		petService:  servicesOptions.PetService,
		jwtService:  servicesOptions.JwtService,
	}
	s.mountEndpoints()
	return s
}

func (s *Server) mountEndpoints() {
	s.mx.Use(s.RequestIDMiddleware, middleware.RealIP, s.SettingUpLoggerMiddleware, middleware.Recoverer)
	s.mx.Get("/health", s.Health)
	s.mx.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
	})
	s.mx.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)
		r.Route("/pets", func(r chi.Router) {
			r.Get("/", s.ListPets)
			r.Post("/", s.CreatePet)
			r.Get("/{id}", s.GetPet)
			r.Put("/{id}", s.UpdatePet)
			r.Delete("/{id}", s.DeletePet)
			r.Post("/{id}/actions/{action}", s.ActOnPet)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.AdminMiddleware)
			r.Get("/users", s.AdminListUsers)
			r.Get("/users/{id}", s.AdminGetUser)
			r.Delete("/users/{id}", s.AdminDeleteUser)
			r.Get("/users/{id}/pets", s.AdminListUserPets)
			r.Delete("/users/{id}/pets/{petID}", s.AdminDeleteUserPet)
			r.Get("/pets", s.AdminListPets)
			r.Get("/pets/{id}", s.GetPet)
			r.Delete("/pets/{id}", s.DeletePet)
			r.Post("/pets/{id}/actions/{action}", s.ActOnPet)
		})
	})
}

func (s *Server) Handler() http.Handler {
	return s.mx
}

// Run serves until ctx is done, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.mx,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("api server started", slog.String("address", address))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("server shutdown error: " + err.Error())
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("api server stopped")
	return nil
}

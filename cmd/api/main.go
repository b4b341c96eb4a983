// @title Virtual pet API
// @description API for the virtual pet care service
// @BasePath /
// @schemes http
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/limbo/virtualpet/internal/api"
	"github.com/limbo/virtualpet/internal/repository"
	"github.com/limbo/virtualpet/internal/repository/memory"
	"github.com/limbo/virtualpet/internal/service"
	"github.com/limbo/virtualpet/internal/vitals"
	"github.com/limbo/virtualpet/pkg/cleanup"
	"github.com/limbo/virtualpet/pkg/config"
	jwtservice "github.com/limbo/virtualpet/pkg/jwt_service"
	"golang.org/x/sync/errgroup"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))
	defer cleanup.CleanUp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tuning := vitals.DefaultTuning()
	if cfg.TuningFile != "" {
		loaded, err := vitals.LoadTuning(cfg.TuningFile)
		if err != nil {
			log.Fatal("loading tuning error: " + err.Error())
		}
		tuning = loaded
	}
	if cfg.DecayInterval != nil {
		tuning.Decay.Interval = *cfg.DecayInterval
	}
	engine := vitals.NewEngine(tuning)

	var (
		usersRepo repository.UsersRepositoryI
		petsRepo  repository.PetsRepositoryI
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		usersRepo, petsRepo = memory.NewUsersRepo(store), memory.NewPetsRepo(store)
		slog.Warn("using in-memory storage, data is lost on restart")
	default:
		pool, err := repository.Connect(ctx, &repository.PGCfg{
			Address:  cfg.Postgres.Address,
			Username: cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DB:       cfg.Postgres.DB,
		})
		if err != nil {
			log.Fatal("connecting to postgres error: " + err.Error())
		}
		usersRepo, petsRepo = repository.NewUsersRepoWithConn(pool), repository.NewPetsRepoWithConn(pool)
	}

	userService := service.NewUserService(usersRepo)
	petService := service.NewPetService(petsRepo, engine)
	seedAdmin(ctx, userService, cfg.Admin)

	serv := api.New(&api.ServicesList{
		UserService: userService,
		PetService:  petService,
		JwtService:  jwtservice.New(cfg.JWTSecret, cfg.TokenTTL),
	})
	worker := service.NewDecayWorker(petsRepo, engine, tuning.Decay.Interval, slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serv.Run(gctx, cfg.APIAddress)
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		slog.Error("server error", slog.String("error", err.Error()))
	}
}

func seedAdmin(ctx context.Context, users *service.UserService, admin config.AdminConfig) {
	if admin.Email == "" {
		return
	}
	user, created, err := users.EnsureAdmin(ctx, &service.RegisterRequest{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
	})
	if err != nil {
		log.Fatal("seeding admin error: " + err.Error())
	}
	if created {
		slog.Info("admin account created", slog.String("uid", user.ID.String()))
	}
}

func logLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

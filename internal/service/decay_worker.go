package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/internal/repository"
	"github.com/limbo/virtualpet/internal/vitals"
	"github.com/limbo/virtualpet/pkg/entity"
	"golang.org/x/sync/errgroup"
)

const decayParallelism = 4

var errAlreadyPassed = errors.New("pet already passed")

type DecayStats struct {
	Decayed int
	Died    int
}

// DecayWorker applies passive decay to every living pet once per interval.
type DecayWorker struct {
	repo     repository.PetsRepositoryI
	engine   *vitals.Engine
	interval time.Duration
	logger   *slog.Logger
}

func NewDecayWorker(petsRepo repository.PetsRepositoryI, engine *vitals.Engine, interval time.Duration, logger *slog.Logger) *DecayWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecayWorker{
		repo:     petsRepo,
		engine:   engine,
		interval: interval,
		logger:   logger.With(slog.String("component", "decay_worker")),
	}
}

// Run blocks until ctx is done. A non-positive interval disables decay.
func (w *DecayWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.logger.Info("passive decay disabled")
		<-ctx.Done()
		return nil
	}
	w.logger.Info("passive decay started", slog.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("passive decay stopped")
			return nil
		case <-ticker.C:
			stats, err := w.Tick(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("decay tick failed", slog.String("error", err.Error()))
				continue
			}
			w.logger.Info("decay tick finished", slog.Int("decayed", stats.Decayed), slog.Int("died", stats.Died))
		}
	}
}

// Tick decays every living pet once. Pets removed or passed meanwhile are skipped.
func (w *DecayWorker) Tick(ctx context.Context) (DecayStats, error) {
	ids, err := w.repo.ListAliveIDs(ctx)
	if err != nil {
		return DecayStats{}, errors.New("listing alive pets error: " + err.Error())
	}
	var decayed, died atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decayParallelism)
	for _, id := range ids {
		g.Go(func() error {
			return w.decayOne(gctx, id, &decayed, &died)
		})
	}
	err = g.Wait()
	return DecayStats{Decayed: int(decayed.Load()), Died: int(died.Load())}, err
}

func (w *DecayWorker) decayOne(ctx context.Context, id uuid.UUID, decayed, died *atomic.Int64) error {
	var res vitals.Result
	_, err := w.repo.Mutate(ctx, id, func(p *entity.Pet) error {
		if p.Passed() {
			return errAlreadyPassed
		}
		res = w.engine.Decay(*p)
		*p = res.Pet
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errAlreadyPassed), errors.Is(err, errorvalues.ErrPetNotFound):
		return nil
	default:
		return errors.New("decaying pet " + id.String() + " error: " + err.Error())
	}
	decayed.Add(1)
	if res.Died {
		died.Add(1)
		w.logger.Info("pet passed away from neglect", slog.String("pet_id", id.String()))
	}
	return nil
}

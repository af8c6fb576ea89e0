package bootstrap

import (
	"context"
	"os"
	"sync"

	"market_server/adapter/in/worker"
	"market_server/config"
	"market_server/internal/stream"
	"market_server/pkg/logger"

	"github.com/rs/zerolog"
)

type Worker struct {
	pool      *worker.Pool
	consumer  *stream.Consumer
	scheduler *worker.RefreshScheduler
	deps      *Dependencies
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	zlog      zerolog.Logger
}

func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "worker").Logger()

	handler := worker.NewHandler(deps.BehaviorService)

	defaultConfig := worker.DefaultPoolConfig()
	poolConfig := &worker.PoolConfig{
		MaxWorkers:       cfg.WorkerMax,
		BatchSize:        cfg.WorkerBatchSize,
		WorkerChanSize:   cfg.WorkerChanSize,
		MaxRetries:       cfg.WorkerMaxRetries,
		JobTimeout:       defaultConfig.JobTimeout,
		JobTimeoutByType: defaultConfig.JobTimeoutByType,
	}
	if poolConfig.MaxWorkers <= 0 {
		poolConfig.MaxWorkers = defaultConfig.MaxWorkers
	}
	if poolConfig.BatchSize <= 0 {
		poolConfig.BatchSize = defaultConfig.BatchSize
	}
	if poolConfig.WorkerChanSize <= 0 {
		poolConfig.WorkerChanSize = defaultConfig.WorkerChanSize
	}

	pool := worker.NewPool(handler, poolConfig, zlog)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		pool:   pool,
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		zlog:   zlog,
	}

	// Redis Stream consumer, only when Redis is available
	if deps.Stream != nil {
		w.consumer = stream.NewConsumer(deps.Stream, pool, cfg.WorkerID)
	} else {
		logger.Warn("Redis not available, worker will only process direct submissions")
	}

	// Similar-user refresh scheduler
	if cfg.SchedulerEnabled && deps.Publisher != nil {
		w.scheduler = worker.NewRefreshScheduler(deps.ProfileRepo, deps.Publisher, &worker.SchedulerConfig{
			Interval:     cfg.RefreshInterval,
			StalenessSec: cfg.RefreshStalenessSec,
			BatchSize:    cfg.RefreshBatchSize,
		}, zlog)
	}

	return w, cleanup, nil
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pool.Start()
	}()

	if w.consumer != nil {
		w.zlog.Info().Msg("starting Redis Stream consumer...")
		w.consumer.Start(w.ctx)
	}

	if w.scheduler != nil {
		w.scheduler.Start(w.ctx)
	}

	// Block until context is cancelled
	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.cancel()

	if w.scheduler != nil {
		w.scheduler.Stop()
	}

	w.pool.Stop()
	w.wg.Wait()
}

func (w *Worker) Submit(msg *worker.Message) bool {
	return w.pool.Submit(msg)
}

func (w *Worker) Dependencies() *Dependencies {
	return w.deps
}

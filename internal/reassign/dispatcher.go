// Package reassign передаёт клиента на подбор другого тренера после того,
// как тренер отменил занятие. Сам подбор делает внешний сервис, который
// слушает событие RoutingKeyRequested.
package reassign

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"go.uber.org/zap"
)

const RoutingKeyRequested = "slot.reassignment.requested"

var ErrQueueFull = errors.New("reassignment queue is full")

// Publisher публикует событие во внешний брокер
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Deduper гарантирует не более одной публикации на событие отмены
type Deduper interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// Requested событие для сервиса подбора
type Requested struct {
	model.ReassignmentRequest
	RequestedAt time.Time `json:"requested_at"`
}

type Config struct {
	Workers        int
	QueueSize      int
	PublishTimeout time.Duration
}

// Dispatcher принимает запросы без блокировки и публикует их из фоновых воркеров
type Dispatcher struct {
	queue     chan model.ReassignmentRequest
	publisher Publisher
	deduper   Deduper
	cfg       Config
	logger    *zap.Logger
}

func NewDispatcher(publisher Publisher, deduper Deduper, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}

	return &Dispatcher{
		queue:     make(chan model.ReassignmentRequest, cfg.QueueSize),
		publisher: publisher,
		deduper:   deduper,
		cfg:       cfg,
		logger:    logger,
	}
}

// TriggerReassignment ставит запрос в очередь и сразу возвращается
func (d *Dispatcher) TriggerReassignment(_ context.Context, req model.ReassignmentRequest) error {
	select {
	case d.queue <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending количество запросов в очереди
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Run запускает воркеры и блокируется до отмены ctx.
// Необработанные к этому моменту запросы отбрасываются с записью в лог.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()

	for {
		select {
		case req := <-d.queue:
			d.logger.Warn("Dropping reassignment request on shutdown",
				zap.String("cancellation_id", req.CancellationID.String()),
				zap.Int64("slot_id", req.SlotID))
		default:
			return
		}
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			d.process(ctx, req)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, req model.ReassignmentRequest) {
	key := req.CancellationID.String()

	claimed, err := d.deduper.Claim(ctx, key)
	if err != nil {
		d.logger.Error("Failed to claim reassignment, skipping",
			zap.String("cancellation_id", key),
			zap.Error(err))
		return
	}
	if !claimed {
		d.logger.Info("Reassignment already triggered",
			zap.String("cancellation_id", key))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, d.cfg.PublishTimeout)
	defer cancel()

	event := Requested{ReassignmentRequest: req, RequestedAt: time.Now().UTC()}
	if err := d.publisher.PublishJSON(pubCtx, RoutingKeyRequested, event); err != nil {
		d.logger.Error("Failed to publish reassignment request",
			zap.String("cancellation_id", key),
			zap.Int64("slot_id", req.SlotID),
			zap.Error(err))
		return
	}

	d.logger.Info("Reassignment requested",
		zap.String("cancellation_id", key),
		zap.Int64("slot_id", req.SlotID),
		zap.Int64("client_id", req.ClientID))
}

package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner фоновая задача, работающая до отмены контекста
type Runner interface {
	Run(ctx context.Context)
}

// QueueReporter отдаёт размер очереди для периодического лога
type QueueReporter interface {
	Pending() int
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	reassign Runner
	queue    QueueReporter
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler создаёт планировщик для воркеров переназначения
func NewScheduler(reassign Runner, queue QueueReporter, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reassign: reassign,
		queue:    queue,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	ctx, cancel := context.WithCancel(ctx)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.reassign.Run(ctx)
		s.logger.Info("Reassignment workers stopped")
	}()
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.runQueueReportTask(ctx)
	}()
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	s.wg.Wait()
}

// runQueueReportTask периодически пишет в лог глубину очереди переназначений
func (s *Scheduler) runQueueReportTask(ctx context.Context) {
	if s.interval <= 0 {
		s.interval = time.Minute
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if pending := s.queue.Pending(); pending > 0 {
				s.logger.Info("Reassignment queue backlog", zap.Int("pending", pending))
			}
		case <-s.stopChan:
			s.logger.Info("Queue report task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Queue report task cancelled")
			return
		}
	}
}

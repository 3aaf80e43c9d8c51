package worker

import (
	"context"
	"errors"
	"time"

	"github.com/paybridge-next/internal/config"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultReconcileInterval = 30 * time.Second
	defaultOrderStale        = 5 * time.Minute
	defaultRefundStale       = 5 * time.Minute
)

// Service 异步队列服务，兼做定时对账补偿
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.Config.Reconcile.Enabled {
		go s.runReconcileLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runReconcileLoop(ctx context.Context) {
	cfg := s.consumer.Config.Reconcile
	interval := defaultReconcileInterval
	if cfg.IntervalSeconds > 0 {
		interval = time.Duration(cfg.IntervalSeconds) * time.Second
	}
	s.sweepOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce 扫描一轮超时未支付订单与处理中退款单，逐单下发核实任务。
// 队列不可用时直接同步核实。
func (s *Service) sweepOnce(ctx context.Context) {
	cfg := s.consumer.Config.Reconcile
	orderStale := defaultOrderStale
	if cfg.OrderStaleMinutes > 0 {
		orderStale = time.Duration(cfg.OrderStaleMinutes) * time.Minute
	}
	refundStale := defaultRefundStale
	if cfg.RefundStaleMinutes > 0 {
		refundStale = time.Duration(cfg.RefundStaleMinutes) * time.Minute
	}
	now := time.Now()
	s.sweepStaleOrders(ctx, now.Add(-orderStale))
	s.sweepStaleRefunds(ctx, now.Add(-refundStale))
}

func (s *Service) sweepStaleOrders(ctx context.Context, before time.Time) {
	orders, err := s.consumer.OrderInfoRepo.ListNoPayOlderThan(before, "")
	if err != nil {
		logger.Warnw("worker_sweep_orders_failed", "error", err)
		return
	}
	for _, order := range orders {
		payload := queue.OrderConfirmPayload{OrderNo: order.OrderNo, PaymentType: order.PaymentType}
		if s.consumer.QueueClient.Enabled() {
			if err := s.consumer.QueueClient.EnqueueOrderConfirm(payload); err != nil {
				logger.Warnw("worker_enqueue_order_confirm_failed", "order_no", order.OrderNo, "error", err)
			}
			continue
		}
		if err := s.consumer.checkOrder(ctx, order.PaymentType, order.OrderNo); err != nil {
			logger.Warnw("worker_check_order_failed", "order_no", order.OrderNo, "error", err)
		}
	}
	if len(orders) > 0 {
		logger.Infow("worker_sweep_orders_done", "count", len(orders))
	}
}

func (s *Service) sweepStaleRefunds(ctx context.Context, before time.Time) {
	refunds, err := s.consumer.RefundInfoRepo.ListProcessingOlderThan(before, "")
	if err != nil {
		logger.Warnw("worker_sweep_refunds_failed", "error", err)
		return
	}
	for _, refund := range refunds {
		payload := queue.RefundConfirmPayload{RefundNo: refund.RefundNo, PaymentType: refund.PaymentType}
		if s.consumer.QueueClient.Enabled() {
			if err := s.consumer.QueueClient.EnqueueRefundConfirm(payload); err != nil {
				logger.Warnw("worker_enqueue_refund_confirm_failed", "refund_no", refund.RefundNo, "error", err)
			}
			continue
		}
		if err := s.consumer.checkRefund(ctx, refund.PaymentType, refund.RefundNo); err != nil {
			logger.Warnw("worker_check_refund_failed", "refund_no", refund.RefundNo, "error", err)
		}
	}
	if len(refunds) > 0 {
		logger.Infow("worker_sweep_refunds_done", "count", len(refunds))
	}
}

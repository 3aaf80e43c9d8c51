package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/provider"
	"github.com/paybridge-next/internal/queue"
	"github.com/paybridge-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirm, c.handleOrderConfirm)
	mux.HandleFunc(queue.TaskRefundConfirm, c.handleRefundConfirm)
}

func (c *Consumer) handleOrderConfirm(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderConfirmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirm_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderNo == "" {
		logger.Debugw("worker_order_confirm_skip_invalid_payload")
		return nil
	}
	err := c.checkOrder(ctx, payload.PaymentType, payload.OrderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderMissing) {
			logger.Debugw("worker_order_confirm_skip_order_missing", "order_no", payload.OrderNo)
			return nil
		}
		logger.Warnw("worker_order_confirm_failed", "order_no", payload.OrderNo, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleRefundConfirm(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.RefundConfirmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_refund_confirm_unmarshal_failed", "error", err)
		return err
	}
	if payload.RefundNo == "" {
		logger.Debugw("worker_refund_confirm_skip_invalid_payload")
		return nil
	}
	err := c.checkRefund(ctx, payload.PaymentType, payload.RefundNo)
	if err != nil {
		if errors.Is(err, service.ErrRefundMissing) {
			logger.Debugw("worker_refund_confirm_skip_refund_missing", "refund_no", payload.RefundNo)
			return nil
		}
		logger.Warnw("worker_refund_confirm_failed", "refund_no", payload.RefundNo, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) checkOrder(ctx context.Context, paymentType string, orderNo string) error {
	switch paymentType {
	case constants.PaymentTypeWxPay:
		if c.WxPayService == nil {
			logger.Debugw("worker_order_confirm_skip_channel_disabled", "payment_type", paymentType)
			return nil
		}
		return c.WxPayService.CheckOrderStatus(ctx, orderNo)
	case constants.PaymentTypeAlipay:
		if c.AliPayService == nil {
			logger.Debugw("worker_order_confirm_skip_channel_disabled", "payment_type", paymentType)
			return nil
		}
		return c.AliPayService.CheckOrderStatus(ctx, orderNo)
	default:
		logger.Warnw("worker_order_confirm_unknown_payment_type", "payment_type", paymentType, "order_no", orderNo)
		return nil
	}
}

func (c *Consumer) checkRefund(ctx context.Context, paymentType string, refundNo string) error {
	switch paymentType {
	case constants.PaymentTypeWxPay:
		if c.WxPayService == nil {
			logger.Debugw("worker_refund_confirm_skip_channel_disabled", "payment_type", paymentType)
			return nil
		}
		return c.WxPayService.CheckRefundStatus(ctx, refundNo)
	case constants.PaymentTypeAlipay:
		if c.AliPayService == nil {
			logger.Debugw("worker_refund_confirm_skip_channel_disabled", "payment_type", paymentType)
			return nil
		}
		return c.AliPayService.CheckRefundStatus(ctx, refundNo)
	default:
		logger.Warnw("worker_refund_confirm_unknown_payment_type", "payment_type", paymentType, "refund_no", refundNo)
		return nil
	}
}

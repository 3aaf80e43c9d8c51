package service

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/models"
	"github.com/paybridge-next/internal/repository"
)

// ReconcileService 订单对账核心。所有订单/退款单状态字段的写入都经由本服务，
// 回调、主动查询、定时补偿共用同一套落账路径，保证多来源结果的幂等合并。
type ReconcileService struct {
	orderRepo   repository.OrderInfoRepository
	refundRepo  repository.RefundInfoRepository
	paymentRepo repository.PaymentInfoRepository

	mu sync.Mutex
}

// NewReconcileService 创建对账核心
func NewReconcileService(
	orderRepo repository.OrderInfoRepository,
	refundRepo repository.RefundInfoRepository,
	paymentRepo repository.PaymentInfoRepository,
) *ReconcileService {
	return &ReconcileService{
		orderRepo:   orderRepo,
		refundRepo:  refundRepo,
		paymentRepo: paymentRepo,
	}
}

// ApplyPaymentOutcome 合并一次网关支付结果。拿不到锁说明另一来源正在落账，
// 直接放行，由网关重试或定时补偿兜底。
func (s *ReconcileService) ApplyPaymentOutcome(paymentType string, outcome *PaymentOutcome) error {
	if outcome == nil || outcome.OrderNo == "" {
		return ErrCallbackInvalid
	}
	if !s.mu.TryLock() {
		logger.S().Infow("reconcile_busy_skip", "order_no", outcome.OrderNo)
		return nil
	}
	defer s.mu.Unlock()

	status, err := s.orderRepo.GetStatusByOrderNo(outcome.OrderNo)
	if err != nil {
		return fmt.Errorf("读取订单状态失败: %w", err)
	}
	if status == "" {
		return ErrOrderMissing
	}
	if status != constants.OrderStatusNotPay {
		logger.S().Infow("order_already_settled", "order_no", outcome.OrderNo, "order_status", status)
		return nil
	}

	switch paymentVerdict(paymentType, outcome.TradeState) {
	case verdictSuccess:
		return models.DB.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			paymentRepo := s.paymentRepo.WithTx(tx)
			if err := orderRepo.UpdateStatus(outcome.OrderNo, constants.OrderStatusSuccess); err != nil {
				return err
			}
			return paymentRepo.Create(&models.PaymentInfo{
				OrderNo:       outcome.OrderNo,
				PaymentType:   paymentType,
				TransactionID: outcome.TransactionID,
				TradeType:     outcome.TradeType,
				TradeState:    outcome.TradeState,
				PayerTotal:    outcome.PayerTotal,
				Content:       outcome.Content,
			})
		})
	case verdictClosed:
		logger.S().Infow("order_closed_by_gateway", "order_no", outcome.OrderNo, "trade_state", outcome.TradeState)
		return s.orderRepo.UpdateStatus(outcome.OrderNo, constants.OrderStatusClosed)
	case verdictPending:
		return nil
	default:
		logger.S().Warnw("trade_state_unknown",
			"order_no", outcome.OrderNo,
			"payment_type", paymentType,
			"trade_state", outcome.TradeState,
		)
		return nil
	}
}

// ApplyRefundOutcome 合并一次网关退款结果。
func (s *ReconcileService) ApplyRefundOutcome(paymentType string, outcome *RefundOutcome) error {
	if outcome == nil || outcome.RefundNo == "" {
		return ErrCallbackInvalid
	}
	if !s.mu.TryLock() {
		logger.S().Infow("reconcile_busy_skip", "refund_no", outcome.RefundNo)
		return nil
	}
	defer s.mu.Unlock()

	refund, err := s.refundRepo.GetByRefundNo(outcome.RefundNo)
	if err != nil {
		return fmt.Errorf("读取退款单失败: %w", err)
	}
	if refund == nil {
		return ErrRefundMissing
	}
	if refund.RefundStatus != constants.RefundStatusProcessing {
		logger.S().Infow("refund_already_settled", "refund_no", refund.RefundNo, "refund_status", refund.RefundStatus)
		return nil
	}

	switch outcome.Status {
	case constants.RefundStatusSuccess:
		return models.DB.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			refundRepo := s.refundRepo.WithTx(tx)
			refund.RefundStatus = constants.RefundStatusSuccess
			refund.RefundID = outcome.RefundID
			refund.ContentReturn = outcome.Content
			if err := refundRepo.Update(refund); err != nil {
				return err
			}
			return orderRepo.UpdateStatus(refund.OrderNo, constants.OrderStatusRefundSuccess)
		})
	case constants.RefundStatusProcessing:
		return nil
	default:
		logger.S().Warnw("refund_abnormal",
			"refund_no", refund.RefundNo,
			"order_no", refund.OrderNo,
			"gateway_status", outcome.Status,
		)
		return models.DB.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			refundRepo := s.refundRepo.WithTx(tx)
			refund.RefundStatus = constants.RefundStatusAbnormal
			refund.RefundID = outcome.RefundID
			refund.ContentReturn = outcome.Content
			if err := refundRepo.Update(refund); err != nil {
				return err
			}
			return orderRepo.UpdateStatus(refund.OrderNo, constants.OrderStatusRefundAbnormal)
		})
	}
}

// ApplyOrderMissing 网关侧查无此单时本地关单。
func (s *ReconcileService) ApplyOrderMissing(orderNo string) error {
	if !s.mu.TryLock() {
		logger.S().Infow("reconcile_busy_skip", "order_no", orderNo)
		return nil
	}
	defer s.mu.Unlock()

	status, err := s.orderRepo.GetStatusByOrderNo(orderNo)
	if err != nil {
		return fmt.Errorf("读取订单状态失败: %w", err)
	}
	if status == "" {
		return ErrOrderMissing
	}
	if status != constants.OrderStatusNotPay {
		return nil
	}
	logger.S().Infow("order_missing_at_gateway", "order_no", orderNo)
	return s.orderRepo.UpdateStatus(orderNo, constants.OrderStatusClosed)
}

// CancelOrder 用户取消，仅未支付订单可取消。调用方需先完成网关关单。
func (s *ReconcileService) CancelOrder(orderNo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.orderRepo.GetStatusByOrderNo(orderNo)
	if err != nil {
		return fmt.Errorf("读取订单状态失败: %w", err)
	}
	if status == "" {
		return ErrOrderMissing
	}
	if status != constants.OrderStatusNotPay {
		return ErrOrderStatusInvalid
	}
	return s.orderRepo.UpdateStatus(orderNo, constants.OrderStatusCancel)
}

// BeginRefund 落库退款单并把订单转入退款中，仅支付成功的订单可退。
func (s *ReconcileService) BeginRefund(refund *models.RefundInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.orderRepo.GetStatusByOrderNo(refund.OrderNo)
	if err != nil {
		return fmt.Errorf("读取订单状态失败: %w", err)
	}
	if status == "" {
		return ErrOrderMissing
	}
	if status != constants.OrderStatusSuccess {
		return ErrOrderStatusInvalid
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		refundRepo := s.refundRepo.WithTx(tx)
		if err := refundRepo.Create(refund); err != nil {
			return err
		}
		return orderRepo.UpdateStatus(refund.OrderNo, constants.OrderStatusRefundProcessing)
	})
}

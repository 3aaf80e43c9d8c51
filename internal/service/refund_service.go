package service

import (
	"strings"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/models"
	"github.com/paybridge-next/internal/repository"
)

// RefundService 退款单创建与查询
type RefundService struct {
	orderRepo  repository.OrderInfoRepository
	refundRepo repository.RefundInfoRepository
	reconcile  *ReconcileService
}

// NewRefundService 创建退款服务
func NewRefundService(
	orderRepo repository.OrderInfoRepository,
	refundRepo repository.RefundInfoRepository,
	reconcile *ReconcileService,
) *RefundService {
	return &RefundService{orderRepo: orderRepo, refundRepo: refundRepo, reconcile: reconcile}
}

// CreateRefund 按订单全额发起退款：生成退款单并把订单转入退款中。
// 是否允许退款由对账核心校验（仅支付成功的订单可退）。
func (s *RefundService) CreateRefund(orderNo string, reason string) (*models.RefundInfo, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderMissing
	}

	refund := &models.RefundInfo{
		RefundNo:     generateRefundNo(),
		OrderNo:      order.OrderNo,
		TotalFee:     order.TotalFee,
		Refund:       order.TotalFee,
		Reason:       strings.TrimSpace(reason),
		PaymentType:  order.PaymentType,
		RefundStatus: constants.RefundStatusProcessing,
	}
	if err := s.reconcile.BeginRefund(refund); err != nil {
		return nil, err
	}
	logger.S().Infow("refund_created",
		"refund_no", refund.RefundNo,
		"order_no", refund.OrderNo,
		"refund", refund.Refund,
		"payment_type", refund.PaymentType,
	)
	return refund, nil
}

// SaveContentReturn 记录网关应答原文
func (s *RefundService) SaveContentReturn(refund *models.RefundInfo, content string) error {
	refund.ContentReturn = content
	return s.refundRepo.Update(refund)
}

// GetByRefundNo 查询退款单
func (s *RefundService) GetByRefundNo(refundNo string) (*models.RefundInfo, error) {
	return s.refundRepo.GetByRefundNo(refundNo)
}

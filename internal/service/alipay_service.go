package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/models"
	"github.com/paybridge-next/internal/payment/alipay"
)

// AlipayGateway 支付宝网关能力，由 alipay.Client 实现
type AlipayGateway interface {
	PagePay(input alipay.PagePayInput) (string, error)
	QueryTrade(ctx context.Context, orderNo string) (string, error)
	CloseTrade(ctx context.Context, orderNo string) error
	Refund(ctx context.Context, orderNo, refundNo, reason string, refundFee int64) (string, error)
	QueryRefund(ctx context.Context, orderNo, refundNo string) (string, error)
	VerifyCallback(form map[string][]string) error
}

// AliPayService 支付宝支付业务编排
type AliPayService struct {
	gateway   AlipayGateway
	orderSvc  *OrderService
	refundSvc *RefundService
	reconcile *ReconcileService
}

// NewAliPayService 创建支付宝支付服务
func NewAliPayService(
	gateway AlipayGateway,
	orderSvc *OrderService,
	refundSvc *RefundService,
	reconcile *ReconcileService,
) *AliPayService {
	return &AliPayService{
		gateway:   gateway,
		orderSvc:  orderSvc,
		refundSvc: refundSvc,
		reconcile: reconcile,
	}
}

// PagePay 下单并构造电脑网站支付跳转链接。
func (s *AliPayService) PagePay(productID uint) (string, string, error) {
	order, err := s.orderSvc.CreateOrderByProduct(productID, constants.PaymentTypeAlipay)
	if err != nil {
		return "", "", err
	}
	if order.CodeURL != "" {
		return order.CodeURL, order.OrderNo, nil
	}

	payURL, err := s.gateway.PagePay(alipay.PagePayInput{
		OrderNo:  order.OrderNo,
		Subject:  order.Title,
		TotalFee: order.TotalFee,
	})
	if err != nil {
		return "", "", fmt.Errorf("支付宝下单失败: %w", err)
	}
	if err := s.orderSvc.SaveCodeURL(order.OrderNo, payURL); err != nil {
		return "", "", err
	}
	return payURL, order.OrderNo, nil
}

// ProcessNotify 处理异步通知：验签、核对订单与金额、合并结果。
func (s *AliPayService) ProcessNotify(form url.Values) error {
	if err := s.gateway.VerifyCallback(form); err != nil {
		return err
	}
	outcome, err := ParseAlipayPaymentOutcome(form)
	if err != nil {
		return err
	}

	order, err := s.orderSvc.GetByOrderNo(outcome.OrderNo)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderMissing
	}
	if outcome.PayerTotal != order.TotalFee {
		logger.S().Warnw("alipay_notify_amount_mismatch",
			"order_no", order.OrderNo,
			"expected", order.TotalFee,
			"actual", outcome.PayerTotal,
		)
		return ErrCallbackInvalid
	}

	logger.S().Infow("alipay_notify_received",
		"order_no", outcome.OrderNo,
		"trade_status", outcome.TradeState,
		"trade_no", outcome.TransactionID,
	)
	return s.reconcile.ApplyPaymentOutcome(constants.PaymentTypeAlipay, outcome)
}

// CancelOrder 用户取消订单。先远端关单，远端失败则本地状态不动。
func (s *AliPayService) CancelOrder(ctx context.Context, orderNo string) error {
	status, err := s.orderStatus(orderNo)
	if err != nil {
		return err
	}
	if status != constants.OrderStatusNotPay {
		return ErrOrderStatusInvalid
	}
	if err := s.gateway.CloseTrade(ctx, orderNo); err != nil {
		return fmt.Errorf("支付宝关单失败: %w", err)
	}
	return s.reconcile.CancelOrder(orderNo)
}

// QueryTrade 查询网关交易，返回应答节点原文。
func (s *AliPayService) QueryTrade(ctx context.Context, orderNo string) (string, error) {
	if _, err := s.orderStatus(orderNo); err != nil {
		return "", err
	}
	return s.gateway.QueryTrade(ctx, orderNo)
}

// Refund 发起退款。支付宝退款是同步应答，受理成功即按应答落账。
func (s *AliPayService) Refund(ctx context.Context, orderNo string, reason string) (*models.RefundInfo, error) {
	refund, err := s.refundSvc.CreateRefund(orderNo, reason)
	if err != nil {
		return nil, err
	}
	content, err := s.gateway.Refund(ctx, refund.OrderNo, refund.RefundNo, refund.Reason, refund.Refund)
	if err != nil {
		logger.S().Warnw("alipay_refund_request_failed", "refund_no", refund.RefundNo, "err", err)
		return refund, nil
	}
	outcome, err := ParseAlipayRefundOutcome(refund.RefundNo, content)
	if err != nil {
		return nil, err
	}
	if err := s.reconcile.ApplyRefundOutcome(constants.PaymentTypeAlipay, outcome); err != nil {
		return nil, err
	}
	return refund, nil
}

// CheckOrderStatus 核实超时未支付订单的真实状态。交易不存在时本地关单并补发
// 远端关单。
func (s *AliPayService) CheckOrderStatus(ctx context.Context, orderNo string) error {
	body, err := s.gateway.QueryTrade(ctx, orderNo)
	if err != nil {
		if errors.Is(err, alipay.ErrTradeNotExists) {
			if closeErr := s.gateway.CloseTrade(ctx, orderNo); closeErr != nil {
				logger.S().Warnw("alipay_close_missing_trade_failed", "order_no", orderNo, "err", closeErr)
			}
			return s.reconcile.ApplyOrderMissing(orderNo)
		}
		return err
	}
	outcome, err := ParseAlipayQueryOutcome(body)
	if err != nil {
		return err
	}
	if outcome.TradeState == "" {
		if closeErr := s.gateway.CloseTrade(ctx, orderNo); closeErr != nil {
			logger.S().Warnw("alipay_close_missing_trade_failed", "order_no", orderNo, "err", closeErr)
		}
		return s.reconcile.ApplyOrderMissing(orderNo)
	}
	return s.reconcile.ApplyPaymentOutcome(constants.PaymentTypeAlipay, outcome)
}

// CheckRefundStatus 核实处理中退款单的真实状态。退款查询未给出成功结论时
// 保持处理中，留待下一轮补偿。
func (s *AliPayService) CheckRefundStatus(ctx context.Context, refundNo string) error {
	refund, err := s.refundSvc.GetByRefundNo(refundNo)
	if err != nil {
		return err
	}
	if refund == nil {
		return ErrRefundMissing
	}
	body, err := s.gateway.QueryRefund(ctx, refund.OrderNo, refund.RefundNo)
	if err != nil {
		return err
	}
	outcome, err := ParseAlipayRefundOutcome(refund.RefundNo, body)
	if err != nil {
		return err
	}
	if outcome.Status != constants.RefundStatusSuccess {
		return nil
	}
	return s.reconcile.ApplyRefundOutcome(constants.PaymentTypeAlipay, outcome)
}

func (s *AliPayService) orderStatus(orderNo string) (string, error) {
	order, err := s.orderSvc.GetByOrderNo(orderNo)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", ErrOrderMissing
	}
	return order.OrderStatus, nil
}

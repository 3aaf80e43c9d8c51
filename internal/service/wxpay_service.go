package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/models"
	"github.com/paybridge-next/internal/payment/wechatpay"
)

// WechatGateway 微信 v3 网关能力，由 wechatpay.Client 实现
type WechatGateway interface {
	CreateNative(ctx context.Context, input wechatpay.CreateInput) (string, error)
	QueryOrder(ctx context.Context, orderNo string) (string, error)
	CloseOrder(ctx context.Context, orderNo string) error
	CreateRefund(ctx context.Context, input wechatpay.RefundInput) (string, error)
	QueryRefund(ctx context.Context, refundNo string) (string, error)
	VerifyNotify(ctx context.Context, headers map[string]string, body []byte) error
	DecryptResource(body []byte) (string, error)
}

// WxPayService 微信支付业务编排
type WxPayService struct {
	gateway   WechatGateway
	orderSvc  *OrderService
	refundSvc *RefundService
	reconcile *ReconcileService
}

// NewWxPayService 创建微信支付服务
func NewWxPayService(
	gateway WechatGateway,
	orderSvc *OrderService,
	refundSvc *RefundService,
	reconcile *ReconcileService,
) *WxPayService {
	return &WxPayService{
		gateway:   gateway,
		orderSvc:  orderSvc,
		refundSvc: refundSvc,
		reconcile: reconcile,
	}
}

// NativePay 下单并换取二维码链接。复用未支付订单时若已有 code_url 直接返回，
// 不再请求网关。
func (s *WxPayService) NativePay(ctx context.Context, productID uint) (string, string, error) {
	order, err := s.orderSvc.CreateOrderByProduct(productID, constants.PaymentTypeWxPay)
	if err != nil {
		return "", "", err
	}
	if order.CodeURL != "" {
		return order.CodeURL, order.OrderNo, nil
	}

	codeURL, err := s.gateway.CreateNative(ctx, wechatpay.CreateInput{
		OrderNo:     order.OrderNo,
		Description: order.Title,
		TotalFee:    order.TotalFee,
	})
	if err != nil {
		return "", "", fmt.Errorf("微信下单失败: %w", err)
	}
	if err := s.orderSvc.SaveCodeURL(order.OrderNo, codeURL); err != nil {
		return "", "", err
	}
	return codeURL, order.OrderNo, nil
}

// ProcessNotify 处理支付结果通知：验签、解密、合并结果。
func (s *WxPayService) ProcessNotify(ctx context.Context, headers map[string]string, body []byte) error {
	if err := s.gateway.VerifyNotify(ctx, headers, body); err != nil {
		return err
	}
	plaintext, err := s.gateway.DecryptResource(body)
	if err != nil {
		return err
	}
	outcome, err := ParseWechatPaymentOutcome(plaintext)
	if err != nil {
		return err
	}
	logger.S().Infow("wxpay_notify_received",
		"order_no", outcome.OrderNo,
		"trade_state", outcome.TradeState,
		"transaction_id", outcome.TransactionID,
	)
	return s.reconcile.ApplyPaymentOutcome(constants.PaymentTypeWxPay, outcome)
}

// ProcessRefundNotify 处理退款结果通知。
func (s *WxPayService) ProcessRefundNotify(ctx context.Context, headers map[string]string, body []byte) error {
	if err := s.gateway.VerifyNotify(ctx, headers, body); err != nil {
		return err
	}
	plaintext, err := s.gateway.DecryptResource(body)
	if err != nil {
		return err
	}
	outcome, err := ParseWechatRefundOutcome(plaintext)
	if err != nil {
		return err
	}
	logger.S().Infow("wxpay_refund_notify_received",
		"refund_no", outcome.RefundNo,
		"order_no", outcome.OrderNo,
		"refund_status", outcome.Status,
	)
	return s.reconcile.ApplyRefundOutcome(constants.PaymentTypeWxPay, outcome)
}

// CancelOrder 用户取消订单。先远端关单，远端失败则本地状态不动。
func (s *WxPayService) CancelOrder(ctx context.Context, orderNo string) error {
	status, err := s.orderStatus(orderNo)
	if err != nil {
		return err
	}
	if status != constants.OrderStatusNotPay {
		return ErrOrderStatusInvalid
	}
	if err := s.gateway.CloseOrder(ctx, orderNo); err != nil && !errors.Is(err, wechatpay.ErrOrderNotExists) {
		return fmt.Errorf("微信关单失败: %w", err)
	}
	return s.reconcile.CancelOrder(orderNo)
}

// QueryOrder 查询网关订单，返回应答原文。
func (s *WxPayService) QueryOrder(ctx context.Context, orderNo string) (string, error) {
	if _, err := s.orderStatus(orderNo); err != nil {
		return "", err
	}
	return s.gateway.QueryOrder(ctx, orderNo)
}

// Refund 发起退款。网关受理失败时退款单保持处理中，由补偿任务继续推进。
func (s *WxPayService) Refund(ctx context.Context, orderNo string, reason string) (*models.RefundInfo, error) {
	refund, err := s.refundSvc.CreateRefund(orderNo, reason)
	if err != nil {
		return nil, err
	}
	content, err := s.gateway.CreateRefund(ctx, wechatpay.RefundInput{
		OrderNo:  refund.OrderNo,
		RefundNo: refund.RefundNo,
		Reason:   refund.Reason,
		TotalFee: refund.TotalFee,
		Refund:   refund.Refund,
	})
	if err != nil {
		logger.S().Warnw("wxpay_refund_request_failed", "refund_no", refund.RefundNo, "err", err)
		return refund, nil
	}
	if err := s.refundSvc.SaveContentReturn(refund, content); err != nil {
		return nil, err
	}
	return refund, nil
}

// QueryRefund 查询网关退款单，返回应答原文。
func (s *WxPayService) QueryRefund(ctx context.Context, refundNo string) (string, error) {
	refund, err := s.refundSvc.GetByRefundNo(refundNo)
	if err != nil {
		return "", err
	}
	if refund == nil {
		return "", ErrRefundMissing
	}
	return s.gateway.QueryRefund(ctx, refundNo)
}

// CheckOrderStatus 核实超时未支付订单的真实状态。网关查无此单时本地关单并
// 补发远端关单，防止用户在失效二维码上继续支付。
func (s *WxPayService) CheckOrderStatus(ctx context.Context, orderNo string) error {
	body, err := s.gateway.QueryOrder(ctx, orderNo)
	if err != nil {
		if errors.Is(err, wechatpay.ErrOrderNotExists) {
			return s.settleMissingOrder(ctx, orderNo)
		}
		return err
	}
	// 空应答与交易状态缺失都视为查无此单
	if strings.TrimSpace(body) == "" {
		return s.settleMissingOrder(ctx, orderNo)
	}
	outcome, err := ParseWechatPaymentOutcome(body)
	if err != nil {
		return err
	}
	if outcome.TradeState == "" {
		return s.settleMissingOrder(ctx, orderNo)
	}
	return s.reconcile.ApplyPaymentOutcome(constants.PaymentTypeWxPay, outcome)
}

func (s *WxPayService) settleMissingOrder(ctx context.Context, orderNo string) error {
	if closeErr := s.gateway.CloseOrder(ctx, orderNo); closeErr != nil && !errors.Is(closeErr, wechatpay.ErrOrderNotExists) {
		logger.S().Warnw("wxpay_close_missing_order_failed", "order_no", orderNo, "err", closeErr)
	}
	return s.reconcile.ApplyOrderMissing(orderNo)
}

// CheckRefundStatus 核实处理中退款单的真实状态。
func (s *WxPayService) CheckRefundStatus(ctx context.Context, refundNo string) error {
	refund, err := s.refundSvc.GetByRefundNo(refundNo)
	if err != nil {
		return err
	}
	if refund == nil {
		return ErrRefundMissing
	}
	body, err := s.gateway.QueryRefund(ctx, refundNo)
	if err != nil {
		return err
	}
	outcome, err := ParseWechatRefundOutcome(body)
	if err != nil {
		return err
	}
	return s.reconcile.ApplyRefundOutcome(constants.PaymentTypeWxPay, outcome)
}

func (s *WxPayService) orderStatus(orderNo string) (string, error) {
	order, err := s.orderSvc.GetByOrderNo(orderNo)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", ErrOrderMissing
	}
	return order.OrderStatus, nil
}

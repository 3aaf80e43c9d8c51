package service

import (
	"fmt"
	"sync"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/models"
	"github.com/paybridge-next/internal/repository"
)

// OrderService 订单创建与查询
type OrderService struct {
	orderRepo   repository.OrderInfoRepository
	productRepo repository.ProductRepository

	// 串行化同商品同渠道的下单，避免并发下穿透未支付单复用
	createMu sync.Mutex
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderInfoRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, productRepo: productRepo}
}

// CreateOrderByProduct 按商品下单。同一商品同一渠道若已有未支付订单则直接复用，
// 不再生成新单。
func (s *OrderService) CreateOrderByProduct(productID uint, paymentType string) (*models.OrderInfo, error) {
	if paymentType != constants.PaymentTypeWxPay && paymentType != constants.PaymentTypeAlipay {
		return nil, ErrPaymentTypeInvalid
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.orderRepo.GetNoPayByProduct(productID, paymentType)
	if err != nil {
		return nil, fmt.Errorf("查询未支付订单失败: %w", err)
	}
	if existing != nil {
		logger.S().Infow("order_reused", "order_no", existing.OrderNo, "product_id", productID)
		return existing, nil
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	if product == nil {
		return nil, ErrProductMissing
	}

	order := &models.OrderInfo{
		OrderNo:     generateOrderNo(),
		Title:       product.Title,
		ProductID:   product.ID,
		TotalFee:    product.Price,
		PaymentType: paymentType,
		OrderStatus: constants.OrderStatusNotPay,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}
	logger.S().Infow("order_created",
		"order_no", order.OrderNo,
		"product_id", productID,
		"payment_type", paymentType,
		"total_fee", order.TotalFee,
	)
	return order, nil
}

// SaveCodeURL 保存支付跳转凭证
func (s *OrderService) SaveCodeURL(orderNo string, codeURL string) error {
	return s.orderRepo.SaveCodeURL(orderNo, codeURL)
}

// GetByOrderNo 查询订单
func (s *OrderService) GetByOrderNo(orderNo string) (*models.OrderInfo, error) {
	return s.orderRepo.GetByOrderNo(orderNo)
}

// List 按创建时间倒序列出订单
func (s *OrderService) List() ([]models.OrderInfo, error) {
	return s.orderRepo.ListByCreateTimeDesc()
}

// QueryOrderStatus 查询订单是否已支付
func (s *OrderService) QueryOrderStatus(orderNo string) (bool, error) {
	status, err := s.orderRepo.GetStatusByOrderNo(orderNo)
	if err != nil {
		return false, err
	}
	if status == "" {
		return false, ErrOrderMissing
	}
	return status == constants.OrderStatusSuccess, nil
}

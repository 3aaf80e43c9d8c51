package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/models"

	"gorm.io/gorm"
)

// OrderInfoRepository 订单数据访问接口
type OrderInfoRepository interface {
	Create(order *models.OrderInfo) error
	GetByOrderNo(orderNo string) (*models.OrderInfo, error)
	GetStatusByOrderNo(orderNo string) (string, error)
	GetNoPayByProduct(productID uint, paymentType string) (*models.OrderInfo, error)
	ListByCreateTimeDesc() ([]models.OrderInfo, error)
	ListNoPayOlderThan(before time.Time, paymentType string) ([]models.OrderInfo, error)
	UpdateStatus(orderNo string, status string) error
	SaveCodeURL(orderNo string, codeURL string) error
	WithTx(tx *gorm.DB) *GormOrderInfoRepository
}

// GormOrderInfoRepository GORM 实现
type GormOrderInfoRepository struct {
	db *gorm.DB
}

// NewOrderInfoRepository 创建订单仓库
func NewOrderInfoRepository(db *gorm.DB) *GormOrderInfoRepository {
	return &GormOrderInfoRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderInfoRepository) WithTx(tx *gorm.DB) *GormOrderInfoRepository {
	if tx == nil {
		return r
	}
	return &GormOrderInfoRepository{db: tx}
}

// Create 创建订单
func (r *GormOrderInfoRepository) Create(order *models.OrderInfo) error {
	return r.db.Create(order).Error
}

// GetByOrderNo 根据订单编号获取订单
func (r *GormOrderInfoRepository) GetByOrderNo(orderNo string) (*models.OrderInfo, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.OrderInfo
	if err := r.db.Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetStatusByOrderNo 仅读取订单状态
func (r *GormOrderInfoRepository) GetStatusByOrderNo(orderNo string) (string, error) {
	var row struct {
		OrderStatus string
	}
	result := r.db.Model(&models.OrderInfo{}).
		Select("order_status").
		Where("order_no = ?", orderNo).
		Limit(1).
		Find(&row)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", nil
	}
	return row.OrderStatus, nil
}

// GetNoPayByProduct 获取商品的未支付订单
func (r *GormOrderInfoRepository) GetNoPayByProduct(productID uint, paymentType string) (*models.OrderInfo, error) {
	var order models.OrderInfo
	result := r.db.Where("product_id = ? AND payment_type = ? AND order_status = ?",
		productID,
		paymentType,
		constants.OrderStatusNotPay,
	).Order("id desc").Limit(1).Find(&order)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &order, nil
}

// ListByCreateTimeDesc 按创建时间倒序列出订单
func (r *GormOrderInfoRepository) ListByCreateTimeDesc() ([]models.OrderInfo, error) {
	var orders []models.OrderInfo
	if err := r.db.Order("create_time desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListNoPayOlderThan 列出超过时限仍未支付的订单
func (r *GormOrderInfoRepository) ListNoPayOlderThan(before time.Time, paymentType string) ([]models.OrderInfo, error) {
	var orders []models.OrderInfo
	query := r.db.Where("order_status = ? AND create_time < ?", constants.OrderStatusNotPay, before)
	if paymentType != "" {
		query = query.Where("payment_type = ?", paymentType)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus 更新订单状态
func (r *GormOrderInfoRepository) UpdateStatus(orderNo string, status string) error {
	return r.db.Model(&models.OrderInfo{}).
		Where("order_no = ?", orderNo).
		Update("order_status", status).Error
}

// SaveCodeURL 保存支付跳转凭证（幂等覆盖，不改状态）
func (r *GormOrderInfoRepository) SaveCodeURL(orderNo string, codeURL string) error {
	return r.db.Model(&models.OrderInfo{}).
		Where("order_no = ?", orderNo).
		Update("code_url", codeURL).Error
}

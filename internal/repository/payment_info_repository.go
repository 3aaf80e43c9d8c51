package repository

import (
	"gorm.io/gorm"

	"github.com/paybridge-next/internal/models"
)

// PaymentInfoRepository 支付流水数据访问接口（只追加）
type PaymentInfoRepository interface {
	Create(payment *models.PaymentInfo) error
	ListByOrderNo(orderNo string) ([]models.PaymentInfo, error)
	CountByOrderNo(orderNo string) (int64, error)
	WithTx(tx *gorm.DB) *GormPaymentInfoRepository
}

// GormPaymentInfoRepository GORM 实现
type GormPaymentInfoRepository struct {
	db *gorm.DB
}

// NewPaymentInfoRepository 创建支付流水仓库
func NewPaymentInfoRepository(db *gorm.DB) *GormPaymentInfoRepository {
	return &GormPaymentInfoRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentInfoRepository) WithTx(tx *gorm.DB) *GormPaymentInfoRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentInfoRepository{db: tx}
}

// Create 追加支付流水
func (r *GormPaymentInfoRepository) Create(payment *models.PaymentInfo) error {
	return r.db.Create(payment).Error
}

// ListByOrderNo 获取订单支付流水
func (r *GormPaymentInfoRepository) ListByOrderNo(orderNo string) ([]models.PaymentInfo, error) {
	var payments []models.PaymentInfo
	if err := r.db.Where("order_no = ?", orderNo).Order("id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// CountByOrderNo 统计订单支付流水数量
func (r *GormPaymentInfoRepository) CountByOrderNo(orderNo string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PaymentInfo{}).Where("order_no = ?", orderNo).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

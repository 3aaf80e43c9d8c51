package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/models"

	"gorm.io/gorm"
)

// RefundInfoRepository 退款单数据访问接口
type RefundInfoRepository interface {
	Create(refund *models.RefundInfo) error
	Update(refund *models.RefundInfo) error
	GetByRefundNo(refundNo string) (*models.RefundInfo, error)
	GetByOrderNo(orderNo string) (*models.RefundInfo, error)
	ListProcessingOlderThan(before time.Time, paymentType string) ([]models.RefundInfo, error)
	WithTx(tx *gorm.DB) *GormRefundInfoRepository
}

// GormRefundInfoRepository GORM 实现
type GormRefundInfoRepository struct {
	db *gorm.DB
}

// NewRefundInfoRepository 创建退款单仓库
func NewRefundInfoRepository(db *gorm.DB) *GormRefundInfoRepository {
	return &GormRefundInfoRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRefundInfoRepository) WithTx(tx *gorm.DB) *GormRefundInfoRepository {
	if tx == nil {
		return r
	}
	return &GormRefundInfoRepository{db: tx}
}

// Create 创建退款单
func (r *GormRefundInfoRepository) Create(refund *models.RefundInfo) error {
	return r.db.Create(refund).Error
}

// Update 更新退款单
func (r *GormRefundInfoRepository) Update(refund *models.RefundInfo) error {
	return r.db.Save(refund).Error
}

// GetByRefundNo 根据退款单号获取退款单
func (r *GormRefundInfoRepository) GetByRefundNo(refundNo string) (*models.RefundInfo, error) {
	refundNo = strings.TrimSpace(refundNo)
	if refundNo == "" {
		return nil, nil
	}
	var refund models.RefundInfo
	if err := r.db.Where("refund_no = ?", refundNo).First(&refund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

// GetByOrderNo 获取订单最新退款单
func (r *GormRefundInfoRepository) GetByOrderNo(orderNo string) (*models.RefundInfo, error) {
	var refund models.RefundInfo
	result := r.db.Where("order_no = ?", orderNo).Order("id desc").Limit(1).Find(&refund)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &refund, nil
}

// ListProcessingOlderThan 列出超过时限仍在处理中的退款单
func (r *GormRefundInfoRepository) ListProcessingOlderThan(before time.Time, paymentType string) ([]models.RefundInfo, error) {
	var refunds []models.RefundInfo
	query := r.db.Where("refund_status = ? AND create_time < ?", constants.RefundStatusProcessing, before)
	if paymentType != "" {
		query = query.Where("payment_type = ?", paymentType)
	}
	if err := query.Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

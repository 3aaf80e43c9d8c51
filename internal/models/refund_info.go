package models

import "time"

// RefundInfo 退款单表
type RefundInfo struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                      // 主键
	RefundNo      string    `gorm:"column:refund_no;uniqueIndex;not null" json:"refundNo"`     // 商户退款单号
	OrderNo       string    `gorm:"column:order_no;index;not null" json:"orderNo"`             // 商户订单编号
	RefundID      string    `gorm:"column:refund_id;index" json:"refundId"`                    // 网关退款单号
	TotalFee      int64     `gorm:"column:total_fee;not null" json:"totalFee"`                 // 原订单金额（分）
	Refund        int64     `gorm:"column:refund;not null" json:"refund"`                      // 退款金额（分）
	Reason        string    `gorm:"column:reason" json:"reason"`                               // 退款原因
	PaymentType   string    `gorm:"column:payment_type;index;not null" json:"paymentType"`     // 支付方式（wxpay/alipay）
	RefundStatus  string    `gorm:"column:refund_status;index;not null" json:"refundStatus"`   // 退款状态
	ContentReturn string    `gorm:"column:content_return;type:text" json:"contentReturn"`      // 网关应答原文（审计用）
	CreateTime    time.Time `gorm:"column:create_time;index;autoCreateTime" json:"createTime"` // 创建时间
	UpdateTime    time.Time `gorm:"column:update_time;index;autoUpdateTime" json:"updateTime"` // 更新时间
}

// TableName 指定表名
func (RefundInfo) TableName() string {
	return "t_refund_info"
}

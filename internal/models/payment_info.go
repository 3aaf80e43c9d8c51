package models

import "time"

// PaymentInfo 支付流水表（只追加，不修改）
type PaymentInfo struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo       string    `gorm:"column:order_no;index;not null" json:"orderNo"`             // 商户订单编号
	PaymentType   string    `gorm:"column:payment_type;not null" json:"paymentType"`           // 支付方式（wxpay/alipay）
	TransactionID string    `gorm:"column:transaction_id;index" json:"transactionId"`          // 网关交易流水号
	TradeType     string    `gorm:"column:trade_type" json:"tradeType"`                        // 交易类型（NATIVE 等）
	TradeState    string    `gorm:"column:trade_state" json:"tradeState"`                      // 网关交易状态
	PayerTotal    int64     `gorm:"column:payer_total" json:"payerTotal"`                      // 实付金额（分）
	Content       string    `gorm:"column:content;type:text" json:"content"`                   // 通知明文原文（审计用）
	CreateTime    time.Time `gorm:"column:create_time;index;autoCreateTime" json:"createTime"` // 创建时间
	UpdateTime    time.Time `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`       // 更新时间
}

// TableName 指定表名
func (PaymentInfo) TableName() string {
	return "t_payment_info"
}

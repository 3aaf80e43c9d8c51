package models

import "time"

// OrderInfo 订单表
type OrderInfo struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                       // 主键
	OrderNo     string    `gorm:"column:order_no;uniqueIndex;not null" json:"orderNo"`        // 商户订单编号
	Title       string    `gorm:"column:title" json:"title"`                                  // 订单标题
	ProductID   uint      `gorm:"column:product_id;index" json:"productId"`                   // 商品ID
	TotalFee    int64     `gorm:"column:total_fee;not null" json:"totalFee"`                  // 订单金额（分）
	CodeURL     string    `gorm:"column:code_url;type:text" json:"codeUrl"`                   // 支付跳转凭证（二维码链接/表单）
	PaymentType string    `gorm:"column:payment_type;index;not null" json:"paymentType"`      // 支付方式（wxpay/alipay）
	OrderStatus string    `gorm:"column:order_status;index;not null" json:"orderStatus"`      // 订单状态
	CreateTime  time.Time `gorm:"column:create_time;index;autoCreateTime" json:"createTime"`  // 创建时间
	UpdateTime  time.Time `gorm:"column:update_time;index;autoUpdateTime" json:"updateTime"`  // 更新时间
}

// TableName 指定表名
func (OrderInfo) TableName() string {
	return "t_order_info"
}

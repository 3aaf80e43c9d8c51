package models

import "time"

// Product 商品表
type Product struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                      // 主键
	Title      string    `gorm:"column:title;not null" json:"title"`                        // 商品名称
	Price      int64     `gorm:"column:price;not null" json:"price"`                        // 价格（分）
	CreateTime time.Time `gorm:"column:create_time;index;autoCreateTime" json:"createTime"` // 创建时间
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`       // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "t_product"
}

package service

import "errors"

var (
	ErrProductMissing     = errors.New("商品不存在")
	ErrOrderMissing       = errors.New("订单不存在")
	ErrOrderStatusInvalid = errors.New("订单状态不允许该操作")
	ErrRefundMissing      = errors.New("退款单不存在")
	ErrCallbackInvalid    = errors.New("回调内容不合法")
	ErrPaymentTypeInvalid = errors.New("不支持的支付方式")
)

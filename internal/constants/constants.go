package constants

// 订单状态常量
const (
	OrderStatusNotPay           = "NOTPAY"
	OrderStatusSuccess          = "SUCCESS"
	OrderStatusClosed           = "CLOSED"
	OrderStatusCancel           = "CANCEL"
	OrderStatusRefundProcessing = "REFUND_PROCESSING"
	OrderStatusRefundSuccess    = "REFUND_SUCCESS"
	OrderStatusRefundAbnormal   = "REFUND_ABNORMAL"
)

// 退款状态常量
const (
	RefundStatusProcessing = "PROCESSING"
	RefundStatusSuccess    = "SUCCESS"
	RefundStatusAbnormal   = "ABNORMAL"
)

// 支付方式常量
const (
	PaymentTypeWxPay  = "wxpay"
	PaymentTypeAlipay = "alipay"
)

// 微信交易状态常量
const (
	WxTradeStateSuccess    = "SUCCESS"
	WxTradeStateRefund     = "REFUND"
	WxTradeStateNotPay     = "NOTPAY"
	WxTradeStateClosed     = "CLOSED"
	WxTradeStateRevoked    = "REVOKED"
	WxTradeStateUserPaying = "USERPAYING"
	WxTradeStatePayError   = "PAYERROR"
)

// 微信退款状态常量
const (
	WxRefundStatusSuccess    = "SUCCESS"
	WxRefundStatusClosed     = "CLOSED"
	WxRefundStatusProcessing = "PROCESSING"
	WxRefundStatusAbnormal   = "ABNORMAL"
)

// 支付宝交易状态常量
const (
	AlipayTradeStatusSuccess      = "TRADE_SUCCESS"
	AlipayTradeStatusFinished     = "TRADE_FINISHED"
	AlipayTradeStatusClosed       = "TRADE_CLOSED"
	AlipayTradeStatusWaitBuyerPay = "WAIT_BUYER_PAY"
	AlipayCallbackSuccess         = "success"
	AlipayCallbackFail            = "failure"
)

// 单号前缀常量
const (
	OrderNoPrefix  = "ORDER_"
	RefundNoPrefix = "REFUND_"
)

// 微信回调应答常量
const (
	WxNotifyCodeSuccess = "SUCCESS"
	WxNotifyCodeError   = "ERROR"
	WxNotifyMsgSuccess  = "成功"
	WxNotifyMsgBadSign  = "通知验签失败"
	WxNotifyMsgSysError = "系统错误"
)

// 队列常量
const (
	QueueDefault      = "default"
	QueueCritical     = "critical"
	TaskOrderConfirm  = "reconcile:order_confirm"
	TaskRefundConfirm = "reconcile:refund_confirm"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "pb"
)

// 币种常量
const (
	SiteCurrencyDefault = "CNY"
)

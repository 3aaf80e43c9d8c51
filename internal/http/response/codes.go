package response

const (
	CodeOK              = 0
	CodePaying          = 101 // 订单尚未支付
	CodeBadRequest      = 400
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

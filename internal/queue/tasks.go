package queue

import (
	"encoding/json"

	"github.com/paybridge-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirm 订单状态核实任务
	TaskOrderConfirm = constants.TaskOrderConfirm
	// TaskRefundConfirm 退款状态核实任务
	TaskRefundConfirm = constants.TaskRefundConfirm
)

// OrderConfirmPayload 订单状态核实任务载荷
type OrderConfirmPayload struct {
	OrderNo     string `json:"order_no"`
	PaymentType string `json:"payment_type"`
}

// RefundConfirmPayload 退款状态核实任务载荷
type RefundConfirmPayload struct {
	RefundNo    string `json:"refund_no"`
	PaymentType string `json:"payment_type"`
}

// NewOrderConfirmTask 创建订单状态核实任务
func NewOrderConfirmTask(payload OrderConfirmPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirm, body), nil
}

// NewRefundConfirmTask 创建退款状态核实任务
func NewRefundConfirmTask(payload RefundConfirmPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefundConfirm, body), nil
}

package queue

import (
	"testing"

	"github.com/paybridge-next/internal/config"
	"github.com/paybridge-next/internal/constants"
)

func TestBuildServerConfigDefaults(t *testing.T) {
	_, cfg := BuildServerConfig(nil)
	if cfg.Concurrency != 10 {
		t.Fatalf("concurrency want 10 got %d", cfg.Concurrency)
	}
	// 退款核实走 critical 队列，服务端必须消费两条队列且 critical 权重更高
	if cfg.Queues[constants.QueueCritical] <= cfg.Queues[DefaultQueue] {
		t.Fatalf("critical queue should outweigh default, got %v", cfg.Queues)
	}
}

func TestBuildServerConfigOverrides(t *testing.T) {
	_, cfg := BuildServerConfig(&config.QueueConfig{
		Concurrency: 3,
		Queues:      map[string]int{"solo": 1},
	})
	if cfg.Concurrency != 3 {
		t.Fatalf("concurrency want 3 got %d", cfg.Concurrency)
	}
	if len(cfg.Queues) != 1 || cfg.Queues["solo"] != 1 {
		t.Fatalf("configured queues should win, got %v", cfg.Queues)
	}
}

func TestDisabledClientEnqueueNoOp(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client without config should be disabled")
	}
	if err := client.EnqueueOrderConfirm(OrderConfirmPayload{OrderNo: "ORDER_1"}); err != nil {
		t.Fatalf("disabled enqueue should no-op, got %v", err)
	}
	if err := client.EnqueueRefundConfirm(RefundConfirmPayload{RefundNo: "REFUND_1"}); err != nil {
		t.Fatalf("disabled enqueue should no-op, got %v", err)
	}
}

package kafka

import "testing"

// TestSetupAfterRebalance 测试rebalance后重入Setup不触发重复close
func TestSetupAfterRebalance(t *testing.T) {
	c := &Consumer{ready: make(chan bool)}

	if err := c.Setup(nil); err != nil {
		t.Fatalf("first setup failed: %v", err)
	}

	select {
	case <-c.ready:
	default:
		t.Fatalf("setup must close the ready channel")
	}

	// 消费循环在重入Consume前重建就绪信号
	c.resetReady()

	if err := c.Setup(nil); err != nil {
		t.Fatalf("setup after rebalance failed: %v", err)
	}
	select {
	case <-c.ready:
	default:
		t.Fatalf("rebuilt ready channel must be closed by setup")
	}
}

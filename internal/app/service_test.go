package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	stopped  bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.stopped = true
	return nil
}

func TestRunnerRunRequiresServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("nil service should fail")
	}
}

func TestRunnerRunStopsAllOnCancel(t *testing.T) {
	api := &fakeService{name: "api"}
	worker := &fakeService{name: "worker"}
	runner := NewRunner(api, worker)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	// 信号触发的取消属于正常停机
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should exit clean, got %v", err)
	}
	if !api.stopped || !worker.stopped {
		t.Fatalf("all services should be stopped, api=%v worker=%v", api.stopped, worker.stopped)
	}
}

func TestRunnerRunSurfacesServiceError(t *testing.T) {
	boom := errors.New("listen failed")
	broken := &fakeService{name: "api", startErr: boom}
	healthy := &fakeService{name: "worker"}

	err := NewRunner(broken, healthy).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected service error, got %v", err)
	}
	if !healthy.stopped {
		t.Fatalf("remaining service should be stopped after failure")
	}
}

package database

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetupSignalHandler_NotCancelledWithoutSignal(t *testing.T) {
	ctx, stop := SetupSignalHandler(context.Background(), nil)
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled without a signal")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSetupSignalHandler_StopCancels(t *testing.T) {
	ctx, stop := SetupSignalHandler(context.Background(), nil)
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("stop should cancel the context")
	}
}

func TestSetupSignalHandler_Callback(t *testing.T) {
	if os.Getenv("CI") == "true" {
		t.Skip("Skipping signal test in CI environment")
	}

	got := make(chan os.Signal, 1)
	ctx, stop := SetupSignalHandler(context.Background(), func(sig os.Signal) {
		got <- sig
	})
	defer stop()

	time.Sleep(10 * time.Millisecond)
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	select {
	case <-ctx.Done():
		assert.Equal(t, syscall.SIGINT, <-got)
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled after receiving signal")
	}
}

package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestServeStopsWhenContextIsCancelled(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, srv, time.Second, cmd)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
	if !strings.Contains(out.String(), "Server stopped") {
		t.Fatalf("expected shutdown message, got %q", out.String())
	}
}

func TestServeRejectsUnsupportedCleanupSchedule(t *testing.T) {
	t.Setenv("PORTFOLIO_COMMANDS_UPLOADS_CLEANUP_SCHEDULE", "0 3 * * *")

	_, err := runCLI(t, "", "serve", "--addr", "127.0.0.1:0")
	if err == nil {
		t.Fatal("expected unsupported schedule error")
	}
	if !strings.Contains(err.Error(), "unsupported schedule expression") {
		t.Fatalf("unexpected error %v", err)
	}
}

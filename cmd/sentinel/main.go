package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc/codes"

	"github.com/joseph-ayodele/contract-sentinel/internal/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, release := newRootCmd()
	err := root.ExecuteContext(ctx)
	release()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error onto a process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	switch common.CodeOf(err) {
	case codes.InvalidArgument:
		return 2
	case codes.Unavailable, codes.DeadlineExceeded:
		return 3
	default:
		return 1
	}
}

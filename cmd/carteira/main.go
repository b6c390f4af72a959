package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpps-dados/carteira/internal/cadprev"
	"github.com/rpps-dados/carteira/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		logFailure(err)
		os.Exit(1)
	}
}

func logFailure(err error) {
	if kind, ok := cadprev.KindOf(err); ok && kind == cadprev.KindCanceled {
		slog.Warn("run interrupted", "error", err)
		return
	}

	attrs := []any{"error", err}
	if kind, ok := cadprev.KindOf(err); ok {
		attrs = append(attrs, "kind", kind.String())
	} else if errors.Is(err, domain.ErrDataIntegrity) {
		attrs = append(attrs, "kind", "data_integrity")
	}
	slog.Error("run failed", attrs...)
}

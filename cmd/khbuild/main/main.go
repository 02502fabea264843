package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/arthur-debert/khbuild/cmd/khbuild"
	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := khbuild.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if code := errors.GetErrorCode(err); code != "" {
			msg = fmt.Sprintf("Error [%s]: %v", code, err)
		}
		fmt.Fprintln(os.Stderr, style.ErrorIndicator, style.ErrorStyle.Render(msg))
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ytanalyzer/internal/analysis"
	"ytanalyzer/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			if hint := errorHint(err); hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
			}
		}
		os.Exit(1)
	}
}

// errorHint suppresses hints for outcomes the user chose.
func errorHint(err error) string {
	if errors.Is(err, analysis.ErrDeclined) {
		return ""
	}
	return services.ErrorHint(err)
}

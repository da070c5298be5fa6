package main

import (
	"fmt"
	"io"

	"irforge/internal/observ"
)

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil || timer.Len() == 0 {
		return
	}
	fmt.Fprint(out, timer.Summary())
}

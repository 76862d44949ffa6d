// Command filterbox band-limits live or file audio with a low-pass and a
// high-pass stage and draws its spectrum in the terminal.
//
// Usage:
//
//	filterbox run [flags] [input.mp3]
//	filterbox config [flags]
//	filterbox response [flags]
//
// While running, type l<hz> or h<hz> to move a cutoff, l+<hz> or l-<hz>
// to nudge it, a bare l or h to open it again, and q to quit.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

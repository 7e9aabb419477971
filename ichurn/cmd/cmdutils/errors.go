package cmdutils

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

func ExitWithErr(err error) {
	fmt.Fprintln(color.Error, color.RedString("failed with error: %v", err.Error()))
	os.Exit(1)
}

// ExitWithErrs prints every error and exits. Panics when errs is empty.
func ExitWithErrs(errs []error) {
	if len(errs) == 0 {
		panic("no errors")
	}
	if len(errs) == 1 {
		ExitWithErr(errs[0])
		return
	}
	PrintErrs(color.Error, errs)
	fmt.Fprintln(color.Error, color.RedString("failed with %v errors", len(errs)))
	os.Exit(1)
}

func PrintErrs(wr io.Writer, errs []error) {
	for _, err := range errs {
		fmt.Fprintln(wr, color.RedString("%v", err))
	}
}

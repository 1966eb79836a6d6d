package foodagent

import (
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump pretty-prints v to stderr for debugging.
func Dump(v ...any) {
	Fdump(os.Stderr, v...)
}

// Fdump is Dump to w. Map keys are sorted and pointer addresses omitted so
// two dumps of equal values compare equal.
func Fdump(w io.Writer, v ...any) {
	dumper.Fdump(w, v...)
}

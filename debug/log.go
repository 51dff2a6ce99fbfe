package debug

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

var out io.Writer = os.Stderr

// Logf writes a debug message to stderr. Maps and slices among args are
// rendered as JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.Marshal(a)
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		}
	}
	fmt.Fprintf(out, msg, args...)
}

package main

import (
	"fmt"
	"io"

	"github.com/signadot/mutator/changes"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
)

type changeColors struct {
	add, del, mod, path func(string, ...any) string
}

func newChangeColors() *changeColors {
	mk := func(c *color.Color) func(string, ...any) string {
		c.EnableColor()
		return c.SprintfFunc()
	}
	return &changeColors{
		add:  mk(color.New(color.FgGreen)),
		del:  mk(color.New(color.FgRed)),
		mod:  mk(color.New(color.FgYellow)),
		path: mk(color.RGB(128, 168, 196)),
	}
}

func plain(f string, args ...any) string { return fmt.Sprintf(f, args...) }

// printChanges writes one line per change. A nil colors prints without
// color.
func printChanges(w io.Writer, cs []changes.Change, colors *changeColors) error {
	if colors == nil {
		colors = &changeColors{add: plain, del: plain, mod: plain, path: plain}
	}
	for _, c := range cs {
		var line string
		switch c.Kind {
		case changes.KindCreate:
			line = colors.add("+ create %s", value(c.Doc))
		case changes.KindDelete:
			line = colors.del("- delete")
		case changes.KindUnset:
			line = colors.del("- ") + colors.path("%s", c.Path) + colors.del(" %s", value(c.From))
		case changes.KindInsert:
			line = colors.add("+ ") + colors.path("%s", c.Path) + colors.add(" %s", value(c.To))
		default:
			line = colors.mod("~ ") + colors.path("%s", c.Path) +
				colors.del(" %s", value(c.From)) + colors.mod(" ->") + colors.add(" %s", value(c.To))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func value(v any) string {
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(d)
}

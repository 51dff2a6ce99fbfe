package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/signadot/mutator/config"
	"github.com/signadot/mutator/format"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color   bool `cli:"name=color desc='print changes with color'"`
	Verbose bool `cli:"name=v aliases=verbose desc='log debug messages'"`

	J bool `cli:"name=j aliases=json desc='output json'"`
	Y bool `cli:"name=y aliases=yaml desc='output yaml'"`

	File *config.Config

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) configOpt(_ *cli.Context, a string) (any, error) {
	c, err := config.Load(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	cfg.File = c
	return a, nil
}

func (cfg *MainConfig) setup() {
	if cfg.File == nil {
		cfg.File = config.Default()
	}
	if cfg.Verbose {
		logLevel.Set(slog.LevelDebug)
	}
}

func (cfg *MainConfig) outFormat() format.Format {
	switch {
	case cfg.Y:
		return format.YAMLFormat
	case cfg.J:
		return format.JSONFormat
	}
	return cfg.File.OutputFormat()
}

func (cfg *MainConfig) colors(w io.Writer) *changeColors {
	if cfg.Color {
		return newChangeColors()
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		if opt.Value != nil {
			return nil
		}
		break
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return newChangeColors()
	}
	return nil
}

type ApplyConfig struct {
	*MainConfig
	Doc     string `cli:"name=d aliases=doc desc='document file (default: absent)'"`
	Changes bool   `cli:"name=changes desc='print changes instead of the resulting document'"`

	Apply *cli.Command
}

type SquashConfig struct {
	*MainConfig
	Doc      string `cli:"name=d aliases=doc desc='document the mutations apply to'"`
	Optimize bool   `cli:"name=optimize desc='drop operations overwritten by later ones'"`

	Squash *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Diff *cli.Command
}

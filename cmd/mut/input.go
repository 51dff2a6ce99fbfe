package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/format"
	"github.com/signadot/mutator/mutation"

	"github.com/scott-cotton/cli"
)

// readInput reads path, or cc.In for "-", and converts it to JSON.
func readInput(cc *cli.Context, path string) ([]byte, error) {
	var r io.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return format.ToJSON(d)
}

func getDocFile(cc *cli.Context, path string) (document.Doc, error) {
	if path == "" {
		return nil, nil
	}
	j, err := readInput(cc, path)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(j)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return doc, nil
}

// getMutations reads mutations from files, or from stdin when there are
// none. Each file holds one mutation or a list.
func getMutations(cfg *MainConfig, cc *cli.Context, files []string) ([]*mutation.Mutation, error) {
	if len(files) == 0 {
		files = []string{"-"}
	}
	opts := cfg.File.MutationOptions()
	var res []*mutation.Mutation
	for _, file := range files {
		j, err := readInput(cc, file)
		if err != nil {
			return nil, err
		}
		ms, err := mutation.ParseList(j, opts...)
		if err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", file, err)
		}
		res = append(res, ms...)
	}
	return res, nil
}

func output(cfg *MainConfig, w io.Writer, v any) error {
	d, err := cfg.outFormat().Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Apply  bool
	Patch  bool
	Squash bool
}

var d *debug

func init() {
	d = &debug{}
	d.Apply = boolEnv("MUTATOR_DEBUG_APPLY")
	d.Patch = boolEnv("MUTATOR_DEBUG_PATCH")
	d.Squash = boolEnv("MUTATOR_DEBUG_SQUASH")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Apply() bool {
	return d.Apply
}
func Patch() bool {
	return d.Patch
}
func Squash() bool {
	return d.Squash
}

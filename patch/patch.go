package patch

// Patch is the wire form of a patch.
type Patch struct {
	// ID is the _id of the document the patch targets.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// IfRevisionID makes the patch fail unless the document has this
	// revision.
	IfRevisionID string `json:"ifRevisionID,omitempty" yaml:"ifRevisionID,omitempty"`
	// If is a boolean expression; when it evaluates to false the patch is
	// skipped. The document is available as doc and its revision as rev,
	// and get(path) returns the value at a path.
	If string `json:"if,omitempty" yaml:"if,omitempty"`

	SetIfMissing   map[string]any     `json:"setIfMissing,omitempty" yaml:"setIfMissing,omitempty"`
	Set            map[string]any     `json:"set,omitempty" yaml:"set,omitempty"`
	Unset          []string           `json:"unset,omitempty" yaml:"unset,omitempty"`
	Inc            map[string]float64 `json:"inc,omitempty" yaml:"inc,omitempty"`
	Dec            map[string]float64 `json:"dec,omitempty" yaml:"dec,omitempty"`
	Insert         *Insert            `json:"insert,omitempty" yaml:"insert,omitempty"`
	DiffMatchPatch map[string]string  `json:"diffMatchPatch,omitempty" yaml:"diffMatchPatch,omitempty"`
	// Merge is an RFC 7386 merge patch.
	Merge map[string]any `json:"merge,omitempty" yaml:"merge,omitempty"`
	// JSONPatch is a list of RFC 6902 operations.
	JSONPatch []map[string]any `json:"jsonPatch,omitempty" yaml:"jsonPatch,omitempty"`
}

// Insert inserts Items into an array relative to the element selected by
// exactly one of Before, After or Replace.
type Insert struct {
	Before  string `json:"before,omitempty" yaml:"before,omitempty"`
	After   string `json:"after,omitempty" yaml:"after,omitempty"`
	Replace string `json:"replace,omitempty" yaml:"replace,omitempty"`
	Items   []any  `json:"items" yaml:"items"`
}

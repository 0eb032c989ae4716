package dump

// Candidate is a file discovered during traversal that passed name and
// extension filtering.
type Candidate struct {
	Path string // Absolute path.
	Name string // Base name.
	Ext  string // Lowercase extension, possibly empty.
	Size int64  // Size in bytes; the target's size once a symlink is resolved.

	Symlink bool // Path is a symlink not yet resolved to its target.
}

// SkipReason clarifies why a file was not written.
type SkipReason string

const (
	SkipSelf       SkipReason = "self"       // The file is the output or another file of this run.
	SkipIgnored    SkipReason = "ignored"    // Matched an ignore pattern.
	SkipDenied     SkipReason = "denied"     // File name is on a deny-list.
	SkipTooLarge   SkipReason = "too-large"  // Larger than the configured limit.
	SkipBinary     SkipReason = "binary"     // Binary content, or the sample could not be read.
	SkipUnreadable SkipReason = "unreadable" // The full read failed, or a symlink could not be resolved.
	SkipDuplicate  SkipReason = "duplicate"  // Resolves to a file that is already a candidate.
)

// SkipReasons lists every reason in report order.
var SkipReasons = []SkipReason{SkipSelf, SkipIgnored, SkipDuplicate, SkipDenied, SkipTooLarge, SkipBinary, SkipUnreadable}

// SkippedItem holds information about a skipped file.
type SkippedItem struct {
	Path   string     `yaml:"path"`
	Reason SkipReason `yaml:"reason"`
	Detail string     `yaml:"detail,omitempty"` // MIME type or error text.
}

// Result summarizes one dump run.
type Result struct {
	Output     string        `yaml:"output"`     // Output file path.
	Candidates int           `yaml:"candidates"` // Candidates found by traversal, before self-exclusion.
	Files      []string      `yaml:"files"`      // Written files, in output order.
	Skipped    []SkippedItem `yaml:"skipped"`    // Skipped files, in the order they were skipped.
}

// Written returns the number of files written to the output.
func (r *Result) Written() int {
	return len(r.Files)
}

// SkipCounts returns the number of skipped files per reason.
func (r *Result) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, item := range r.Skipped {
		counts[item.Reason]++
	}
	return counts
}

func (r *Result) skip(path string, reason SkipReason, detail string) {
	r.Skipped = append(r.Skipped, SkippedItem{Path: path, Reason: reason, Detail: detail})
}

package model

// Result pairs the extracted project with extraction metadata. Entries
// that failed to parse are recorded as skips; they never abort a run.
type Result struct {
	Project *Project     `json:"project"`
	Skipped []SkipRecord `json:"skipped,omitempty"`
}

// SkipRecord notes one archive entry that was skipped during extraction.
type SkipRecord struct {
	Section string `json:"section"`
	Path    string `json:"path"`
	Reason  string `json:"reason"`
}

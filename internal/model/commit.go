package model

// Commit describes a candidate culprit commit supplied by the caller,
// typically most-recent-first.
type Commit struct {
	SHA          string   `json:"sha" yaml:"sha"`
	Author       string   `json:"author" yaml:"author"`
	Message      string   `json:"message" yaml:"message"`
	ChangedFiles []string `json:"changed_files" yaml:"changed_files"`
}

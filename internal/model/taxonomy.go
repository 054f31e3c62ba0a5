package model

// FailureCode is a leaf of the failure taxonomy: a hierarchical code id
// (e.g. "Test:Failure:Assertion") with the literal indicator substrings
// that signal it. Declaration order matters, the rule classifier breaks
// score ties in favor of the code declared first.
type FailureCode struct {
	Code       string   `json:"code"`
	Indicators []string `json:"indicators"`
}

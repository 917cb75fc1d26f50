package types

// ReviewResult is the reviewer-facing verdict derived from ProjectStatus
type ReviewResult string

const (
	ReviewResultNone        ReviewResult = ""
	ReviewResultPass        ReviewResult = "pass"
	ReviewResultConditional ReviewResult = "conditional"
	ReviewResultFail        ReviewResult = "fail"
)

// String returns the string representation of the review result
func (r ReviewResult) String() string {
	return string(r)
}

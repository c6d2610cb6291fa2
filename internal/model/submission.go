package model

import "github.com/google/uuid"

// Tip types used by every feedback category.
const (
	TipGood    = "good"
	TipImprove = "improve"
)

type Tip struct {
	Type        string `json:"type"` // "good" or "improve"
	Tip         string `json:"tip"`
	Explanation string `json:"explanation"`
}

// ATSTip carries no explanation; the ATS surface only shows short hints.
type ATSTip struct {
	Type string `json:"type"`
	Tip  string `json:"tip"`
}

type Category struct {
	Score int   `json:"score"` // 0-100
	Tips  []Tip `json:"tips"`
}

type ATSCategory struct {
	Score int      `json:"score"` // 0-100
	Tips  []ATSTip `json:"tips"`
}

// Feedback is the structured assessment produced by the inference
// service. It is built once from parsed model output and never mutated.
type Feedback struct {
	OverallScore int         `json:"overallScore"`
	ATS          ATSCategory `json:"ATS"`
	ToneAndStyle Category    `json:"toneAndStyle"`
	Content      Category    `json:"content"`
	Structure    Category    `json:"structure"`
	Skills       Category    `json:"skills"`
}

// SubmissionRecord is the durable unit for one analysis request. It is
// written exactly twice: pending (nil Feedback) right after both blobs
// are uploaded, and complete after inference output has been parsed.
type SubmissionRecord struct {
	ID             string    `json:"id"`
	ResumePath     string    `json:"resumePath"`
	ImagePath      string    `json:"imagePath"`
	CompanyName    string    `json:"companyName"`
	JobTitle       string    `json:"jobTitle"`
	JobDescription string    `json:"jobDescription"`
	Feedback       *Feedback `json:"feedback,omitempty"`
}

func (r *SubmissionRecord) Complete() bool {
	return r.Feedback != nil
}

// NewSubmissionID returns a fresh collision-resistant identifier. No
// coordination with the store; callers rely on uniqueness, not checks.
func NewSubmissionID() string {
	return uuid.NewString()
}

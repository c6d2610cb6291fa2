package dto

import (
	"github.com/fadilmartias/resumind/internal/feedback"
	"github.com/fadilmartias/resumind/internal/model"
)

type SubmissionDTO struct {
	ID             string          `json:"id"`
	CompanyName    string          `json:"company_name"`
	JobTitle       string          `json:"job_title"`
	JobDescription string          `json:"job_description"`
	ResumePath     string          `json:"resume_path"`
	ImagePath      string          `json:"image_path"`
	Complete       bool            `json:"complete"`
	OverallScore   *int            `json:"overall_score,omitempty"`
	Tier           string          `json:"tier,omitempty"`
	Feedback       *model.Feedback `json:"feedback,omitempty"`
}

func FromRecord(record *model.SubmissionRecord) SubmissionDTO {
	d := SubmissionDTO{
		ID:             record.ID,
		CompanyName:    record.CompanyName,
		JobTitle:       record.JobTitle,
		JobDescription: record.JobDescription,
		ResumePath:     record.ResumePath,
		ImagePath:      record.ImagePath,
		Complete:       record.Complete(),
		Feedback:       record.Feedback,
	}
	if record.Complete() {
		score := record.Feedback.OverallScore
		d.OverallScore = &score
		d.Tier = string(feedback.Classify(score))
	}
	return d
}

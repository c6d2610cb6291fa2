package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// SubmissionEmbedding holds the job-description embedding of a completed
// submission, used by the similar-submissions search. Written best
// effort after the complete checkpoint.
type SubmissionEmbedding struct {
	SubmissionID string          `gorm:"type:varchar(64);primaryKey" json:"submission_id"`
	CompanyName  string          `json:"company_name"`
	JobTitle     string          `json:"job_title"`
	Embedding    pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (e *SubmissionEmbedding) TableName() string {
	return "submission_embeddings"
}

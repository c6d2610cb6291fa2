package repository

import (
	"github.com/fadilmartias/resumind/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type EmbeddingRepository struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db}
}

func (r *EmbeddingRepository) Save(embedding *model.SubmissionEmbedding) error {
	return r.db.Save(embedding).Error
}

func (r *EmbeddingRepository) FindBySubmissionID(id string) (*model.SubmissionEmbedding, error) {
	var e model.SubmissionEmbedding
	err := r.db.First(&e, "submission_id = ?", id).Error
	return &e, err
}

// SearchSimilar returns the closest other submissions by embedding
// distance, nearest first.
func (r *EmbeddingRepository) SearchSimilar(embedding pgvector.Vector, excludeID string, topK int) ([]model.SubmissionEmbedding, error) {
	var results []model.SubmissionEmbedding

	err := r.db.Raw(`
        SELECT *, embedding <-> ? AS distance
        FROM submission_embeddings
        WHERE submission_id <> ?
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, excludeID, embedding, topK).Scan(&results).Error

	return results, err
}

package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/resumind/internal/apperror"
	"github.com/fadilmartias/resumind/internal/feedback"
	"github.com/fadilmartias/resumind/internal/model"
	"github.com/fadilmartias/resumind/internal/prompt"
	"github.com/fadilmartias/resumind/internal/repository"
	"github.com/fadilmartias/resumind/internal/service"
	"github.com/fadilmartias/resumind/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/pgvector/pgvector-go"
)

// Stage is the orchestrator's position in the pipeline. Stages advance
// strictly in order; Failed is terminal and reachable from any of them.
type Stage string

const (
	StageIdle                  Stage = "idle"
	StageUploadingDocument     Stage = "uploading_document"
	StageConvertingPreview     Stage = "converting_preview"
	StageUploadingPreview      Stage = "uploading_preview"
	StageCheckpointingPending  Stage = "checkpointing_pending"
	StageInferring             Stage = "inferring"
	StageParsingResult         Stage = "parsing_result"
	StageCheckpointingComplete Stage = "checkpointing_complete"
	StageDone                  Stage = "done"
	StageFailed                Stage = "failed"
)

// StageCallback receives stage transitions for display. It must not
// block; it runs on the pipeline's own flow of control.
type StageCallback func(stage Stage, detail string)

// Converter produces the first-page preview image for a document.
type Converter func(document []byte) ([]byte, error)

type AnalysisInput struct {
	CompanyName    string `validate:"required"`
	JobTitle       string `validate:"required"`
	JobDescription string `validate:"required"`
	FileName       string
	Document       []byte
}

type AnalysisUsecase struct {
	store     *repository.SubmissionStore
	blobs     storage.BlobStore
	convert   Converter
	inference service.InferenceServiceInterface
	validate  *validator.Validate

	// Optional similar-submission support; nil disables it.
	embedder   service.EmbeddingServiceInterface
	embeddings *repository.EmbeddingRepository
}

func NewAnalysisUsecase(store *repository.SubmissionStore, blobs storage.BlobStore, convert Converter, inference service.InferenceServiceInterface) *AnalysisUsecase {
	return &AnalysisUsecase{
		store:     store,
		blobs:     blobs,
		convert:   convert,
		inference: inference,
		validate:  validator.New(),
	}
}

// WithSimilarity enables best-effort job-description embeddings for the
// similar-submissions search.
func (uc *AnalysisUsecase) WithSimilarity(embedder service.EmbeddingServiceInterface, embeddings *repository.EmbeddingRepository) *AnalysisUsecase {
	uc.embedder = embedder
	uc.embeddings = embeddings
	return uc
}

// Analyze runs one submission through the pipeline and returns the
// generated id once the complete record is durable. The pending record
// is checkpointed before inference so upload cost survives an inference
// failure; nothing is retried and nothing is rolled back. onStage may
// be nil.
func (uc *AnalysisUsecase) Analyze(ctx context.Context, input AnalysisInput, onStage StageCallback) (string, error) {
	setStage := func(stage Stage, detail string) {
		if onStage != nil {
			onStage(stage, detail)
		}
	}
	fail := func(err error) (string, error) {
		setStage(StageFailed, err.Error())
		return "", err
	}

	setStage(StageIdle, "validating submission")
	if err := uc.validate.Struct(input); err != nil {
		return fail(apperror.Wrap(apperror.KindValidation, "company name, job title and job description are required", err))
	}
	if len(input.Document) == 0 {
		return fail(apperror.New(apperror.KindValidation, "a document is required"))
	}

	id := model.NewSubmissionID()

	setStage(StageUploadingDocument, "uploading original document")
	resumePath, err := uc.blobs.Upload(ctx, id+"/resume.pdf", input.Document)
	if err != nil {
		return fail(apperror.Wrap(apperror.KindUpload, "document upload failed", err))
	}

	if err := canceled(ctx); err != nil {
		return fail(err)
	}

	setStage(StageConvertingPreview, "rendering first-page preview")
	preview, err := uc.convert(input.Document)
	if err != nil {
		return fail(err)
	}

	setStage(StageUploadingPreview, "uploading preview image")
	imagePath, err := uc.blobs.Upload(ctx, id+"/preview.png", preview)
	if err != nil {
		return fail(apperror.Wrap(apperror.KindUpload, "preview upload failed", err))
	}

	record := model.SubmissionRecord{
		ID:             id,
		ResumePath:     resumePath,
		ImagePath:      imagePath,
		CompanyName:    input.CompanyName,
		JobTitle:       input.JobTitle,
		JobDescription: input.JobDescription,
	}

	// Pending checkpoint goes in before the slow, least reliable
	// inference call; a failure past this point leaves a retrievable
	// pending record instead of silently wasting the uploads.
	setStage(StageCheckpointingPending, "saving pending record")
	if err := uc.store.Put(&record); err != nil {
		return fail(err)
	}

	if err := canceled(ctx); err != nil {
		return fail(err)
	}

	setStage(StageInferring, "analyzing document")
	raw, err := uc.inference.Feedback(ctx, resumePath,
		prompt.PrepareInstructions(input.CompanyName, input.JobTitle, input.JobDescription))
	if err != nil {
		return fail(err)
	}

	setStage(StageParsingResult, "parsing feedback")
	fb, err := feedback.Parse(raw)
	if err != nil {
		return fail(err)
	}

	setStage(StageCheckpointingComplete, "saving complete record")
	record.Feedback = fb
	if err := uc.store.Put(&record); err != nil {
		return fail(err)
	}

	uc.saveEmbedding(ctx, &record)

	setStage(StageDone, id)
	return id, nil
}

// canceled is the cooperative cancellation check between stages. An
// already-issued upload or inference call is never aborted; it may
// still complete and write its checkpoint.
func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("analysis canceled: %w", err)
	}
	return nil
}

// saveEmbedding is best effort; a failure here never fails the run.
func (uc *AnalysisUsecase) saveEmbedding(ctx context.Context, record *model.SubmissionRecord) {
	if uc.embedder == nil || uc.embeddings == nil {
		return
	}
	values, err := uc.embedder.GenerateEmbedding(ctx, record.JobDescription)
	if err != nil {
		log.Printf("embedding for submission %s skipped: %v", record.ID, err)
		return
	}
	emb := model.SubmissionEmbedding{
		SubmissionID: record.ID,
		CompanyName:  record.CompanyName,
		JobTitle:     record.JobTitle,
		Embedding:    pgvector.NewVector(values),
		CreatedAt:    time.Now(),
	}
	if err := uc.embeddings.Save(&emb); err != nil {
		log.Printf("embedding for submission %s not saved: %v", record.ID, err)
	}
}

func (uc *AnalysisUsecase) GetSubmission(id string) (*model.SubmissionRecord, error) {
	return uc.store.Get(id)
}

func (uc *AnalysisUsecase) ListSubmissions() ([]model.SubmissionRecord, int, error) {
	return uc.store.ListAll()
}

// ReadBlob streams a stored blob back through the storage collaborator.
func (uc *AnalysisUsecase) ReadBlob(ctx context.Context, handle string) ([]byte, error) {
	return uc.blobs.Read(ctx, handle)
}

// SimilarSubmissions returns the nearest other submissions by job
// description embedding distance.
func (uc *AnalysisUsecase) SimilarSubmissions(id string, topK int) ([]model.SubmissionEmbedding, error) {
	if uc.embeddings == nil {
		return nil, fmt.Errorf("similarity search is not enabled")
	}
	own, err := uc.embeddings.FindBySubmissionID(id)
	if err != nil {
		return nil, fmt.Errorf("no embedding for submission %s: %w", id, err)
	}
	return uc.embeddings.SearchSimilar(own.Embedding, id, topK)
}

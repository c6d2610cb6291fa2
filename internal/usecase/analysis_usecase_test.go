package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/fadilmartias/resumind/internal/apperror"
	"github.com/fadilmartias/resumind/internal/model"
	"github.com/fadilmartias/resumind/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFeedbackJSON = `{
	"overallScore": 82,
	"ATS": {"score": 75, "tips": [{"type": "good", "tip": "Standard headings"}]},
	"toneAndStyle": {"score": 80, "tips": [{"type": "good", "tip": "Professional tone", "explanation": "Reads confidently."}]},
	"content": {"score": 78, "tips": [{"type": "improve", "tip": "Quantify results", "explanation": "Add numbers."}]},
	"structure": {"score": 85, "tips": [{"type": "good", "tip": "Clear hierarchy", "explanation": "Conventional order."}]},
	"skills": {"score": 70, "tips": [{"type": "improve", "tip": "Surface cloud work", "explanation": "The posting wants GCP."}]}
}`

type memKV struct {
	entries map[string]string
	sets    int
}

func newMemKV() *memKV { return &memKV{entries: make(map[string]string)} }

func (m *memKV) Get(key string) (string, bool, error) {
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.sets++
	m.entries[key] = value
	return nil
}

func (m *memKV) ListPrefix(prefix string) ([]model.KVEntry, error) {
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	entries := make([]model.KVEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, model.KVEntry{Key: key, Value: m.entries[key]})
	}
	return entries, nil
}

type fakeBlobs struct {
	blobs   map[string][]byte
	uploads int
	fail    bool
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{blobs: make(map[string][]byte)} }

func (f *fakeBlobs) Upload(_ context.Context, name string, data []byte) (string, error) {
	if f.fail {
		return "", errors.New("storage unavailable")
	}
	f.uploads++
	handle := "mem/" + name
	f.blobs[handle] = data
	return handle, nil
}

func (f *fakeBlobs) Read(_ context.Context, handle string) ([]byte, error) {
	data, ok := f.blobs[handle]
	if !ok {
		return nil, errors.New("unknown handle")
	}
	return data, nil
}

type fakeInference struct {
	fn               func(ctx context.Context, resumePath, instructions string) (string, error)
	calls            int
	lastPath         string
	lastInstructions string
}

func (f *fakeInference) Feedback(ctx context.Context, resumePath, instructions string) (string, error) {
	f.calls++
	f.lastPath = resumePath
	f.lastInstructions = instructions
	return f.fn(ctx, resumePath, instructions)
}

func stubConvert(document []byte) ([]byte, error) {
	return append([]byte("png:"), document...), nil
}

func validInput() AnalysisInput {
	return AnalysisInput{
		CompanyName:    "Acme",
		JobTitle:       "Engineer",
		JobDescription: "Build things",
		FileName:       "resume.pdf",
		Document:       []byte("%PDF-1.4 fake"),
	}
}

func newTestUsecase(kv *memKV, blobs *fakeBlobs, infer *fakeInference) (*AnalysisUsecase, *repository.SubmissionStore) {
	store := repository.NewSubmissionStore(kv)
	return NewAnalysisUsecase(store, blobs, stubConvert, infer), store
}

func TestAnalyzeHappyPath(t *testing.T) {
	kv := newMemKV()
	blobs := newFakeBlobs()
	infer := &fakeInference{fn: func(context.Context, string, string) (string, error) {
		return validFeedbackJSON, nil
	}}
	uc, store := newTestUsecase(kv, blobs, infer)

	var stages []Stage
	id, err := uc.Analyze(context.Background(), validInput(), func(stage Stage, _ string) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	record, err := store.Get(id)
	require.NoError(t, err)
	assert.True(t, record.Complete())
	assert.NotEmpty(t, record.ResumePath)
	assert.NotEmpty(t, record.ImagePath)
	assert.Equal(t, "Acme", record.CompanyName)

	for _, score := range []int{
		record.Feedback.OverallScore,
		record.Feedback.ATS.Score,
		record.Feedback.ToneAndStyle.Score,
		record.Feedback.Content.Score,
		record.Feedback.Structure.Score,
		record.Feedback.Skills.Score,
	} {
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}

	assert.Equal(t, 2, kv.sets, "record must be checkpointed exactly twice")
	assert.Equal(t, 2, blobs.uploads, "document plus preview")
	assert.Equal(t, record.ResumePath, infer.lastPath, "inference receives the uploaded document handle")
	assert.Contains(t, infer.lastInstructions, "Build things")

	assert.Equal(t, []Stage{
		StageIdle,
		StageUploadingDocument,
		StageConvertingPreview,
		StageUploadingPreview,
		StageCheckpointingPending,
		StageInferring,
		StageParsingResult,
		StageCheckpointingComplete,
		StageDone,
	}, stages)
}

func TestAnalyzeValidationFailureHasNoSideEffects(t *testing.T) {
	kv := newMemKV()
	blobs := newFakeBlobs()
	infer := &fakeInference{fn: func(context.Context, string, string) (string, error) {
		return validFeedbackJSON, nil
	}}
	uc, _ := newTestUsecase(kv, blobs, infer)

	inputs := []AnalysisInput{
		{JobTitle: "Engineer", JobDescription: "Build", Document: []byte("x")},
		{CompanyName: "Acme", JobDescription: "Build", Document: []byte("x")},
		{CompanyName: "Acme", JobTitle: "Engineer", Document: []byte("x")},
		{CompanyName: "Acme", JobTitle: "Engineer", JobDescription: "Build"},
	}
	for _, input := range inputs {
		_, err := uc.Analyze(context.Background(), input, nil)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	}

	assert.Zero(t, kv.sets)
	assert.Zero(t, blobs.uploads)
	assert.Zero(t, infer.calls)
}

func TestAnalyzePendingCheckpointPrecedesInference(t *testing.T) {
	kv := newMemKV()
	blobs := newFakeBlobs()
	uc, store := newTestUsecase(kv, blobs, &fakeInference{})

	var observedPending bool
	infer := &fakeInference{fn: func(context.Context, string, string) (string, error) {
		// By the time inference runs, the pending record must already
		// be durable.
		records, _, err := store.ListAll()
		require.NoError(t, err)
		observedPending = len(records) == 1 && !records[0].Complete()
		return "", apperror.New(apperror.KindInference, "injected failure")
	}}
	uc.inference = infer

	_, err := uc.Analyze(context.Background(), validInput(), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInference))
	assert.True(t, observedPending)

	// The pending record survives the failure as recoverable data.
	records, skipped, err := store.ListAll()
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, records, 1)
	assert.False(t, records[0].Complete())
	assert.NotEmpty(t, records[0].ResumePath)
	assert.Equal(t, 1, kv.sets)
}

func TestAnalyzeMalformedInferenceOutput(t *testing.T) {
	for _, raw := range []string{
		"{ truncated",
		`{"overallScore": 82}`,
		strings.Replace(validFeedbackJSON, `"overallScore": 82`, `"overallScore": 150`, 1),
	} {
		kv := newMemKV()
		blobs := newFakeBlobs()
		infer := &fakeInference{fn: func(context.Context, string, string) (string, error) {
			return raw, nil
		}}
		uc, store := newTestUsecase(kv, blobs, infer)

		_, err := uc.Analyze(context.Background(), validInput(), nil)
		require.Error(t, err, "output %q", raw)
		assert.True(t, apperror.IsKind(err, apperror.KindParse))

		// Only the pending checkpoint was written; no complete record.
		records, _, listErr := store.ListAll()
		require.NoError(t, listErr)
		require.Len(t, records, 1)
		assert.False(t, records[0].Complete())
	}
}

func TestAnalyzeUploadFailure(t *testing.T) {
	kv := newMemKV()
	blobs := newFakeBlobs()
	blobs.fail = true
	infer := &fakeInference{fn: func(context.Context, string, string) (string, error) {
		return validFeedbackJSON, nil
	}}
	uc, _ := newTestUsecase(kv, blobs, infer)

	_, err := uc.Analyze(context.Background(), validInput(), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpload))
	assert.Zero(t, kv.sets)
}

func TestAnalyzeRunsProduceDistinctIDs(t *testing.T) {
	kv := newMemKV()
	blobs := newFakeBlobs()
	infer := &fakeInference{fn: func(context.Context, string, string) (string, error) {
		return validFeedbackJSON, nil
	}}
	uc, store := newTestUsecase(kv, blobs, infer)

	first, err := uc.Analyze(context.Background(), validInput(), nil)
	require.NoError(t, err)
	second, err := uc.Analyze(context.Background(), validInput(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	records, _, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAnalyzeCooperativeCancellation(t *testing.T) {
	kv := newMemKV()
	blobs := newFakeBlobs()
	infer := &fakeInference{fn: func(context.Context, string, string) (string, error) {
		return validFeedbackJSON, nil
	}}
	uc, _ := newTestUsecase(kv, blobs, infer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Analyze(ctx, validInput(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// The document upload had already been issued before the check.
	assert.Equal(t, 1, blobs.uploads)
	assert.Zero(t, infer.calls)
}

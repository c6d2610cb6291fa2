package service

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/fadilmartias/resumind/internal/apperror"
	"github.com/fadilmartias/resumind/internal/config"
	"github.com/fadilmartias/resumind/internal/storage"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterService is the alternate inference provider. The document
// travels as a base64 data URL file part; the raw message content comes
// back as-is and normalization is left to the feedback parser.
type OpenRouterService struct {
	APIKey string
	Model  string
	Blobs  storage.BlobStore
	client *resty.Client
}

func NewOpenRouterService(blobs storage.BlobStore) *OpenRouterService {
	cfg := config.LoadOpenRouterConfig()
	model := cfg.Model
	if model == "" {
		model = "openai/gpt-4o-mini"
	}
	return &OpenRouterService{
		APIKey: cfg.APIKey,
		Model:  model,
		Blobs:  blobs,
		client: resty.New().SetTimeout(2 * time.Minute),
	}
}

func (s *OpenRouterService) Feedback(ctx context.Context, resumePath string, instructions string) (string, error) {
	if s.APIKey == "" {
		return "", apperror.New(apperror.KindInference, "OPENROUTER_API_KEY not set")
	}

	document, err := s.Blobs.Read(ctx, resumePath)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInference, "cannot read uploaded document", err)
	}

	payload := map[string]any{
		"model": s.Model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "file",
						"file": map[string]string{
							"filename":  "resume.pdf",
							"file_data": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(document),
						},
					},
					{"type": "text", "text": instructions},
				},
			},
		},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(openRouterURL)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInference, "openrouter request failed", err)
	}
	if resp.IsError() {
		return "", apperror.Newf(apperror.KindInference, "openrouter returned status %d: %s",
			resp.StatusCode(), gjson.Get(resp.String(), "error.message").String())
	}

	content := gjson.Get(resp.String(), "choices.0.message.content")
	if !content.Exists() || content.String() == "" {
		return "", apperror.New(apperror.KindInference, "no response content from model")
	}
	if content.IsArray() {
		// One-element list carrying a text field; the feedback
		// normalizer collapses this shape.
		return content.Raw, nil
	}
	return content.String(), nil
}

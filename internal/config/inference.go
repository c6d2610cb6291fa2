package config

import (
	"os"
	"sync"
)

type InferenceConfig struct {
	Provider string // "gemini" or "openrouter"
}

var (
	inferenceConfig *InferenceConfig
	inferenceOnce   sync.Once
)

func LoadInferenceConfig() *InferenceConfig {
	inferenceOnce.Do(func() {
		provider := os.Getenv("INFERENCE_PROVIDER")
		if provider == "" {
			provider = "gemini"
		}
		inferenceConfig = &InferenceConfig{Provider: provider}
	})
	return inferenceConfig
}

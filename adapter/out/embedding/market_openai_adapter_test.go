package embedding

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestEmbeddingModelResolution(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  openai.EmbeddingModel
	}{
		{"default", "", openai.AdaEmbeddingV2},
		{"ada v2 by name", "text-embedding-ada-002", openai.AdaEmbeddingV2},
		{"unknown falls back", "text-embedding-9000", openai.AdaEmbeddingV2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := embeddingModel(tt.model); got != tt.want {
				t.Errorf("embeddingModel(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestNewOpenAIAdapterDefaults(t *testing.T) {
	a := NewOpenAIAdapter(Config{APIKey: "test-key"})
	if a.model != openai.AdaEmbeddingV2 {
		t.Errorf("model = %v, want %v", a.model, openai.AdaEmbeddingV2)
	}
	if a.cb == nil {
		t.Error("expected circuit breaker to be configured")
	}
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/docintel/answer-engine/internal/assemble"
	"github.com/docintel/answer-engine/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	return NewGenerator(newTestClient(t, handler), logrus.New())
}

func answerWith(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": text}},
			},
			"usage": map[string]int{"total_tokens": 10},
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	gen := newTestGenerator(t, answerWith("Paris is the capital of France. [1]"))

	block := assemble.Assemble([]models.SearchResult{
		{Title: "Paris", Link: "https://en.wikipedia.org/wiki/Paris", Snippet: "Paris is the capital of France."},
	}, nil, "", assemble.Options{})

	result := gen.Generate(context.Background(), "What is the capital of France?", block, nil)
	assert.False(t, result.Failed)
	assert.Equal(t, "Paris is the capital of France. [1]", result.Text)
	assert.Equal(t, 10, result.TokensUsed)
}

func TestGenerator_PromptIncludesContext(t *testing.T) {
	var captured CompletionRequest
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		answerWith("ok")(w, r)
	})

	block := assemble.Assemble([]models.SearchResult{
		{Title: "Paris", Link: "https://en.wikipedia.org/wiki/Paris", Snippet: "Paris is the capital."},
	}, nil, "", assemble.Options{})

	gen.Generate(context.Background(), "capital of france?", block, nil)

	require.Len(t, captured.Messages, 2)
	userPrompt := captured.Messages[1].Content
	assert.Contains(t, userPrompt, "Context:")
	assert.Contains(t, userPrompt, "Paris is the capital.")
	assert.Contains(t, userPrompt, "Question: capital of france?")
}

func TestGenerator_QuestionOnlyWhenContextEmpty(t *testing.T) {
	var captured CompletionRequest
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		answerWith("ok")(w, r)
	})

	gen.Generate(context.Background(), "what is Go?", assemble.ContextBlock{}, nil)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "what is Go?", captured.Messages[1].Content)
}

func TestGenerator_DegradesToApologyOnBackendError(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	result := gen.Generate(context.Background(), "anything", assemble.ContextBlock{}, nil)
	assert.True(t, result.Failed)
	assert.Equal(t, ApologyMessage, result.Text)
	assert.Zero(t, result.TokensUsed)
}

func TestGenerator_DegradesToApologyOnEmptyAnswer(t *testing.T) {
	gen := newTestGenerator(t, answerWith(""))

	result := gen.Generate(context.Background(), "anything", assemble.ContextBlock{}, nil)
	assert.True(t, result.Failed)
	assert.Equal(t, ApologyMessage, result.Text)
}

func TestGenerator_StreamsWhenSinkProvided(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		var req CompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"streamed"}}]}` + "\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	})

	var chunks []string
	result := gen.Generate(context.Background(), "anything", assemble.ContextBlock{}, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	assert.False(t, result.Failed)
	assert.Equal(t, "streamed", result.Text)
	assert.Equal(t, []string{"streamed"}, chunks)
}

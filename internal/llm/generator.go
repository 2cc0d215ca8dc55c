package llm

import (
	"context"

	"github.com/docintel/answer-engine/internal/assemble"
	"github.com/sirupsen/logrus"
)

// ApologyMessage is returned whenever the generation backend fails. The chat
// must never crash on a backend error, so the generator swallows the error
// and surfaces this fixed text with Failed set.
const ApologyMessage = "I'm sorry, I wasn't able to generate an answer right now. Please try again in a moment."

const systemInstruction = `You are a helpful research assistant. Answer the question directly and concisely.
When the provided context contains relevant information, base your answer on it and cite sources by their bracketed number.
If the context does not cover the question, say so and answer from general knowledge.
Do not fabricate sources.`

// Generation is the outcome of one generate call. Failed marks a degraded
// answer (the apology text), never a crash.
type Generation struct {
	Text       string
	TokensUsed int
	Failed     bool
}

// Generator wraps the completion client with the fixed prompt contract.
type Generator struct {
	client *Client
	logger *logrus.Logger
}

func NewGenerator(client *Client, logger *logrus.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

// Model returns the backing model identifier.
func (g *Generator) Model() string { return g.client.Model() }

// Generate produces an answer for the question over the assembled context.
// When sink is non-nil the answer is streamed to it chunk by chunk in
// arrival order; otherwise a single-shot completion is used. Backend errors
// degrade to the apology message; Generate never returns an error.
func (g *Generator) Generate(ctx context.Context, question string, block assemble.ContextBlock, sink func(chunk string)) Generation {
	messages := g.buildMessages(question, block)

	var completion *Completion
	var err error
	if sink != nil {
		completion, err = g.client.Stream(ctx, messages, sink)
	} else {
		completion, err = g.client.Complete(ctx, messages)
	}

	if err != nil {
		g.logger.WithError(err).Error("Generation backend failed")
		return Generation{Text: ApologyMessage, Failed: true}
	}
	if completion.Text == "" {
		g.logger.Warn("Generation backend returned empty answer")
		return Generation{Text: ApologyMessage, Failed: true}
	}

	return Generation{Text: completion.Text, TokensUsed: completion.TokensUsed}
}

func (g *Generator) buildMessages(question string, block assemble.ContextBlock) []Message {
	userPrompt := question
	if !block.Empty() {
		userPrompt = "Context:\n" + block.Serialize() + "\nQuestion: " + question
	}

	return []Message{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: userPrompt},
	}
}

package classifier

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog"

	"github.com/ptl2504/text-vending/internal/core/domain"
	"github.com/ptl2504/text-vending/internal/port"
)

// instruction pins the oracle to the closed vocabulary; the engine
// still validates the returned token.
const instruction = "Answer with exactly one word: soda, orangejuice, water or none."

type OpenAIClassifier struct {
	client openai.Client
	model  string
	cache  port.CacheRepository
	log    zerolog.Logger
}

// NewOpenAIClassifier builds the gateway. cache may be nil to disable
// label caching.
func NewOpenAIClassifier(client openai.Client, model string, cache port.CacheRepository, log zerolog.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{client: client, model: model, cache: cache, log: log}
}

// Classify asks the oracle which item the text requests. Identical
// texts resolve from the cache without a round-trip. Tokens outside
// the vocabulary normalize to LabelNone.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (domain.Label, error) {
	if c.cache != nil {
		label, ok, err := c.cache.GetLabel(ctx, text)
		if err != nil {
			// Cache trouble is not worth failing the transaction over.
			c.log.Warn().Err(err).Msg("label cache read failed")
		} else if ok {
			return label, nil
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	label := domain.ParseLabel(resp.Choices[0].Message.Content)

	if c.cache != nil {
		if err := c.cache.SetLabel(ctx, text, label); err != nil {
			c.log.Warn().Err(err).Msg("label cache write failed")
		}
	}

	return label, nil
}

// Package diagnosis asks a chat completion model for a written assessment of
// a scored repository.
package diagnosis

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/commit-health/internal/config"
)

// ErrDisabled is returned when no API key is configured
var ErrDisabled = stderrors.New("diagnosis disabled: OPENAI_API_KEY is not set")

// Analyst streams diagnoses from an OpenAI compatible endpoint
type Analyst struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

// NewAnalyst creates an analyst from cfg. It returns ErrDisabled when cfg has
// no API key.
func NewAnalyst(cfg config.OpenAIConfig, logger *logrus.Logger) (*Analyst, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultOpenAIModel
	}

	return &Analyst{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}, nil
}

// Diagnose streams the model's answer for facts into w as it arrives and
// returns the number of bytes written
func (a *Analyst) Diagnose(ctx context.Context, facts Facts, w io.Writer) (int, error) {
	logger := a.logger.WithFields(logrus.Fields{
		"repository": facts.Repository,
		"model":      a.model,
	})
	logger.Debug("Requesting diagnosis")

	stream, err := a.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(facts)},
		},
		Stream: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to call LLM: %w", err)
	}
	defer stream.Close()

	written := 0
	for {
		resp, err := stream.Recv()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("diagnosis stream failed: %w", err)
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			n, err := io.WriteString(w, choice.Delta.Content)
			written += n
			if err != nil {
				return written, fmt.Errorf("failed to write diagnosis: %w", err)
			}
		}
	}

	if written == 0 {
		return 0, stderrors.New("LLM returned empty response")
	}
	logger.WithField("bytes", written).Debug("Diagnosis complete")
	return written, nil
}

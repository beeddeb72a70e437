// Package cleaner is the optional LLM text-cleaning pass that runs before
// synthesis. Cleaning is strictly best-effort: any failure returns the
// original text with a zero quality score, and the caller decides whether the
// cleaned text is good enough to use.
package cleaner

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"audiobatch/internal/api"
)

// QualityThreshold is the minimum quality score at which cleaned text should
// be preferred over the original.
const QualityThreshold = 0.5

// Result is the outcome of one cleaning pass.
type Result struct {
	Text         string
	QualityScore float64
	Confidence   float64
	ChangesMade  []string
	ModelUsed    string
}

// Cleaner is the text-cleaning capability the file processor may be given.
type Cleaner interface {
	// Clean returns improved text and a quality assessment. Clean never
	// fails hard: on any upstream error it returns the original text with
	// a zero score and a nil error.
	Clean(ctx context.Context, text string) (Result, error)
}

// ChatClient is the slice of the API client the cleaner needs.
type ChatClient interface {
	ChatComplete(ctx context.Context, req api.ChatRequest) (string, error)
}

// Config controls the cleaning and assessment calls.
type Config struct {
	Model       string
	Level       string // light, medium, aggressive
	Temperature float64
	MaxTokens   int
}

// LLMCleaner cleans text through the chat-completion endpoint and scores the
// result with a second assessment call.
type LLMCleaner struct {
	chat ChatClient
	cfg  Config
}

// New creates an LLMCleaner. Zero config fields fall back to the defaults
// used by the TTS pipeline.
func New(chat ChatClient, cfg Config) *LLMCleaner {
	if cfg.Model == "" {
		cfg.Model = "gpt-4-turbo-preview"
	}
	if cfg.Level == "" {
		cfg.Level = "medium"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}
	return &LLMCleaner{chat: chat, cfg: cfg}
}

// Clean runs the cleaning call followed by the quality assessment.
func (c *LLMCleaner) Clean(ctx context.Context, text string) (Result, error) {
	cleaned, err := c.chat.ChatComplete(ctx, api.ChatRequest{
		Model: c.cfg.Model,
		Messages: []api.ChatMessage{
			{Role: "system", Content: "You are an expert text editor specializing in preparing text for speech synthesis."},
			{Role: "user", Content: c.cleaningPrompt(text)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		log.Error().Err(err).Msg("Text cleaning failed, using original text")
		return Result{Text: text, ModelUsed: c.cfg.Model, ChangesMade: []string{"Cleaning failed - using original text"}}, nil
	}
	cleaned = strings.TrimSpace(cleaned)

	assessment := c.assess(ctx, text, cleaned)
	return Result{
		Text:         cleaned,
		QualityScore: assessment.QualityScore,
		Confidence:   assessment.ConfidenceScore,
		ChangesMade:  assessment.ChangesMade,
		ModelUsed:    c.cfg.Model,
	}, nil
}

type qualityAssessment struct {
	QualityScore    float64  `json:"quality_score"`
	ConfidenceScore float64  `json:"confidence_score"`
	ChangesMade     []string `json:"changes_made"`
}

// assess asks the model to score the cleaning. An unusable answer falls back
// to a moderate default score rather than discarding the cleaned text.
func (c *LLMCleaner) assess(ctx context.Context, original, cleaned string) qualityAssessment {
	fallback := qualityAssessment{
		QualityScore:    0.7,
		ConfidenceScore: 0.6,
		ChangesMade:     []string{"Text cleaned with LLM"},
	}

	answer, err := c.chat.ChatComplete(ctx, api.ChatRequest{
		Model: c.cfg.Model,
		Messages: []api.ChatMessage{
			{Role: "system", Content: "You are a text quality assessment expert."},
			{Role: "user", Content: assessmentPrompt(original, cleaned)},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Quality assessment failed, using default score")
		return fallback
	}

	assessment, err := parseAssessment(answer)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse quality assessment, using default score")
		return fallback
	}
	return assessment
}

func (c *LLMCleaner) cleaningPrompt(text string) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are an expert text editor and speech preparation specialist. Your task is to clean and improve the following text for Text-to-Speech (TTS) conversion.

TEXT TO CLEAN:
%s

CLEANING REQUIREMENTS:
- Fix grammar, punctuation, and spelling errors
- Improve sentence structure and flow for natural speech
- Ensure proper paragraph breaks and formatting
- Remove any inappropriate content or formatting
- Maintain the original meaning and intent
- Optimize for clear pronunciation and natural speech patterns

CLEANING LEVEL: %s

Please return only the cleaned text without any explanations or markdown formatting.
`, text, strings.ToUpper(c.cfg.Level)))
}

func assessmentPrompt(original, cleaned string) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are a text quality assessment expert. Please evaluate the improvement made to this text.

ORIGINAL TEXT:
%s

CLEANED TEXT:
%s

Please provide a JSON response with the following structure:
{
    "quality_score": <float between 0.0 and 1.0>,
    "confidence_score": <float between 0.0 and 1.0>,
    "changes_made": ["description of each change"]
}

Focus on:
- Grammar and punctuation improvements
- Sentence structure and flow
- Clarity and readability
- Suitability for speech synthesis
`, original, cleaned))
}

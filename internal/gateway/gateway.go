// Package gateway wraps the hosted text-generation model behind the three
// document tasks: translation, question answering and summarization.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"academic-translator/internal/excerpt"
	"academic-translator/internal/store"
)

// ErrGenerationFailed wraps every failure of the remote call: missing or
// invalid credential, network, quota. Causes are not classified further.
var ErrGenerationFailed = errors.New("generation failed")

const (
	// excerptSearchLimit bounds the sentence scan; maxExcerpts is what callers get.
	excerptSearchLimit = 5
	maxExcerpts        = 3
)

// Answer is the result of a question about a document.
type Answer struct {
	Text     string   `json:"answer"`
	Excerpts []string `json:"excerpts"`
}

// Summary is the parsed result of a summarization call.
type Summary struct {
	Text      string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Length    Length   `json:"length"`
}

// Gateway runs the document tasks against the model held by its Handle.
type Gateway struct {
	log      *slog.Logger
	handle   *Handle
	settings store.Store
}

// New returns a Gateway using handle for model access and settings for the
// stored credential.
func New(log *slog.Logger, handle *Handle, settings store.Store) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{log: log, handle: handle, settings: settings}
}

// Handle exposes the client handle, e.g. to report the credential source.
func (g *Gateway) Handle() *Handle { return g.handle }

// Translate returns the model's translation verbatim.
func (g *Gateway) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return g.generate(ctx, "translate", buildTranslatePrompt(text, sourceLang, targetLang))
}

// AnswerQuestion asks the model about documentText. Excerpts are chosen by
// keyword containment over the document's sentences, independently of the
// model's answer.
func (g *Gateway) AnswerQuestion(ctx context.Context, documentText, question string) (Answer, error) {
	text, err := g.generate(ctx, "answer", buildAnswerPrompt(documentText, question))
	if err != nil {
		return Answer{}, err
	}
	excerpts := excerpt.Find(documentText, question, excerptSearchLimit)
	if len(excerpts) > maxExcerpts {
		excerpts = excerpts[:maxExcerpts]
	}
	if excerpts == nil {
		excerpts = []string{}
	}
	return Answer{Text: text, Excerpts: excerpts}, nil
}

// Summarize requests a summary of the given length followed by key points.
// Malformed model output degrades to fallbacks rather than an error.
func (g *Gateway) Summarize(ctx context.Context, text string, length Length) (Summary, error) {
	if _, ok := lengthGuides[length]; !ok {
		length = DefaultLength
	}
	raw, err := g.generate(ctx, "summarize", buildSummarizePrompt(text, length))
	if err != nil {
		return Summary{}, err
	}
	summary, points := parseSummary(raw)
	return Summary{Text: summary, KeyPoints: points, Length: length}, nil
}

// ValidateCredential sends a trivial prompt and reports whether the model
// answered with non-empty text. Errors are logged, never returned.
func (g *Gateway) ValidateCredential(ctx context.Context) bool {
	text, err := g.generate(ctx, "validate", validationPrompt)
	if err != nil {
		g.log.Warn("API validation failed", "err", err)
		return false
	}
	return text != ""
}

// SetCredential persists a new credential and drops the cached client so the
// next call is made with it.
func (g *Gateway) SetCredential(ctx context.Context, apiKey string) error {
	if err := g.settings.Set(ctx, store.KeyCredential, apiKey); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	g.handle.Invalidate()
	return nil
}

// ClearCredential removes the stored credential; the environment fallback,
// if any, applies from the next call.
func (g *Gateway) ClearCredential(ctx context.Context) error {
	if err := g.settings.Delete(ctx, store.KeyCredential); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	g.handle.Invalidate()
	return nil
}

func (g *Gateway) generate(ctx context.Context, task, prompt string) (string, error) {
	client, err := g.handle.Client(ctx)
	if err != nil {
		g.log.Error("model client unavailable", "task", task, "err", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	text, err := client.Generate(ctx, prompt)
	if err != nil {
		g.log.Error("generation API error", "task", task, "err", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	g.log.Debug("generation complete", "task", task, "prompt_chars", len(prompt), "response_chars", len(text))
	return text, nil
}

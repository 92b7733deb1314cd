package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"academic-translator/internal/llm"
	"academic-translator/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingFactory hands out the same mock client and records every key it was built with.
type recordingFactory struct {
	client *llm.MockClient
	keys   []string
	err    error
}

func (f *recordingFactory) build(_ context.Context, apiKey string) (llm.Client, error) {
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func newTestGateway(t *testing.T, fallback string) (*Gateway, *recordingFactory, store.Store) {
	t.Helper()
	settings, err := store.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	f := &recordingFactory{client: new(llm.MockClient)}
	log := discardLogger()
	return New(log, NewHandle(log, settings, fallback, f.build), settings), f, settings
}

func TestTranslateReturnsRawText(t *testing.T) {
	g, f, _ := newTestGateway(t, "env-key")
	f.client.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Translate the following English text to French.") &&
			strings.Contains(p, "Citation format preservation") &&
			strings.Contains(p, "\"\"\"\nHello world.\n\"\"\"")
	})).Return("  Bonjour le monde.\n", nil).Once()

	got, err := g.Translate(context.Background(), "Hello world.", "English", "French")
	require.NoError(t, err)
	assert.Equal(t, "  Bonjour le monde.\n", got, "translation is returned verbatim")
	f.client.AssertExpectations(t)
}

func TestTranslateRemoteFailure(t *testing.T) {
	g, f, _ := newTestGateway(t, "env-key")
	f.client.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()

	_, err := g.Translate(context.Background(), "text", "English", "German")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestMissingCredentialIsGenerationFailure(t *testing.T) {
	g, f, _ := newTestGateway(t, "")

	_, err := g.Translate(context.Background(), "text", "English", "German")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Empty(t, f.keys, "no client is built without a credential")
}

func TestFactoryFailureIsGenerationFailure(t *testing.T) {
	g, f, _ := newTestGateway(t, "env-key")
	f.err = errors.New("bad key format")

	_, err := g.Summarize(context.Background(), "text", LengthBrief)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestAnswerQuestion(t *testing.T) {
	doc := "Results were mixed. The model achieves 95% accuracy on the test set. Training took two days."
	g, f, _ := newTestGateway(t, "env-key")
	f.client.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "User Question: What is the accuracy?") &&
			strings.Contains(p, NotFoundAnswer) &&
			strings.Contains(p, doc)
	})).Return("The model reaches 95% accuracy.", nil).Once()

	got, err := g.AnswerQuestion(context.Background(), doc, "What is the accuracy?")
	require.NoError(t, err)
	assert.Equal(t, "The model reaches 95% accuracy.", got.Text)
	assert.Contains(t, got.Excerpts, "The model achieves 95% accuracy on the test set.")
	assert.LessOrEqual(t, len(got.Excerpts), 3)
}

func TestAnswerQuestionCapsExcerptsAtThree(t *testing.T) {
	doc := "One fact. Two fact. Three fact. Four fact. Five fact. Six fact."
	g, f, _ := newTestGateway(t, "env-key")
	f.client.On("Generate", mock.Anything, mock.Anything).Return("answer", nil).Once()

	got, err := g.AnswerQuestion(context.Background(), doc, "fact")
	require.NoError(t, err)
	assert.Equal(t, []string{"One fact.", "Two fact.", "Three fact."}, got.Excerpts)
}

func TestAnswerQuestionNoExcerpts(t *testing.T) {
	g, f, _ := newTestGateway(t, "env-key")
	f.client.On("Generate", mock.Anything, mock.Anything).Return(NotFoundAnswer, nil).Once()

	got, err := g.AnswerQuestion(context.Background(), "Alpha beta.", "omega")
	require.NoError(t, err)
	assert.NotNil(t, got.Excerpts)
	assert.Empty(t, got.Excerpts)
}

func TestAnswerQuestionFailure(t *testing.T) {
	g, f, _ := newTestGateway(t, "env-key")
	f.client.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("network down")).Once()

	_, err := g.AnswerQuestion(context.Background(), "Alpha.", "alpha")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestSummarizePromptUsesLengthGuide(t *testing.T) {
	tests := []struct {
		length Length
		guide  string
	}{
		{LengthBrief, "2-3 paragraphs (150-200 words)"},
		{LengthMedium, "4-6 paragraphs (300-400 words)"},
		{LengthComprehensive, "8-10 paragraphs (500-700 words)"},
		{Length("unknown"), "4-6 paragraphs (300-400 words)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.length), func(t *testing.T) {
			g, f, _ := newTestGateway(t, "env-key")
			f.client.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
				return strings.Contains(p, "1. A "+tt.guide+" summary") &&
					strings.Contains(p, "SUMMARY:\n[Your summary here]") &&
					strings.Contains(p, "exactly 5-8 key points")
			})).Return("SUMMARY:\ns\nKEY POINTS:\n- p", nil).Once()

			_, err := g.Summarize(context.Background(), "doc", tt.length)
			require.NoError(t, err)
			f.client.AssertExpectations(t)
		})
	}
}

func TestSummarizeParsesResponse(t *testing.T) {
	g, f, _ := newTestGateway(t, "env-key")
	raw := "SUMMARY:\nThe paper studies X.\n\nIt finds Y.\n\nKEY POINTS:\n- First point\n-   Second point  \n* not a dash bullet\n- Third point\n"
	f.client.On("Generate", mock.Anything, mock.Anything).Return(raw, nil).Once()

	got, err := g.Summarize(context.Background(), "doc", LengthBrief)
	require.NoError(t, err)
	assert.Equal(t, "The paper studies X.\n\nIt finds Y.", got.Text)
	assert.Equal(t, []string{"First point", "Second point", "Third point"}, got.KeyPoints)
	assert.Equal(t, LengthBrief, got.Length)
}

func TestSummarizeFailure(t *testing.T) {
	g, f, _ := newTestGateway(t, "env-key")
	f.client.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("503")).Once()

	_, err := g.Summarize(context.Background(), "doc", LengthMedium)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestValidateCredential(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want bool
	}{
		{"non-empty response", "ok", nil, true},
		{"empty response", "", nil, false},
		{"remote error is swallowed", "", errors.New("401 unauthorized"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, f, _ := newTestGateway(t, "env-key")
			f.client.On("Generate", mock.Anything, "test").Return(tt.text, tt.err).Once()

			assert.Equal(t, tt.want, g.ValidateCredential(context.Background()))
			f.client.AssertExpectations(t)
		})
	}
}

func TestValidateCredentialWithoutCredential(t *testing.T) {
	g, _, _ := newTestGateway(t, "")
	assert.False(t, g.ValidateCredential(context.Background()))
}

func TestClientIsBuiltOnceAndReused(t *testing.T) {
	g, f, _ := newTestGateway(t, "env-key")
	f.client.On("Generate", mock.Anything, mock.Anything).Return("x", nil).Twice()

	_, err := g.Translate(context.Background(), "a", "English", "French")
	require.NoError(t, err)
	_, err = g.Translate(context.Background(), "b", "English", "French")
	require.NoError(t, err)

	assert.Equal(t, []string{"env-key"}, f.keys)
}

func TestCredentialChangeRebuildsClient(t *testing.T) {
	ctx := context.Background()
	g, f, settings := newTestGateway(t, "env-key")
	require.NoError(t, settings.Set(ctx, store.KeyCredential, "old-key"))
	f.client.On("Generate", mock.Anything, mock.Anything).Return("x", nil)

	_, err := g.Translate(ctx, "a", "English", "French")
	require.NoError(t, err)

	require.NoError(t, g.SetCredential(ctx, "new-key"))
	_, err = g.Translate(ctx, "b", "English", "French")
	require.NoError(t, err)

	require.NoError(t, g.ClearCredential(ctx))
	_, err = g.Translate(ctx, "c", "English", "French")
	require.NoError(t, err)

	assert.Equal(t, []string{"old-key", "new-key", "env-key"}, f.keys)
}

func TestCredentialPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("stored credential wins over fallback", func(t *testing.T) {
		s := new(store.MockStore)
		s.On("Get", mock.Anything, store.KeyCredential).Return("stored-key", true, nil)
		h := NewHandle(discardLogger(), s, "env-key", nil)
		key, source := h.Credential(ctx)
		assert.Equal(t, "stored-key", key)
		assert.Equal(t, SourceStored, source)
	})

	t.Run("fallback when unset", func(t *testing.T) {
		s := new(store.MockStore)
		s.On("Get", mock.Anything, store.KeyCredential).Return("", false, nil)
		h := NewHandle(discardLogger(), s, "env-key", nil)
		key, source := h.Credential(ctx)
		assert.Equal(t, "env-key", key)
		assert.Equal(t, SourceEnvironment, source)
	})

	t.Run("empty stored value is unset", func(t *testing.T) {
		s := new(store.MockStore)
		s.On("Get", mock.Anything, store.KeyCredential).Return("", true, nil)
		h := NewHandle(discardLogger(), s, "", nil)
		key, source := h.Credential(ctx)
		assert.Equal(t, "", key)
		assert.Equal(t, SourceNone, source)
	})

	t.Run("store error falls back", func(t *testing.T) {
		s := new(store.MockStore)
		s.On("Get", mock.Anything, store.KeyCredential).Return("", false, errors.New("redis down"))
		h := NewHandle(discardLogger(), s, "env-key", nil)
		key, source := h.Credential(ctx)
		assert.Equal(t, "env-key", key)
		assert.Equal(t, SourceEnvironment, source)
	})
}

func TestSetCredentialStoreFailureKeepsClient(t *testing.T) {
	ctx := context.Background()
	s := new(store.MockStore)
	s.On("Get", mock.Anything, store.KeyCredential).Return("", false, nil)
	s.On("Set", mock.Anything, store.KeyCredential, "new").Return(errors.New("disk full")).Once()

	f := &recordingFactory{client: new(llm.MockClient)}
	f.client.On("Generate", mock.Anything, mock.Anything).Return("x", nil)
	log := discardLogger()
	g := New(log, NewHandle(log, s, "env-key", f.build), s)

	_, err := g.Translate(ctx, "a", "English", "French")
	require.NoError(t, err)
	assert.Error(t, g.SetCredential(ctx, "new"))
	_, err = g.Translate(ctx, "b", "English", "French")
	require.NoError(t, err)

	assert.Equal(t, []string{"env-key"}, f.keys, "a failed save must not rebuild the client")
}

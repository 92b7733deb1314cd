// Package session holds the state of the three document pages. Each page has
// at most one current document; uploading a new one clears everything derived
// from the previous document.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"academic-translator/internal/extractor"
	"academic-translator/internal/gateway"
)

// Kind names a page context.
type Kind string

const (
	KindTranslate Kind = "translate"
	KindQA        Kind = "qa"
	KindSummarize Kind = "summarize"
)

var (
	ErrBusy             = errors.New("a request is already in progress for this page")
	ErrNoDocument       = errors.New("please upload a document first")
	ErrUnknownPage      = errors.New("unknown page")
	ErrExchangeNotFound = errors.New("exchange not found")
)

// ParseKind validates a page name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindTranslate, KindQA, KindSummarize:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
}

// QAExchange is one question and, once the model responds, its answer.
type QAExchange struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Excerpts  []string  `json:"excerpts"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryResult is the current summary of a document.
type SummaryResult struct {
	ID         uuid.UUID      `json:"id"`
	SourceText string         `json:"-"`
	Summary    string         `json:"summary"`
	Length     gateway.Length `json:"length"`
	KeyPoints  []string       `json:"key_points"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TranslationResult is the current translation.
type TranslationResult struct {
	SourceText     string `json:"-"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	TranslatedText string `json:"translated_text"`
}

type page struct {
	document    *extractor.Document
	busy        bool
	history     []QAExchange
	summary     *SummaryResult
	translation *TranslationResult
}

func (p *page) clearResults() {
	p.history = nil
	p.summary = nil
	p.translation = nil
}

// Workspace is the single-user state of all pages. It is safe for concurrent use.
type Workspace struct {
	mu    sync.Mutex
	pages map[Kind]*page
	now   func() time.Time
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		pages: map[Kind]*page{
			KindTranslate: {},
			KindQA:        {},
			KindSummarize: {},
		},
		now: time.Now,
	}
}

func (w *Workspace) page(kind Kind) (*page, error) {
	p, ok := w.pages[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, kind)
	}
	return p, nil
}

// Upload makes doc the current document of the page, clearing the previous
// document's results first.
func (w *Workspace) Upload(kind Kind, doc extractor.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.page(kind)
	if err != nil {
		return err
	}
	p.clearResults()
	p.document = &doc
	return nil
}

// Document returns the current document of the page.
func (w *Workspace) Document(kind Kind) (extractor.Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.page(kind)
	if err != nil || p.document == nil {
		return extractor.Document{}, false
	}
	return *p.document, true
}

// Begin marks the page busy. The returned release must be called when the
// request completes. A page already busy yields ErrBusy.
func (w *Workspace) Begin(kind Kind) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.page(kind)
	if err != nil {
		return nil, err
	}
	if p.busy {
		return nil, ErrBusy
	}
	p.busy = true
	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			p.busy = false
			w.mu.Unlock()
		})
	}, nil
}

// AddExchange appends an unanswered exchange to the Q&A history.
func (w *Workspace) AddExchange(question string) QAExchange {
	w.mu.Lock()
	defer w.mu.Unlock()
	ex := QAExchange{
		ID:        uuid.New(),
		Question:  question,
		Excerpts:  []string{},
		CreatedAt: w.now(),
	}
	p := w.pages[KindQA]
	p.history = append(p.history, ex)
	return ex
}

// CompleteExchange fills in the answer of a pending exchange. It fails if the
// exchange is gone, for instance because a new document cleared the history.
func (w *Workspace) CompleteExchange(id uuid.UUID, answer string, excerpts []string) (QAExchange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.pages[KindQA]
	for i := range p.history {
		if p.history[i].ID == id {
			p.history[i].Answer = answer
			p.history[i].Excerpts = append([]string{}, excerpts...)
			return p.history[i], nil
		}
	}
	return QAExchange{}, ErrExchangeNotFound
}

// RemoveExchange drops an exchange from the history, keeping the order of the rest.
func (w *Workspace) RemoveExchange(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.pages[KindQA]
	for i := range p.history {
		if p.history[i].ID == id {
			p.history = append(p.history[:i], p.history[i+1:]...)
			return
		}
	}
}

// History returns a copy of the Q&A history in submission order.
func (w *Workspace) History() []QAExchange {
	w.mu.Lock()
	defer w.mu.Unlock()
	src := w.pages[KindQA].history
	out := make([]QAExchange, len(src))
	for i, ex := range src {
		ex.Excerpts = append([]string{}, ex.Excerpts...)
		out[i] = ex
	}
	return out
}

// SetSummary replaces the current summary.
func (w *Workspace) SetSummary(sourceText string, s gateway.Summary) SummaryResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	res := SummaryResult{
		ID:         uuid.New(),
		SourceText: sourceText,
		Summary:    s.Text,
		Length:     s.Length,
		KeyPoints:  append([]string{}, s.KeyPoints...),
		CreatedAt:  w.now(),
	}
	w.pages[KindSummarize].summary = &res
	return res
}

// Summary returns the current summary.
func (w *Workspace) Summary() (SummaryResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.pages[KindSummarize].summary
	if s == nil {
		return SummaryResult{}, false
	}
	return *s, true
}

// SetTranslation replaces the current translation.
func (w *Workspace) SetTranslation(t TranslationResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pages[KindTranslate].translation = &t
}

// Translation returns the current translation.
func (w *Workspace) Translation() (TranslationResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.pages[KindTranslate].translation
	if t == nil {
		return TranslationResult{}, false
	}
	return *t, true
}

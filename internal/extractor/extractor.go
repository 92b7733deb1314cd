// Package extractor turns an uploaded PDF into plain text, a page count and
// producer metadata. Unusable input is rejected up front by Validate; Extract
// tolerates individual pages that cannot be read.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFileSize is the largest accepted upload (50 MiB).
const MaxFileSize int64 = 50 << 20

var (
	ErrInvalidFormat    = errors.New("file must be a PDF (.pdf extension)")
	ErrTooLarge         = errors.New("file size must be less than 50MB")
	ErrCorruptDocument  = errors.New("invalid PDF file")
	ErrExtractionFailed = errors.New("failed to extract PDF")
)

// File is a single uploaded file.
type File struct {
	Name string
	Data []byte
}

// Size is the raw byte length of the file.
func (f File) Size() int64 { return int64(len(f.Data)) }

// Document is the result of a successful extraction. It is not modified after
// Extract returns.
type Document struct {
	ID         uuid.UUID         `json:"id"`
	Filename   string            `json:"filename"`
	Size       int64             `json:"size"`
	Text       string            `json:"text"`
	PageCount  int               `json:"page_count"`
	Metadata   map[string]string `json:"metadata"`
	UploadedAt time.Time         `json:"uploaded_at"`
}

// PDF is the subset of a parsed PDF the extractor needs. Pages are 1-based.
type PDF interface {
	NumPage() (int, error)
	PageText(page int) (string, error)
	Metadata() (map[string]string, error)
}

// Opener parses raw bytes into a PDF.
type Opener func(data []byte) (PDF, error)

// Extractor validates and extracts uploaded PDFs.
type Extractor struct {
	log  *slog.Logger
	open Opener
	now  func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithOpener replaces the PDF engine.
func WithOpener(open Opener) Option {
	return func(e *Extractor) { e.open = open }
}

// New builds an Extractor backed by github.com/ledongthuc/pdf unless overridden.
func New(log *slog.Logger, opts ...Option) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	e := &Extractor{log: log, open: OpenPDF, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks the extension, the size and that the bytes parse into a
// document with at least one page. The parsed document is discarded.
func (e *Extractor) Validate(f File) error {
	if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
		return ErrInvalidFormat
	}
	if f.Size() > MaxFileSize {
		return ErrTooLarge
	}
	doc, err := e.open(f.Data)
	if err != nil {
		e.log.Warn("pdf validation failed", "filename", f.Name, "err", err)
		return fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	pages, err := doc.NumPage()
	if err != nil {
		e.log.Warn("pdf validation failed", "filename", f.Name, "err", err)
		return fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	if pages == 0 {
		return fmt.Errorf("%w: PDF has no pages", ErrCorruptDocument)
	}
	return nil
}

// Extract parses the file and concatenates the text of every readable page in
// page order, each followed by a blank line. Pages that fail are logged and
// skipped; PageCount still reports the document's total.
func (e *Extractor) Extract(f File) (Document, error) {
	log := e.log.With("filename", f.Name)

	doc, err := e.open(f.Data)
	if err != nil {
		log.Error("pdf extraction failed", "err", err)
		return Document{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	pages, err := doc.NumPage()
	if err != nil {
		log.Error("pdf extraction failed", "err", err)
		return Document{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var text strings.Builder
	read := 0
	for i := 1; i <= pages; i++ {
		pageText, err := doc.PageText(i)
		if err != nil {
			log.Warn("error extracting page", "page", i, "err", err)
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n\n")
		read++
	}

	meta, err := doc.Metadata()
	if err != nil || meta == nil {
		if err != nil {
			log.Debug("pdf metadata unavailable", "err", err)
		}
		meta = map[string]string{}
	}

	log.Info("pdf extracted", "pages", pages, "pages_read", read, "chars", text.Len())
	return Document{
		ID:         uuid.New(),
		Filename:   f.Name,
		Size:       f.Size(),
		Text:       strings.TrimSpace(text.String()),
		PageCount:  pages,
		Metadata:   meta,
		UploadedAt: e.now(),
	}, nil
}

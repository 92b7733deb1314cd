package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"academic-translator/internal/access"
	"academic-translator/internal/app"
	"academic-translator/internal/export"
	"academic-translator/internal/extractor"
	"academic-translator/internal/gateway"
	"academic-translator/internal/httputil"
	"academic-translator/internal/session"
)

const (
	translationTitle = "Translated Document"
	summaryTitle     = "summary"
)

type unlockRequest struct {
	Code string `json:"code" validate:"required"`
}

type credentialRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

type translateRequest struct {
	SourceLanguage string `json:"source_language" validate:"required,oneof=English Vietnamese French Spanish German Chinese Japanese"`
	TargetLanguage string `json:"target_language" validate:"required,oneof=English Vietnamese French Spanish German Chinese Japanese"`
	Text           string `json:"text,omitempty"`
}

type questionRequest struct {
	Question string `json:"question" validate:"required"`
}

type summarizeRequest struct {
	Length string `json:"length"`
}

func accessStatusHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		granted, err := deps.Access.Granted(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to check access", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{
			"granted": granted,
			"enabled": deps.Access.Enabled(),
		})
	}
}

func unlockHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req unlockRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if err := deps.Access.Unlock(r.Context(), req.Code); err != nil {
			if errors.Is(err, access.ErrInvalidCode) {
				httputil.Fail(deps.Log, w, err.Error(), nil, http.StatusUnauthorized)
				return
			}
			httputil.Fail(deps.Log, w, "failed to record access", err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func lockHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Access.Lock(r.Context()); err != nil {
			httputil.Fail(deps.Log, w, "failed to clear access", err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func languagesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string][]string{"languages": gateway.Languages})
	}
}

func credentialStatusHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, source := deps.Gateway.Handle().Credential(r.Context())
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"configured": source != gateway.SourceNone,
			"source":     source,
		})
	}
}

func setCredentialHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		key := strings.TrimSpace(req.APIKey)
		if key == "" {
			httputil.Fail(deps.Log, w, "api_key is required", nil, http.StatusBadRequest)
			return
		}
		if err := deps.Gateway.SetCredential(r.Context(), key); err != nil {
			httputil.Fail(deps.Log, w, "failed to save API key", err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearCredentialHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Gateway.ClearCredential(r.Context()); err != nil {
			httputil.Fail(deps.Log, w, "failed to clear API key", err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func validateCredentialHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{
			"valid": deps.Gateway.ValidateCredential(r.Context()),
		})
	}
}

func pageKind(deps app.Deps, w http.ResponseWriter, r *http.Request) (session.Kind, bool) {
	kind, err := session.ParseKind(chi.URLParam(r, "page"))
	if err != nil {
		httputil.Fail(deps.Log, w, err.Error(), nil, http.StatusNotFound)
		return "", false
	}
	return kind, true
}

// begin claims the page for one request, answering 409 when it is busy.
func begin(deps app.Deps, w http.ResponseWriter, kind session.Kind) (func(), bool) {
	release, err := deps.Workspace.Begin(kind)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrBusy) {
			status = http.StatusConflict
		}
		httputil.Fail(deps.Log, w, err.Error(), err, status)
		return nil, false
	}
	return release, true
}

// documentText returns the text of the page's current document, answering 400
// when there is no document or its text is blank.
func documentText(deps app.Deps, w http.ResponseWriter, kind session.Kind) (string, bool) {
	doc, ok := deps.Workspace.Document(kind)
	if !ok || strings.TrimSpace(doc.Text) == "" {
		httputil.Fail(deps.Log, w, session.ErrNoDocument.Error(), nil, http.StatusBadRequest)
		return "", false
	}
	return doc.Text, true
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxUploadSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := pageKind(deps, w, r)
		if !ok {
			return
		}
		if r.ContentLength > maxUploadSize {
			httputil.Fail(deps.Log, w, extractor.ErrTooLarge.Error(), nil, http.StatusBadRequest)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httputil.Fail(deps.Log, w, extractor.ErrTooLarge.Error(), err, http.StatusBadRequest)
				return
			}
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		release, ok := begin(deps, w, kind)
		if !ok {
			return
		}
		defer release()

		f := extractor.File{Name: header.Filename, Data: data}
		if err := deps.Extractor.Validate(f); err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
			return
		}
		doc, err := deps.Extractor.Extract(f)
		if err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusUnprocessableEntity)
			return
		}
		if err := deps.Workspace.Upload(kind, doc); err != nil {
			httputil.Fail(deps.Log, w, "failed to store document", err, http.StatusInternalServerError)
			return
		}
		deps.Log.Info("document uploaded", "page", kind, "document_id", doc.ID, "pages", doc.PageCount)
		httputil.WriteJSON(w, http.StatusCreated, doc)
	}
}

func documentHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := pageKind(deps, w, r)
		if !ok {
			return
		}
		doc, ok := deps.Workspace.Document(kind)
		if !ok {
			httputil.Fail(deps.Log, w, session.ErrNoDocument.Error(), nil, http.StatusNotFound)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, doc)
	}
}

func translateHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		release, ok := begin(deps, w, session.KindTranslate)
		if !ok {
			return
		}
		defer release()

		text := req.Text
		if strings.TrimSpace(text) == "" {
			docText, ok := documentText(deps, w, session.KindTranslate)
			if !ok {
				return
			}
			text = docText
		}

		translated, err := deps.Gateway.Translate(r.Context(), text, req.SourceLanguage, req.TargetLanguage)
		if err != nil {
			httputil.Fail(deps.Log, w, "Failed to translate text. Please check your API key.", err, http.StatusBadGateway)
			return
		}
		res := session.TranslationResult{
			SourceText:     text,
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
			TranslatedText: translated,
		}
		deps.Workspace.SetTranslation(res)
		httputil.WriteJSON(w, http.StatusOK, res)
	}
}

func translationHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := deps.Workspace.Translation()
		if !ok {
			httputil.Fail(deps.Log, w, "no translation yet", nil, http.StatusNotFound)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, res)
	}
}

func translateExportHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := deps.Workspace.Translation()
		if !ok {
			httputil.Fail(deps.Log, w, "no translation to export", nil, http.StatusNotFound)
			return
		}
		writeExport(deps, w, r, translationTitle, res.TranslatedText, res.TranslatedText)
	}
}

func questionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			httputil.Fail(deps.Log, w, "question is required", nil, http.StatusBadRequest)
			return
		}
		release, ok := begin(deps, w, session.KindQA)
		if !ok {
			return
		}
		defer release()

		docText, ok := documentText(deps, w, session.KindQA)
		if !ok {
			return
		}

		// Passed as typed; excerpt tokens come from the raw question.
		ex := deps.Workspace.AddExchange(req.Question)
		answer, err := deps.Gateway.AnswerQuestion(r.Context(), docText, req.Question)
		if err != nil {
			deps.Workspace.RemoveExchange(ex.ID)
			httputil.Fail(deps.Log, w, "Failed to get answer. Please check your API key.", err, http.StatusBadGateway)
			return
		}
		ex, err = deps.Workspace.CompleteExchange(ex.ID, answer.Text, answer.Excerpts)
		if err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusConflict)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, ex)
	}
}

func historyHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string][]session.QAExchange{
			"exchanges": deps.Workspace.History(),
		})
	}
}

func summarizeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		length, err := gateway.ParseLength(req.Length)
		if err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
			return
		}
		release, ok := begin(deps, w, session.KindSummarize)
		if !ok {
			return
		}
		defer release()

		docText, ok := documentText(deps, w, session.KindSummarize)
		if !ok {
			return
		}
		sum, err := deps.Gateway.Summarize(r.Context(), docText, length)
		if err != nil {
			httputil.Fail(deps.Log, w, "Failed to generate summary. Please check your API key.", err, http.StatusBadGateway)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, deps.Workspace.SetSummary(docText, sum))
	}
}

func summaryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := deps.Workspace.Summary()
		if !ok {
			httputil.Fail(deps.Log, w, "no summary yet", nil, http.StatusNotFound)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, res)
	}
}

func summaryExportHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := deps.Workspace.Summary()
		if !ok {
			httputil.Fail(deps.Log, w, "no summary to export", nil, http.StatusNotFound)
			return
		}
		length := string(res.Length)
		writeExport(deps, w, r, summaryTitle,
			export.SummaryText(length, res.Summary, res.KeyPoints),
			export.SummaryWordText(length, res.Summary, res.KeyPoints))
	}
}

// writeExport renders the download selected by the format query parameter
// (txt by default, or docx).
func writeExport(deps app.Deps, w http.ResponseWriter, r *http.Request, title, plain, word string) {
	var (
		buf         bytes.Buffer
		ext         string
		contentType string
		err         error
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "txt":
		ext, contentType = "txt", export.ContentTypeText
		err = export.PlainText(&buf, plain)
	case "docx":
		ext, contentType = "docx", export.ContentTypeDocx
		err = export.Word(&buf, word)
	default:
		httputil.Fail(deps.Log, w, fmt.Sprintf("unsupported format %q (valid options: txt, docx)", format), nil, http.StatusBadRequest)
		return
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to build export", err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(title, ext)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		deps.Log.Warn("failed to write export", "err", err)
	}
}

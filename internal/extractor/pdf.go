package extractor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// The PDF library reports some malformed input by panicking, so every entry
// point converts a panic into an error.

type ledongthucPDF struct {
	r *pdf.Reader
}

// OpenPDF parses data with github.com/ledongthuc/pdf.
func OpenPDF(data []byte) (doc PDF, err error) {
	defer recoverInto(&err)
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &ledongthucPDF{r: r}, nil
}

func (p *ledongthucPDF) NumPage() (n int, err error) {
	defer recoverInto(&err)
	return p.r.NumPage(), nil
}

// PageText joins the page's text fragments with single spaces, top row first.
func (p *ledongthucPDF) PageText(i int) (text string, err error) {
	defer recoverInto(&err)
	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not found", i)
	}
	if page.V.Key("Contents").Kind() == pdf.Null {
		return "", nil
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	var fragments []string
	for _, row := range rows {
		for _, t := range row.Content {
			// The first row of a page starts with an empty fragment.
			if t.S == "" {
				continue
			}
			fragments = append(fragments, t.S)
		}
	}
	return strings.Join(fragments, " "), nil
}

// Metadata flattens the trailer's Info dictionary into strings.
func (p *ledongthucPDF) Metadata() (meta map[string]string, err error) {
	defer recoverInto(&err)
	meta = map[string]string{}
	info := p.r.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return meta, nil
	}
	for _, key := range info.Keys() {
		v := info.Key(key)
		switch v.Kind() {
		case pdf.String:
			meta[key] = v.Text()
		case pdf.Name:
			meta[key] = v.Name()
		case pdf.Integer:
			meta[key] = strconv.FormatInt(v.Int64(), 10)
		case pdf.Real:
			meta[key] = strconv.FormatFloat(v.Float64(), 'f', -1, 64)
		case pdf.Bool:
			meta[key] = strconv.FormatBool(v.Bool())
		}
	}
	return meta, nil
}

func recoverInto(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("pdf parser panic: %v", rec)
	}
}

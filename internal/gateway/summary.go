package gateway

import (
	"fmt"
	"strings"
)

// Length is the requested summary size.
type Length string

const (
	LengthBrief         Length = "brief"
	LengthMedium        Length = "medium"
	LengthComprehensive Length = "comprehensive"
)

// DefaultLength is used when no length is requested.
const DefaultLength = LengthMedium

// FallbackKeyPoint is returned when the response carries no bullet points.
const FallbackKeyPoint = "Summary provided above"

const (
	summaryMarker   = "SUMMARY:"
	keyPointsMarker = "KEY POINTS:"
)

var lengthGuides = map[Length]string{
	LengthBrief:         "2-3 paragraphs (150-200 words)",
	LengthMedium:        "4-6 paragraphs (300-400 words)",
	LengthComprehensive: "8-10 paragraphs (500-700 words)",
}

// Guide is the paragraph and word target put into the prompt.
func (l Length) Guide() string {
	if g, ok := lengthGuides[l]; ok {
		return g
	}
	return lengthGuides[DefaultLength]
}

// ParseLength maps a request value to a Length. Empty means DefaultLength.
func ParseLength(s string) (Length, error) {
	if s == "" {
		return DefaultLength, nil
	}
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := lengthGuides[l]; !ok {
		return "", fmt.Errorf("invalid summary length %q (valid: brief, medium, comprehensive)", s)
	}
	return l, nil
}

// parseSummary splits a SUMMARY:/KEY POINTS: response. It never fails: a
// missing or empty summary section falls back to the whole response and a
// missing list falls back to FallbackKeyPoint.
func parseSummary(raw string) (string, []string) {
	summary := raw
	if i := strings.Index(raw, summaryMarker); i >= 0 {
		rest := raw[i+len(summaryMarker):]
		if j := strings.Index(rest, keyPointsMarker); j >= 0 {
			rest = rest[:j]
		}
		summary = strings.TrimSpace(rest)
	}
	if summary == "" {
		summary = raw
	}

	var points []string
	if i := strings.Index(raw, keyPointsMarker); i >= 0 {
		for _, line := range strings.Split(raw[i+len(keyPointsMarker):], "\n") {
			if !strings.HasPrefix(strings.TrimSpace(line), "-") {
				continue
			}
			// Only a dash in the first column is a bullet marker; an
			// indented line keeps its dash.
			point := strings.TrimSpace(strings.TrimPrefix(line, "-"))
			if point != "" {
				points = append(points, point)
			}
		}
	}
	if len(points) == 0 {
		points = []string{FallbackKeyPoint}
	}
	return summary, points
}

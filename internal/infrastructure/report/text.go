package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
)

const textTitle = "ENTERPRISE RISK INTELLIGENCE — DEMO REPORT"

var counts = message.NewPrinter(language.English)

// Text renders a dataset analysis as the plain-text demo report.
func (r *Renderer) Text(a model.DatasetAnalysis) (string, error) {
	meta, err := indentJSON(a.Meta)
	if err != nil {
		return "", fmt.Errorf("render meta: %w", err)
	}

	lines := []string{
		textTitle,
		strings.Repeat("=", 44),
		"Generated: " + r.generatedAt(),
		counts.Sprintf("Rows analysed: %d", a.Meta.Shape[0]),
		"",
		fmt.Sprintf("Risk score: %s/100", service.FormatScore(a.RiskScore)),
		fmt.Sprintf("Anomaly rate (est.): %.1f%%", a.AnomalyRate*100),
		"",
		"KRIs",
		"- error_rate: " + service.FormatScore(a.KRIs.ErrorRate),
		"- volume_spike_ratio: " + service.FormatScore(a.KRIs.VolumeSpikeRatio),
		"- missingness: " + service.FormatScore(a.KRIs.Missingness),
		"- numeric_outlier_intensity: " + service.FormatScore(a.KRIs.NumericOutlierIntensity),
		"",
		"Narrative",
		a.Narrative,
		"",
		"Meta",
		meta,
	}
	return strings.Join(lines, "\n"), nil
}

// indentJSON encodes v with two-space indentation, leaving HTML characters
// alone and escaping everything outside ASCII as \uXXXX.
func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return asciiOnly(strings.TrimSuffix(buf.String(), "\n")), nil
}

func asciiOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		switch {
		case c < 0x80:
			b.WriteRune(c)
		case c > 0xFFFF:
			hi, lo := utf16.EncodeRune(c)
			fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&b, `\u%04x`, c)
		}
	}
	return b.String()
}

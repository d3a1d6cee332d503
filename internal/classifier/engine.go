package classifier

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label is a classification verdict.
type Label string

const (
	LabelHoax    Label = "hoax"
	LabelNonHoax Label = "non-hoax"
)

// ParseLabel validates a label string.
func ParseLabel(value string) (Label, bool) {
	switch Label(strings.ToLower(strings.TrimSpace(value))) {
	case LabelHoax:
		return LabelHoax, true
	case LabelNonHoax:
		return LabelNonHoax, true
	default:
		return "", false
	}
}

// Prediction is the outcome of scoring a text.
type Prediction struct {
	Label      Label
	Confidence float64
}

// Scores holds the per-factor sub-scores, each in [0,1].
type Scores struct {
	Keyword     float64
	Pattern     float64
	Source      float64
	Caps        float64
	Punctuation float64
}

// Factor weights for the combined hoax probability.
const (
	weightKeyword     = 0.3
	weightPattern     = 0.25
	weightSource      = 0.25
	weightCaps        = 0.1
	weightPunctuation = 0.1
)

// hoaxThreshold is exclusive: a probability of exactly 0.4 is non-hoax.
const hoaxThreshold = 0.4

// maxConfidence caps rule-based confidence below certainty.
const maxConfidence = 0.95

// Phrases that recur in Indonesian hoax articles: sensational framing,
// clickbait, absolute claims, provocation, and vague attribution.
var hoaxKeywords = []string{
	"wajib share", "wajib tahu", "viral", "breaking news",
	"segera sebarkan", "harus dibaca", "jangan sampai",

	"mengejutkan", "mencengangkan", "tidak akan percaya",
	"ternyata", "rahasia", "fakta mengejutkan",

	"100% terbukti", "dijamin", "pasti sembuh", "ampuh",
	"terbukti ilmiah", "tanpa efek samping",

	"bahaya", "awas", "hati-hati", "jangan",
	"menyesatkan", "konspirasi",

	"kata dokter", "menurut penelitian", "ahli mengatakan",
	"berdasarkan info", "kabar terbaru",
}

var trustedSources = []string{
	"kompas.com", "tempo.co", "detik.com", "antaranews.com",
	"cnn.com", "bbc.com", "liputan6.com", "tribunnews.com",
	"republika.co.id", "mediaindonesia.com", "suara.com",
	"cnnindonesia.com", "viva.co.id", "merdeka.com",
}

var hoaxPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(WAJIB|HARUS|SEGERA)\s+(SHARE|TAHU|BACA|SEBARKAN)\b`),
	regexp.MustCompile(`(?i)\b\d+%\s+(terbukti|ampuh|efektif)\b`),
	regexp.MustCompile(`(?i)\b(rahasia|fakta)\s+(tersembunyi|mengejutkan|mencengangkan)\b`),
	regexp.MustCompile(`(?i)\b(tanpa|bebas)\s+efek\s+samping\b`),
	regexp.MustCompile(`!!!+`),
	regexp.MustCompile(`(?i)\bDIBANNED\b|\bDICENSOR\b|\bDISEMBUNYIKAN\b`),
}

// Engine scores text with the rule-based heuristics. The zero value is ready
// to use; all methods are safe for concurrent callers and never fail.
type Engine struct{}

// NewEngine returns a rule-based scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze computes the per-factor sub-scores for a text and optional source.
func (e *Engine) Analyze(text, source string) Scores {
	lower := cases.Lower(language.Indonesian).String(text)

	var s Scores

	keywordMatches := 0
	for _, keyword := range hoaxKeywords {
		if strings.Contains(lower, keyword) {
			keywordMatches++
		}
	}
	s.Keyword = min(float64(keywordMatches)*0.1, 1.0)

	patternMatches := 0
	for _, pattern := range hoaxPatterns {
		if pattern.MatchString(text) {
			patternMatches++
		}
	}
	s.Pattern = min(float64(patternMatches)*0.15, 1.0)

	if source != "" {
		sourceLower := strings.ToLower(source)
		trusted := false
		for _, domain := range trustedSources {
			if strings.Contains(sourceLower, domain) {
				trusted = true
				break
			}
		}
		if !trusted {
			s.Source = 0.3
		}
	}

	if len(text) > 0 {
		upper := 0
		runes := []rune(text)
		for _, r := range runes {
			if unicode.IsUpper(r) {
				upper++
			}
		}
		ratio := float64(upper) / float64(len(runes))
		if ratio > 0.3 {
			s.Caps = min(ratio, 1.0)
		}
	}

	if exclamations := strings.Count(text, "!"); exclamations > 3 {
		s.Punctuation = min(float64(exclamations)*0.1, 1.0)
	}

	return s
}

// Probability combines the sub-scores into a weighted hoax probability in [0,1].
func (s Scores) Probability() float64 {
	return weightKeyword*s.Keyword +
		weightPattern*s.Pattern +
		weightSource*s.Source +
		weightCaps*s.Caps +
		weightPunctuation*s.Punctuation
}

// Score classifies a text. Identical inputs always produce identical output,
// and any input, including empty text, yields a usable prediction.
func (e *Engine) Score(text, source string) Prediction {
	p := e.Analyze(text, source).Probability()

	if p > hoaxThreshold {
		return Prediction{Label: LabelHoax, Confidence: min(p, maxConfidence)}
	}
	return Prediction{Label: LabelNonHoax, Confidence: min(1.0-p, maxConfidence)}
}

// Explanation breaks a verdict down by factor for display.
type Explanation struct {
	Prediction Prediction
	Scores     Scores
	HighRisk   []string
	MediumRisk []string
	LowRisk    []string
}

// Explain returns the verdict together with factor risk buckets.
func (e *Engine) Explain(text, source string) Explanation {
	scores := e.Analyze(text, source)
	ex := Explanation{
		Prediction: e.Score(text, source),
		Scores:     scores,
	}
	for _, factor := range []struct {
		name  string
		value float64
	}{
		{"keyword", scores.Keyword},
		{"pattern", scores.Pattern},
		{"source", scores.Source},
		{"capitalization", scores.Caps},
		{"punctuation", scores.Punctuation},
	} {
		switch {
		case factor.value > 0.5:
			ex.HighRisk = append(ex.HighRisk, factor.name)
		case factor.value > 0.2:
			ex.MediumRisk = append(ex.MediumRisk, factor.name)
		default:
			ex.LowRisk = append(ex.LowRisk, factor.name)
		}
	}
	return ex
}

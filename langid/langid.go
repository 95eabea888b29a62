// Package langid identifies the language of recognized text. It is used to
// annotate recognition output; the detector never influences which model the
// coordinator recognizes with.
package langid

import (
	"github.com/pemistahl/lingua-go"
	_ "github.com/pemistahl/lingua-go/language-models/de"
	_ "github.com/pemistahl/lingua-go/language-models/en"
	_ "github.com/pemistahl/lingua-go/language-models/es"
	_ "github.com/pemistahl/lingua-go/language-models/fr"
	_ "github.com/pemistahl/lingua-go/language-models/zh"
)

// Detector identifies the language of short text snippets.
type Detector struct {
	detector lingua.LanguageDetector
}

// New creates a detector over the languages the model catalog covers.
func New() *Detector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.German,
			lingua.French,
			lingua.Spanish,
			lingua.Chinese,
		).
		WithPreloadedLanguageModels().
		Build()
	return &Detector{detector: d}
}

// Detect returns the ISO 639-1 code of the detected language and whether
// detection was confident enough to report.
func (d *Detector) Detect(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer implements port.TextRecognizer on top of a local Tesseract
// installation. Each call gets its own client; gosseract clients are not
// safe for concurrent use.
type Recognizer struct {
	languages []string
}

// NewRecognizer creates a Recognizer. languages is a plus-separated list
// as Tesseract expects it ("eng", "eng+swa"); empty means English.
func NewRecognizer(languages string) *Recognizer {
	var langs []string
	for _, l := range strings.Split(languages, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return &Recognizer{languages: langs}
}

func (r *Recognizer) RecognizeText(ctx context.Context, imageBytes []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if len(r.languages) > 0 {
		if err := client.SetLanguage(r.languages...); err != nil {
			return "", fmt.Errorf("tesseract.RecognizeText: setting languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(imageBytes); err != nil {
		return "", fmt.Errorf("tesseract.RecognizeText: setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract.RecognizeText: %w", err)
	}
	return strings.TrimSpace(text), nil
}

package port

import "context"

// TextRecognizer abstracts local OCR, used to supplement the raw extracted
// text when the vision model returns none.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, imageBytes []byte) (string, error)
}

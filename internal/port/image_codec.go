package port

import "image"

// ImageCodec abstracts raster decode/encode/resize so the pipeline stays
// independent of the rendering backend.
type ImageCodec interface {
	// Decode turns an encoded payload into pixels. The returned format is
	// the registered image format name ("jpeg", "png").
	Decode(data []byte) (image.Image, string, error)
	// Encode serializes pixels at the given quality (1..100, JPEG only;
	// ignored for PNG).
	Encode(img image.Image, format string, quality int) ([]byte, error)
	// Resize scales to exactly w x h without preserving aspect ratio;
	// callers compute aspect-preserving targets themselves.
	Resize(img image.Image, w, h int) image.Image
}

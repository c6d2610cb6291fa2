package convert

import (
	"bytes"
	"image/png"

	"github.com/fadilmartias/resumind/internal/apperror"
	"github.com/gen2brain/go-fitz"
)

// FirstPagePNG rasterizes the first page of a PDF into a PNG payload
// ready for upload. It has no side effects; callers own persistence.
func FirstPagePNG(document []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConversion, "failed to open document", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, apperror.New(apperror.KindConversion, "document has no pages")
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConversion, "failed to render first page", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperror.Wrap(apperror.KindConversion, "failed to encode PNG", err)
	}
	return buf.Bytes(), nil
}

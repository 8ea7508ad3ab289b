// Package imageuri encodes uploaded images as self-contained data URIs so a
// payment screenshot can be stored inline on the booking document.
package imageuri

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Encoder turns raw image bytes into a URI string that browsers can render.
type Encoder interface {
	Encode(ctx context.Context, data []byte, mimeType string) (string, error)
}

type DataURIEncoder struct{}

func NewDataURIEncoder() *DataURIEncoder {
	return &DataURIEncoder{}
}

func (DataURIEncoder) Encode(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("not an image mime type: %q", mimeType)
	}

	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

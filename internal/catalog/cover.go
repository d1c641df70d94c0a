package catalog

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bookmeta/douban/metadata"
	"github.com/disintegration/imaging"
)

// FetchImage downloads cover bytes from a resolved cover URL.
func (c *Client) FetchImage(ctx context.Context, coverURL string) ([]byte, error) {
	body, err := c.get(ctx, coverURL)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, metadata.ErrNoCover
	}
	return body, nil
}

// ShrinkImage re-encodes a cover as JPEG no wider than maxWidth. A
// non-positive maxWidth or an image already narrow enough returns the
// original bytes untouched.
func ShrinkImage(data []byte, maxWidth int) ([]byte, error) {
	if maxWidth <= 0 {
		return data, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	if img.Bounds().Dx() <= maxWidth {
		return data, nil
	}
	img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

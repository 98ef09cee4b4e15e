package interfaces

import (
	"context"
	"image"
)

// IImageFetcher retrieves and decodes an image from a URL.
type IImageFetcher interface {
	FetchImage(ctx context.Context, url string) (image.Image, string, error)
}

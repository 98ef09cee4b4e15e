package network

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"market-dashboard/src/interfaces"
)

// ImageFetcher downloads and decodes images through the network manager.
type ImageFetcher struct {
	Network interfaces.INetworkManager
}

func NewImageFetcher(nm interfaces.INetworkManager) *ImageFetcher {
	return &ImageFetcher{Network: nm}
}

// FetchImage returns the decoded image and its format name.
func (f *ImageFetcher) FetchImage(ctx context.Context, url string) (image.Image, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("empty image url")
	}
	data, err := f.Network.Get(ctx, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("image fetch: %w", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("image decode: %w", err)
	}
	return img, format, nil
}

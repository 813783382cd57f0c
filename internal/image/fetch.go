package imagepkg

import (
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// FetchImage loads and decodes an image from an http(s) URL or a local
// file path.
func FetchImage(location string) (image.Image, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return downloadImage(location)
	}
	img, err := imaging.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", location, err)
	}
	return img, nil
}

// downloadImage downloads an image from URL and returns it decoded.
func downloadImage(url string) (image.Image, error) {
	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, errors.New("non-200 response")
	}
	img, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", url, err)
	}
	return img, nil
}

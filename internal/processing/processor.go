// Package processing derives the web-size rendition and thumbnail of an
// uploaded image. Pixel work is delegated entirely to libvips via bimg.
package processing

import (
	"fmt"
	"net/http"

	"github.com/h2non/bimg"
)

const (
	// maxWebWidth caps the stored original; larger uploads are downscaled.
	maxWebWidth = 1920
	thumbWidth  = 300

	webQuality   = 85
	thumbQuality = 80
)

// Result holds the processed renditions of one upload. Size is the byte size
// of the web rendition actually stored.
type Result struct {
	Web       []byte
	WebType   string
	Thumbnail []byte
	ThumbType string
	Size      int64
}

// ImageProcessor is what the upload handler depends on; tests substitute a
// stub so they don't need libvips.
type ImageProcessor interface {
	Process(buf []byte) (*Result, error)
}

type Processor struct{}

func NewProcessor() Processor { return Processor{} }

func (Processor) Process(buf []byte) (*Result, error) {
	meta, err := bimg.NewImage(buf).Size()
	if err != nil {
		return nil, fmt.Errorf("processing: read image: %w", err)
	}

	web := buf
	webType := http.DetectContentType(buf)
	if meta.Width > maxWebWidth {
		web, err = bimg.NewImage(buf).Process(bimg.Options{
			Width:   maxWebWidth,
			Type:    bimg.JPEG,
			Quality: webQuality,
		})
		if err != nil {
			return nil, fmt.Errorf("processing: resize image: %w", err)
		}
		webType = "image/jpeg"
	}

	thumb, err := bimg.NewImage(buf).Process(bimg.Options{
		Width:   thumbWidth,
		Type:    bimg.JPEG,
		Quality: thumbQuality,
	})
	if err != nil {
		return nil, fmt.Errorf("processing: create thumbnail: %w", err)
	}

	return &Result{
		Web:       web,
		WebType:   webType,
		Thumbnail: thumb,
		ThumbType: "image/jpeg",
		Size:      int64(len(web)),
	}, nil
}

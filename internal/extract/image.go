package extract

import (
	"bytes"
	"image"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"

	// Decoders for the raster formats accepted by the archive.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ocrLanguages selects German plus English recognition, matching the archive's
// document corpus.
const ocrLanguages = "deu+eng"

// ocrEngine shells out to the tesseract binary. Availability is probed once at
// construction; without the binary every image yields the placeholder text.
type ocrEngine struct {
	binary    string
	available bool
	logger    *zap.Logger
}

func newOCREngine(logger *zap.Logger) *ocrEngine {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		logger.Info("tesseract not found, image OCR disabled")
		return &ocrEngine{logger: logger}
	}
	return &ocrEngine{binary: path, available: true, logger: logger}
}

// extract runs OCR over an image after normalizing its EXIF orientation.
// Phone cameras store rotation as metadata only; without normalization a
// portrait scan reaches the OCR engine sideways and recognizes nothing.
// Every failure degrades to the placeholder, never to an error: an image that
// cannot be read is still classifiable from its filename.
func (o *ocrEngine) extract(name string, content []byte) (string, error) {
	if !o.available {
		return placeholderStrategy(name, content)
	}
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		o.logger.Debug("ocr: decode failed", zap.String("name", name), zap.Error(err))
		return placeholderStrategy(name, content)
	}
	img = normalizeOrientation(img, content)

	tmp, err := os.CreateTemp("", "ablage-ocr-*.png")
	if err != nil {
		return placeholderStrategy(name, content)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := imaging.Save(img, tmpPath); err != nil {
		o.logger.Debug("ocr: save temp failed", zap.String("name", name), zap.Error(err))
		return placeholderStrategy(name, content)
	}

	out, err := exec.Command(o.binary, tmpPath, "stdout", "-l", ocrLanguages).Output()
	if err != nil {
		o.logger.Debug("ocr: tesseract failed", zap.String("name", name), zap.Error(err))
		return placeholderStrategy(name, content)
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return placeholderStrategy(name, content)
	}
	return text, nil
}

// normalizeOrientation applies the EXIF orientation tag to the decoded image.
// Images without EXIF data (PNG, BMP, stripped JPEGs) pass through unchanged.
func normalizeOrientation(img image.Image, content []byte) image.Image {
	x, err := exif.Decode(bytes.NewReader(content))
	if err != nil {
		return img
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

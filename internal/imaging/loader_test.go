package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		hint    string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"png", "png", false},
		{".PNG", "png", false},
		{"jpeg", "jpg", false},
		{"image/jpeg", "jpg", false},
		{"tiff", "tif", false},
		{"webp", "webp", false},
		{"svg", "", true},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			got, err := NormalizeFormat(tt.hint)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeFormat(%q) error = %v, wantErr %v", tt.hint, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("error should wrap ErrUnsupportedFormat: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.hint, got, tt.want)
			}
		})
	}
}

func TestDecode_PNG(t *testing.T) {
	data := encodePNG(t, newFilledImage(120, 80, color.RGBA{255, 0, 0, 255}))

	src, err := Decode(bytes.NewReader(data), "png")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if src.Width() != 120 || src.Height() != 80 {
		t.Errorf("dimensions: got %dx%d, want 120x80", src.Width(), src.Height())
	}
	if src.Format != "png" {
		t.Errorf("Format: got %s, want png", src.Format)
	}
	if src.Size != int64(len(data)) {
		t.Errorf("Size: got %d, want %d", src.Size, len(data))
	}
}

func TestDecode_JPEGWithoutHint(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, newFilledImage(64, 32, color.RGBA{0, 0, 255, 255}), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	src, err := Decode(&buf, "")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if src.Format != "jpg" {
		t.Errorf("Format: got %s, want jpg", src.Format)
	}
	if src.Width() != 64 || src.Height() != 32 {
		t.Errorf("dimensions: got %dx%d, want 64x32", src.Width(), src.Height())
	}
}

func TestDecode_UnsupportedHint(t *testing.T) {
	data := encodePNG(t, newFilledImage(10, 10, color.White))

	_, err := Decode(bytes.NewReader(data), "svg")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode_UnrecognizedContent(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("this is not an image at all")},
		{"pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes(tt.data, "")
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("got %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

// withPNGSize rewrites the dimensions declared in the IHDR chunk of a PNG,
// leaving the pixel data untouched.
func withPNGSize(data []byte, width, height uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecode_TooManyPixels(t *testing.T) {
	data := withPNGSize(encodePNG(t, newFilledImage(1, 1, color.White)), 50000, 50000)

	_, err := DecodeBytes(data, "png")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	if !containsString(err.Error(), "exceeds") {
		t.Errorf("error %q should name the pixel limit", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeTempPNG(t, "poster.png", newQuadrantImage(40, 20))

	src, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if src.Width() != 40 || src.Height() != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", src.Width(), src.Height())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/path/image.png"); err == nil {
		t.Error("LoadFile should fail for missing file")
	}
}

func TestSource_Info(t *testing.T) {
	src := &Source{
		Image:  image.NewNRGBA(image.Rect(0, 0, 30, 20)),
		Format: "png",
		Size:   1234,
	}

	info := src.Info()
	if info.Width != 30 || info.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", info.Width, info.Height)
	}
	if !info.HasAlpha {
		t.Error("NRGBA image should report alpha")
	}
	if info.ColorDepth != "8-bit" {
		t.Errorf("ColorDepth: got %s, want 8-bit", info.ColorDepth)
	}
	if info.SizeBytes != 1234 {
		t.Errorf("SizeBytes: got %d, want 1234", info.SizeBytes)
	}

	gray := (&Source{Image: image.NewGray16(image.Rect(0, 0, 2, 2))}).Info()
	if gray.ColorDepth != "16-bit" || gray.HasAlpha {
		t.Errorf("Gray16: got depth %s alpha %v, want 16-bit false", gray.ColorDepth, gray.HasAlpha)
	}
}

package rasterimage

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"whitted/color"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func gradient(rows, cols int) *Raster {
	r := New(rows, cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r.WritePixel(row, col, color.New(float64(row)/float64(rows), float64(col)/float64(cols), 1.5))
		}
	}
	return r
}

func TestRasterRoundTrip(t *testing.T) {
	want := gradient(7, 13)

	buf := &bytes.Buffer{}
	if err := WriteRaster(want, buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := ReadRaster(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Raster changed in transit; diff (-got +want)\n%s", diff)
	}
}

func TestReadRasterRejectsBadVersion(t *testing.T) {
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"rows":              1,
		"cols":              1,
		"dataLayoutVersion": 2,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint64(len(hdrBytes)))
	buf.Write(hdrBytes)

	if _, err := ReadRaster(buf); err == nil {
		t.Errorf("ReadRaster accepted layout version 2")
	}
}

func TestReadRasterRejectsTruncatedData(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteRaster(gradient(4, 4), buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Keep the header and just the start of the compressed samples.
	headerLength := binary.LittleEndian.Uint64(buf.Bytes()[:8])
	truncated := buf.Bytes()[:8+int(headerLength)+4]
	if _, err := ReadRaster(bytes.NewReader(truncated)); err == nil {
		t.Errorf("ReadRaster accepted a truncated file")
	}
}

func TestWritePNGClamps(t *testing.T) {
	r := New(2, 3)
	r.WritePixel(0, 0, color.New(2, -1, 0.5))
	r.WritePixel(1, 2, color.New(0, 1, 0))

	buf := &bytes.Buffer{}
	if err := r.WritePNG(buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	im, err := png.Decode(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := im.Bounds().Size(); got.X != 3 || got.Y != 2 {
		t.Fatalf("Image size %v, want 3x2", got)
	}

	type rgba struct{ R, G, B, A uint32 }
	read := func(x, y int) rgba {
		r, g, b, a := im.At(x, y).RGBA()
		return rgba{r >> 8, g >> 8, b >> 8, a >> 8}
	}
	if diff := cmp.Diff(read(0, 0), rgba{255, 0, 128, 255}); diff != "" {
		t.Errorf("Bad pixel (0, 0); diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(read(2, 1), rgba{0, 255, 0, 255}); diff != "" {
		t.Errorf("Bad pixel (2, 1); diff (-got +want)\n%s", diff)
	}
}

func TestGrid(t *testing.T) {
	r := New(5, 5)
	white := color.New(1, 1, 1)
	r.Grid(2, white)

	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			onGrid := row%2 == 0 || col%2 == 0
			if got := r.ReadPixel(row, col) == white; got != onGrid {
				t.Errorf("Pixel (%d, %d) painted=%v, want %v", row, col, got, onGrid)
			}
		}
	}
}

func TestThumbnailKeepsAspect(t *testing.T) {
	thumb := gradient(100, 200).Thumbnail(50, 50)
	if got := thumb.Bounds().Size(); got.X != 50 || got.Y != 25 {
		t.Errorf("Thumbnail size %v, want 50x25", got)
	}
}

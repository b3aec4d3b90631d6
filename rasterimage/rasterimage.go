// Package rasterimage is an in-memory RGB image that render output is
// collected into, with PNG export and a lossless packed format.
package rasterimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"whitted/color"

	"github.com/nfnt/resize"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Raster stores unclamped colors in row-major order.  Writes to distinct
// pixels may happen concurrently.
type Raster struct {
	Rows, Cols int
	Pixels     []color.Color
}

func New(rows, cols int) *Raster {
	return &Raster{
		Rows:   rows,
		Cols:   cols,
		Pixels: make([]color.Color, rows*cols),
	}
}

func (r *Raster) WritePixel(row, col int, c color.Color) {
	r.Pixels[row*r.Cols+col] = c
}

func (r *Raster) ReadPixel(row, col int) color.Color {
	return r.Pixels[row*r.Cols+col]
}

// Grid paints every interval'th row and column with c.  It is handy for
// checking the camera's pixel layout.
func (r *Raster) Grid(interval int, c color.Color) {
	if interval <= 0 {
		return
	}
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			if row%interval == 0 || col%interval == 0 {
				r.WritePixel(row, col, c)
			}
		}
	}
}

// ToImage clamps every pixel into an 8-bit image.
func (r *Raster) ToImage() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, r.Cols, r.Rows))
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			im.SetNRGBA(col, row, r.ReadPixel(row, col).NRGBA())
		}
	}
	return im
}

func (r *Raster) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.ToImage()); err != nil {
		return fmt.Errorf("while encoding png: %w", err)
	}
	return nil
}

// Thumbnail scales the image down to fit within maxWidth by maxHeight,
// keeping its aspect ratio.
func (r *Raster) Thumbnail(maxWidth, maxHeight uint) image.Image {
	return resize.Thumbnail(maxWidth, maxHeight, r.ToImage(), resize.Bilinear)
}

const (
	dataLayoutVersion = 1

	// Sanity limits for headers read from untrusted files.
	maxHeaderLength = 1 << 16
	maxPixels       = 1 << 28
)

func numberField(hdr *structpb.Struct, name string) (float64, error) {
	v, ok := hdr.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("header has no %q field", name)
	}
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, fmt.Errorf("header field %q is not a number", name)
	}
	return v.GetNumberValue(), nil
}

// ReadRaster reads the packed format written by WriteRaster.
func ReadRaster(in io.Reader) (*Raster, error) {
	// Read header length.
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > maxHeaderLength {
		return nil, fmt.Errorf("header length %d is implausibly large", headerLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	version, err := numberField(hdr, "dataLayoutVersion")
	if err != nil {
		return nil, err
	}
	if version != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", version)
	}

	rows, err := numberField(hdr, "rows")
	if err != nil {
		return nil, err
	}
	cols, err := numberField(hdr, "cols")
	if err != nil {
		return nil, err
	}
	if rows < 0 || cols < 0 || rows*cols > maxPixels || rows != float64(int(rows)) || cols != float64(int(cols)) {
		return nil, fmt.Errorf("bad image size %vx%v", rows, cols)
	}

	im := New(int(rows), int(cols))

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	samples := make([]float64, 3*len(im.Pixels))
	if err := binary.Read(zipReader, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("while reading pixel samples: %w", err)
	}
	for i := range im.Pixels {
		im.Pixels[i] = color.New(samples[3*i], samples[3*i+1], samples[3*i+2])
	}

	return im, nil
}

func ReadRasterFromFile(name string) (*Raster, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return ReadRaster(f)
}

// WriteRaster writes im without losing precision or clamping: a
// length-prefixed header followed by zlib-compressed little-endian float64
// samples.
func WriteRaster(im *Raster, w io.Writer) error {
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"rows":              im.Rows,
		"cols":              im.Cols,
		"channels":          "rgb",
		"dataLayoutVersion": dataLayoutVersion,
	})
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	samples := make([]float64, 0, 3*len(im.Pixels))
	for _, c := range im.Pixels {
		samples = append(samples, c.R, c.G, c.B)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("while writing pixel samples: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}

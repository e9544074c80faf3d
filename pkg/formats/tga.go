// Package formats provides parsers for 3D viewer asset file formats.
// TGA (Truevision) image container parser.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// TGA format errors.
var (
	ErrTGAHeader        = errors.New("invalid TGA header")
	ErrTGAColorMap      = errors.New("invalid TGA color map")
	ErrUnknownImageType = errors.New("unknown TGA image type")
	ErrTGACompressed    = errors.New("compressed TGA not implemented")
	ErrTGAImageData     = errors.New("failed to parse TGA image data")
)

// Bpp is a pixel or color-map entry depth in bits. The zero value marks an
// absent color-map depth.
type Bpp uint8

// Supported bit depths.
const (
	Bits8  Bpp = 8
	Bits16 Bpp = 16
	Bits24 Bpp = 24
	Bits32 Bpp = 32
)

// bppFromValue maps a raw depth byte to a Bpp, rejecting unknown values.
func bppFromValue(v uint8) (Bpp, bool) {
	switch v {
	case 8, 16, 24, 32:
		return Bpp(v), true
	}
	return 0, false
}

// Bytes returns the depth in whole bytes.
func (b Bpp) Bytes() int {
	return int(b) / 8
}

// String returns a human-readable depth name.
func (b Bpp) String() string {
	if b == 0 {
		return "None"
	}
	return fmt.Sprintf("Bits%d", uint8(b))
}

// TGADataType is the image data type from the low two bits of the
// image-type byte.
type TGADataType uint8

const (
	TGANoData        TGADataType = 0 // No image data
	TGAColorMapped   TGADataType = 1 // Color-mapped (palette indices)
	TGATrueColor     TGADataType = 2 // True color
	TGABlackAndWhite TGADataType = 3 // Black and white or grayscale
)

// String returns a human-readable data type name.
func (t TGADataType) String() string {
	switch t {
	case TGANoData:
		return "NoData"
	case TGAColorMapped:
		return "ColorMapped"
	case TGATrueColor:
		return "TrueColor"
	case TGABlackAndWhite:
		return "BlackAndWhite"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// ImageOrigin is the corner the first pixel belongs to, from bits 4-5 of
// the image-descriptor byte.
type ImageOrigin uint8

const (
	OriginBottomLeft  ImageOrigin = 0
	OriginBottomRight ImageOrigin = 1
	OriginTopLeft     ImageOrigin = 2
	OriginTopRight    ImageOrigin = 3
)

// String returns a human-readable origin name.
func (o ImageOrigin) String() string {
	switch o {
	case OriginBottomLeft:
		return "BottomLeft"
	case OriginBottomRight:
		return "BottomRight"
	case OriginTopLeft:
		return "TopLeft"
	default:
		return "TopRight"
	}
}

// TGAHeader is the decoded fixed 18-byte TGA header.
type TGAHeader struct {
	IDLen         uint8       // Size of the image ID field
	HasColorMap   bool        // Color map present
	DataType      TGADataType // Image data type
	Compressed    bool        // Run-length encoded (bit 3 of the type byte)
	ColorMapStart uint16      // First color map entry index
	ColorMapLen   uint16      // Number of color map entries
	ColorMapDepth Bpp         // Color map entry depth, 0 when absent/invalid
	XOrigin       uint16      // Lower-left X coordinate
	YOrigin       uint16      // Lower-left Y coordinate
	Width         uint16      // Image width in pixels
	Height        uint16      // Image height in pixels
	PixelDepth    Bpp         // Pixel bit depth
	ImageOrigin   ImageOrigin // Corner the first pixel belongs to
	AlphaDepth    uint8       // Alpha channel bit count (low descriptor nibble)
}

// ParseTGAHeader decodes the fixed 18-byte header from the start of data.
func ParseTGAHeader(data []byte) (TGAHeader, error) {
	if len(data) < 18 {
		return TGAHeader{}, fmt.Errorf("%w: truncated header", ErrTGAHeader)
	}

	h := TGAHeader{IDLen: data[0]}

	switch data[1] {
	case 0:
		h.HasColorMap = false
	case 1:
		h.HasColorMap = true
	default:
		return TGAHeader{}, fmt.Errorf("%w: color map type %d", ErrTGAColorMap, data[1])
	}

	// Image type byte: low 2 bits select the data type, bit 3 flags RLE.
	// Any other bit set is a reserved or vendor extension we reject.
	imageType := data[2]
	if imageType&^0x0B != 0 {
		return TGAHeader{}, fmt.Errorf("%w: 0x%02x", ErrUnknownImageType, imageType)
	}
	h.DataType = TGADataType(imageType & 0x03)
	h.Compressed = imageType&0x08 != 0

	h.ColorMapStart = binary.LittleEndian.Uint16(data[3:5])
	h.ColorMapLen = binary.LittleEndian.Uint16(data[5:7])
	if depth, ok := bppFromValue(data[7]); ok {
		h.ColorMapDepth = depth
	}

	h.XOrigin = binary.LittleEndian.Uint16(data[8:10])
	h.YOrigin = binary.LittleEndian.Uint16(data[10:12])
	h.Width = binary.LittleEndian.Uint16(data[12:14])
	h.Height = binary.LittleEndian.Uint16(data[14:16])

	depth, ok := bppFromValue(data[16])
	if !ok {
		return TGAHeader{}, fmt.Errorf("%w: pixel depth %d", ErrTGAHeader, data[16])
	}
	h.PixelDepth = depth

	descriptor := data[17]
	h.ImageOrigin = ImageOrigin(descriptor >> 4 & 0x03)
	h.AlphaDepth = descriptor & 0x0F

	return h, nil
}

// TGA v2 files end with a 26-byte footer whose last 18 bytes are a fixed
// signature. When present, the footer is not pixel data.
const tgaFooterLen = 26

var tgaFooterSignature = []byte("TRUEVISION-XFILE.\x00")

// TGA is a parsed TGA image. Pixel data is kept as the raw byte region;
// decoding happens lazily through Pixels or eagerly through DecodePixels.
type TGA struct {
	header   TGAHeader
	imageID  []byte
	colorMap []byte
	pixels   []byte
	footer   bool
}

// ParseTGA parses a TGA image from raw bytes.
//
// Run-length encoded images are rejected with ErrTGACompressed before any
// pixel data is touched.
func ParseTGA(data []byte) (*TGA, error) {
	header, err := ParseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	if header.Compressed {
		return nil, fmt.Errorf("%w: image type 0x%02x", ErrTGACompressed, data[2])
	}

	cursor := 18 + int(header.IDLen)
	if cursor > len(data) {
		return nil, fmt.Errorf("%w: truncated image id", ErrTGAHeader)
	}
	tga := &TGA{
		header:  header,
		imageID: data[18:cursor],
	}

	if header.HasColorMap {
		if header.ColorMapDepth == 0 {
			return nil, fmt.Errorf("%w: missing entry depth", ErrTGAColorMap)
		}
		length := int(header.ColorMapLen) * header.ColorMapDepth.Bytes()
		if cursor+length > len(data) {
			return nil, fmt.Errorf("%w: truncated color map", ErrTGAColorMap)
		}
		tga.colorMap = data[cursor : cursor+length]
		cursor += length
	}

	pixels := data[cursor:]
	if len(pixels) >= tgaFooterLen && bytes.Equal(data[len(data)-len(tgaFooterSignature):], tgaFooterSignature) {
		pixels = pixels[:len(pixels)-tgaFooterLen]
		tga.footer = true
	}
	tga.pixels = pixels

	return tga, nil
}

// ParseTGAFile parses a TGA file from disk.
func ParseTGAFile(path string) (*TGA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TGA file: %w", err)
	}
	return ParseTGA(data)
}

// Header returns the decoded header.
func (t *TGA) Header() TGAHeader {
	return t.header
}

// ImageID returns the raw image ID field, empty when IDLen is 0.
func (t *TGA) ImageID() []byte {
	return t.imageID
}

// ColorMap returns the raw color map bytes, nil when the header carries no
// color map. Entries are ColorMapDepth.Bytes() wide.
func (t *TGA) ColorMap() []byte {
	return t.colorMap
}

// RawPixelData returns the undecoded pixel byte region, with the image ID,
// color map and any trailing footer already excluded.
func (t *TGA) RawPixelData() []byte {
	return t.pixels
}

// HasFooter returns true if the file ends with the TGA v2 footer signature.
func (t *TGA) HasFooter() bool {
	return t.footer
}

// Point is an integer pixel coordinate in scan order, relative to the
// header's image origin corner.
type Point struct {
	X, Y int
}

// Pixel pairs a scan-order position with a raw packed color value. The
// color keeps the source bit layout widened to uint32; expanding channels
// to RGBA is the consumer's concern.
type Pixel struct {
	Position Point
	Color    uint32
}

// Pixels returns a lazy single-pass reader over the decoded pixels, in the
// style of bufio.Scanner:
//
//	r := tga.Pixels()
//	for r.Next() {
//		p := r.Pixel()
//		...
//	}
//	if err := r.Err(); err != nil { ... }
func (t *TGA) Pixels() *PixelReader {
	return &PixelReader{
		width: int(t.header.Width),
		count: int(t.header.Width) * int(t.header.Height),
		depth: t.header.PixelDepth.Bytes(),
		rle:   t.header.Compressed,
		data:  t.pixels,
	}
}

// DecodePixels decodes the full image into memory.
func (t *TGA) DecodePixels() ([]Pixel, error) {
	r := t.Pixels()
	pixels := make([]Pixel, 0, r.count)
	for r.Next() {
		pixels = append(pixels, r.Pixel())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return pixels, nil
}

// PixelReader decodes pixels lazily in scan order. It is finite,
// single-pass and not restartable mid-stream; obtain a fresh reader from
// TGA.Pixels to decode again.
type PixelReader struct {
	width int
	count int
	depth int // bytes per pixel
	rle   bool

	data  []byte
	off   int
	i     int // scan-order pixel counter
	pixel Pixel
	err   error

	// run-length packet state
	runColor uint32
	runLeft  int
	rawLeft  int
}

// Next advances to the next pixel. It returns false at the end of the
// image or on a decode error, which Err reports.
func (r *PixelReader) Next() bool {
	if r.err != nil || r.i >= r.count {
		return false
	}
	color, err := r.nextColor()
	if err != nil {
		r.err = err
		return false
	}
	r.pixel = Pixel{
		Position: Point{X: r.i % r.width, Y: r.i / r.width},
		Color:    color,
	}
	r.i++
	return true
}

// Pixel returns the pixel decoded by the last successful Next.
func (r *PixelReader) Pixel() Pixel {
	return r.pixel
}

// Err returns the first decode error, nil after a clean end of image.
func (r *PixelReader) Err() error {
	return r.err
}

// nextColor produces the next raw color value, dispatching on the
// encoding. Raw images read one color per pixel; run-length images consume
// packet headers and replay runs.
func (r *PixelReader) nextColor() (uint32, error) {
	if !r.rle {
		return r.readColor()
	}

	if r.runLeft > 0 {
		r.runLeft--
		return r.runColor, nil
	}
	if r.rawLeft > 0 {
		r.rawLeft--
		return r.readColor()
	}

	if r.off >= len(r.data) {
		return 0, fmt.Errorf("%w: missing packet header", ErrTGAImageData)
	}
	packet := r.data[r.off]
	r.off++

	n := int(packet&0x7F) + 1
	if packet&0x80 != 0 {
		color, err := r.readColor()
		if err != nil {
			return 0, err
		}
		r.runColor = color
		r.runLeft = n - 1
		return color, nil
	}
	r.rawLeft = n - 1
	return r.readColor()
}

// readColor reads one color value and widens it to uint32 little-endian,
// without interpreting channels.
func (r *PixelReader) readColor() (uint32, error) {
	if r.off+r.depth > len(r.data) {
		return 0, fmt.Errorf("%w: truncated pixel data", ErrTGAImageData)
	}
	var color uint32
	for k := 0; k < r.depth; k++ {
		color |= uint32(r.data[r.off+k]) << (8 * k)
	}
	r.off += r.depth
	return color, nil
}

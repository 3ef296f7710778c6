// Package codec reads file content as detected-encoding text, hex, or raw
// bytes, and writes text back as UTF-8.
package codec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
)

// HexMode is the encoding hint that selects hex output.
const HexMode = "hex"

// DefaultEncoding is reported when sniffing has nothing to go on.
const DefaultEncoding = "UTF-8"

// Text is a decoded read.
type Text struct {
	Content  string
	Detected string
	Used     string
}

// WriteResult describes a completed write.
type WriteResult struct {
	Size     int
	Checksum string
}

// Codec converts between file bytes and client representations.
type Codec struct {
	detector *chardet.Detector
}

// New creates a Codec.
func New() *Codec {
	return &Codec{detector: chardet.NewTextDetector()}
}

// ReadHex returns the file's bytes as lower-case hex, two digits per byte.
func (c *Codec) ReadHex(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// ReadText decodes the file. A non-empty hint overrides the sniffed encoding,
// which is reported either way.
func (c *Codec) ReadText(path, hint string) (*Text, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return c.Decode(data, hint)
}

// Decode transcodes data to UTF-8 text.
func (c *Codec) Decode(data []byte, hint string) (*Text, error) {
	detected := c.Detect(data)
	used := detected
	if hint != "" {
		used = hint
	}

	enc, err := lookup(used)
	if err != nil {
		if hint != "" {
			return nil, fmt.Errorf("%w: %s", apperr.ErrUnsupportedEncoding, hint)
		}
		// Sniffer produced a label x/text cannot map.
		used = DefaultEncoding
		enc, _ = lookup(used)
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("codec: decode as %s: %w", used, err)
	}
	return &Text{Content: string(out), Detected: detected, Used: used}, nil
}

// Detect guesses the character encoding of data. Valid UTF-8, including
// plain ASCII, is always reported as UTF-8.
func (c *Codec) Detect(data []byte) string {
	if len(data) == 0 || utf8.Valid(data) {
		return DefaultEncoding
	}
	res, err := c.detector.DetectBest(data)
	if err != nil || res == nil || res.Charset == "" {
		return DefaultEncoding
	}
	return res.Charset
}

// Write replaces the file with content encoded as UTF-8. Concurrent writers
// to one path race; the last one wins.
func (c *Codec) Write(path, content string) (*WriteResult, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s", apperr.ErrIsDirectory, path)
	}
	data := []byte(content)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, &apperr.IOError{Op: "write", Path: path, Err: err}
	}
	sum := sha256.Sum256(data)
	return &WriteResult{Size: len(data), Checksum: hex.EncodeToString(sum[:])}, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &apperr.IOError{Op: "read", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", apperr.ErrIsDirectory, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperr.IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// chardet labels that neither index knows.
var aliases = map[string]string{
	"gb-18030": "gb18030",
}

func lookup(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[label]; ok {
		label = a
	}
	if enc, err := htmlindex.Get(label); err == nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("codec: no decoder for %s", name)
	}
	return enc, nil
}

// Package share turns a project into a compact URL-safe string and back.
//
// A link is the project encoded as JSON, compressed with zstd and written in
// unpadded base64url.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/project"
)

// MaxDecodedSize bounds the memory Decode will use for a decompressed link.
const MaxDecodedSize = 4 << 20

// ErrInvalidLink is returned when a link cannot be decoded.
var ErrInvalidLink = errors.New("invalid share link")

var encoding = base64.RawURLEncoding

// Encode returns the share link for p.
func Encode(p *project.Project) (string, error) {
	if p == nil {
		return "", errors.New("nil project")
	}
	out := *p
	if out.Version == 0 {
		out.Version = project.CurrentVersion
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return "", fmt.Errorf("encode project: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return "", err
	}
	defer encoder.Close()

	return encoding.EncodeToString(encoder.EncodeAll(data, nil)), nil
}

// Decode parses a share link and validates the project it carries.
func Decode(link string) (*project.Project, error) {
	compressed, err := encoding.DecodeString(link)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedSize))
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	p, err := project.Load(bytes.NewReader(data), document.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	return p, nil
}

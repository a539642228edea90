// Package compress transparently zstd-compresses stored blobs. Values written
// before compression was enabled stay readable: decompression only kicks in
// when the zstd magic bytes are present.
package compress

import (
	"bytes"

	"github.com/klauspost/compress/zstd"
)

// MaxDecompressionSize bounds how much a stored value may inflate to. Guards
// against decompression bombs on values we did not produce.
const MaxDecompressionSize = 10 * 1024 * 1024

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Codec compresses and decompresses blob values.
type Codec struct {
	enabled bool
	level   zstd.EncoderLevel
}

// NewCodec creates a codec. level follows zstd convention (1 fastest, 3 default).
func NewCodec(enabled bool, level int) *Codec {
	return &Codec{
		enabled: enabled,
		level:   zstd.EncoderLevelFromZstd(level),
	}
}

// Compress returns the zstd-encoded form of data, or data unchanged when
// compression is disabled, fails, or does not shrink the value.
func (c *Codec) Compress(data []byte) []byte {
	if !c.enabled || len(data) == 0 {
		return data
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return data
	}
	out := enc.EncodeAll(data, make([]byte, 0, len(data)))
	_ = enc.Close()

	if len(out) < len(data) {
		return out
	}
	return data
}

// Decompress restores a value written by Compress. Non-zstd input passes
// through untouched. Output larger than MaxDecompressionSize is refused and
// the raw value returned instead.
func (c *Codec) Decompress(data []byte) []byte {
	if len(data) < len(zstdMagic) || !bytes.Equal(data[:len(zstdMagic)], zstdMagic) {
		return data
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecompressionSize))
	if err != nil {
		return data
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil || len(out) > MaxDecompressionSize {
		return data
	}
	return out
}

package cache

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/snappy"
	"github.com/pierrec/lz4/v4"

	"github.com/pagelens/engine/pkg/types"
)

// Cached payloads carry a one-byte algorithm marker so entries written
// under one compression setting stay readable after the setting changes.
const (
	markerNone   = 0x00
	markerSnappy = 0x01
	markerLZ4    = 0x02
)

// encodePayload compresses payload with the given algorithm and prepends
// the algorithm marker. Payloads below the size threshold are stored raw.
func encodePayload(payload []byte, algorithm string) ([]byte, error) {
	if len(payload) < types.CompressionMinSize {
		algorithm = types.CompressionNone
	}

	switch algorithm {
	case types.CompressionSnappy:
		compressed := snappy.Encode(nil, payload)
		return append([]byte{markerSnappy}, compressed...), nil

	case types.CompressionLZ4:
		// Stream format embeds size information.
		var buf bytes.Buffer
		buf.WriteByte(markerLZ4)
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			w.Close()
			return nil, fmt.Errorf("lz4 compression failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compression close failed: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return append([]byte{markerNone}, payload...), nil
	}
}

// decodePayload reverses encodePayload based on the marker byte.
func decodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty cache payload")
	}

	body := data[1:]
	switch data[0] {
	case markerNone:
		return body, nil

	case markerSnappy:
		decompressed, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, fmt.Errorf("snappy decompression failed: %w", err)
		}
		return decompressed, nil

	case markerLZ4:
		decompressed, err := io.ReadAll(lz4.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		return decompressed, nil

	default:
		return nil, fmt.Errorf("unknown cache payload marker: 0x%02x", data[0])
	}
}

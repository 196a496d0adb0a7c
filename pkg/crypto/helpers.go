package crypto

import (
	"bytes"
	"compress/flate"
	"io"
)

// maxInflated caps decompression; templates are a few kilobytes.
const maxInflated = 1 << 20

func compress(uncompressed []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(uncompressed); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer func() {
		_ = r.Close()
	}()

	return io.ReadAll(io.LimitReader(r, maxInflated))
}

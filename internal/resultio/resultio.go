// Package resultio stores routing results as zstd-compressed JSON, the form
// handed to the output stage.
package resultio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"panel-router/internal/router"

	"github.com/klauspost/compress/zstd"
)

// Ext is the conventional file extension of a results archive.
const Ext = ".json.zst"

// Write encodes res to w.
func Write(w io.Writer, res *router.Results) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := json.NewEncoder(enc).Encode(res); err != nil {
		enc.Close()
		return fmt.Errorf("encode results: %w", err)
	}
	return enc.Close()
}

// Read decodes results written by Write.
func Read(r io.Reader) (*router.Results, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var res router.Results
	if err := json.NewDecoder(dec).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &res, nil
}

// Save writes res to a file.
func Save(path string, res *router.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads results from a file.
func Load(path string) (*router.Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Network Serialization API
// =============================================================================

// MarshalNetwork converts a Network to indented JSON bytes.
// Slice order is preserved, so output is deterministic for identical input.
func MarshalNetwork(n Network) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNetworkTo(n, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteNetworkFile writes a Network to a JSON file.
// The file is created with 0644 permissions.
func WriteNetworkFile(n Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeNetworkTo(n, f)
}

// WriteNetwork writes a Network as JSON to an io.Writer.
func WriteNetwork(n Network, w io.Writer) error {
	return writeNetworkTo(n, w)
}

// ReadNetworkFile reads a JSON file and returns the decoded, normalized
// Network. Normalization issues are absorbed, not returned as errors.
func ReadNetworkFile(path string) (Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return Network{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadNetwork(f)
}

// ReadNetwork decodes a JSON network from an io.Reader and normalizes it.
func ReadNetwork(r io.Reader) (Network, error) {
	var n Network
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return Network{}, fmt.Errorf("decode: %w", err)
	}
	n.Normalize()
	return n, nil
}

// UnmarshalNetwork deserializes JSON bytes to a normalized Network.
func UnmarshalNetwork(data []byte) (Network, error) {
	return ReadNetwork(bytes.NewReader(data))
}

func writeNetworkTo(n Network, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

package utils

import (
	"encoding/base64"
	"fmt"
)

// LocalAddress returns a string representing the local address for a given port.
func LocalAddress(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

// DecodeBase64All decodes every standard base64 string, failing on the first malformed one.
func DecodeBase64All(in []string) ([][]byte, error) {
	out := make([][]byte, len(in))
	for i, s := range in {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("decode base64 item %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

// EncodeBase64All encodes every byte slice as standard base64.
func EncodeBase64All(in [][]byte) []string {
	out := make([]string, len(in))
	for i, b := range in {
		out[i] = base64.StdEncoding.EncodeToString(b)
	}
	return out
}

package wdk

// Unit selection adapted from https://github.com/cloudfoundry/bytefmt (Apache V2)

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	bbyte    = 1.0
	kilobyte = 1024 * bbyte
	megabyte = 1024 * kilobyte
	gigabyte = 1024 * megabyte
	terabyte = 1024 * gigabyte
)

var byteUnits = []struct {
	size float64
	unit string
}{
	{terabyte, "T"},
	{gigabyte, "G"},
	{megabyte, "M"},
	{kilobyte, "K"},
	{bbyte, "B"},
}

// Bytes is a wrapper type for numbers which represent bytes, such as the size
// of input files or the archive sizes summed up from data statistics. It
// provides a String method which produces sensible readable output like 1.2G
// or 4M, etc.
type Bytes uint64

// String returns a human-readable byte string of the form 10M, 12.5K, and so
// forth, using the largest unit which keeps the number at or above 1.
func (b Bytes) String() string {
	if b == 0 {
		return "0"
	}
	for _, u := range byteUnits {
		if float64(b) >= u.size {
			s := fmt.Sprintf("%.1f", float64(b)/u.size)
			return strings.TrimSuffix(s, ".0") + u.unit
		}
	}
	return fmt.Sprintf("%dB", uint64(b))
}

// MarshalJSON writes the exact number of bytes alongside its readable form.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Bytes uint64 `json:"bytes"`
		Human string `json:"human"`
	}{uint64(b), b.String()})
}

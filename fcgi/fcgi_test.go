package fcgi

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestAppendPairLen(t *testing.T) {
	if got := appendPairLen(nil, 0); !bytes.Equal(got, []byte{0}) {
		t.Errorf("length 0: got %v", got)
	}
	if got := appendPairLen(nil, 127); !bytes.Equal(got, []byte{127}) {
		t.Errorf("length 127 must use the short form, got %v", got)
	}
	if got := appendPairLen(nil, 128); !bytes.Equal(got, []byte{0x80, 0, 0, 128}) {
		t.Errorf("length 128 must use the long form, got %v", got)
	}
	if got := appendPairLen(nil, 0x01020304); !bytes.Equal(got, []byte{0x81, 0x02, 0x03, 0x04}) {
		t.Errorf("long form big-endian encoding wrong, got %v", got)
	}
}

// decodePairs reverses encodeParams for test assertions.
func decodePairs(t *testing.T, data []byte) map[string]string {
	t.Helper()
	pairs := map[string]string{}
	readLen := func() int {
		if len(data) == 0 {
			t.Fatal("truncated pair stream")
		}
		if data[0] < 128 {
			n := int(data[0])
			data = data[1:]
			return n
		}
		if len(data) < 4 {
			t.Fatal("truncated long length")
		}
		n := int(binary.BigEndian.Uint32(data[:4]) &^ (1 << 31))
		data = data[4:]
		return n
	}
	for len(data) > 0 {
		nameLen := readLen()
		valueLen := readLen()
		if len(data) < nameLen+valueLen {
			t.Fatal("truncated pair content")
		}
		pairs[string(data[:nameLen])] = string(data[nameLen : nameLen+valueLen])
		data = data[nameLen+valueLen:]
	}
	return pairs
}

func TestEncodeParamsRoundTrip(t *testing.T) {
	params := map[string]string{
		"REQUEST_METHOD": "GET",
		"QUERY_STRING":   "",
		"LONG_VALUE":     strings.Repeat("x", 300),
	}

	got := decodePairs(t, encodeParams(params))

	if len(got) != len(params) {
		t.Fatalf("expected %d pairs, got %d", len(params), len(got))
	}
	for name, value := range params {
		if got[name] != value {
			t.Errorf("%s: got %q", name, got[name])
		}
	}
}

func TestNewHeaderPadding(t *testing.T) {
	cases := []struct {
		content int
		padding uint8
	}{
		{0, 0}, {1, 7}, {7, 1}, {8, 0}, {13, 3}, {16, 0},
	}
	for _, tc := range cases {
		h := newHeader(typeStdin, 1, tc.content)
		if h.PaddingLength != tc.padding {
			t.Errorf("content %d: expected padding %d, got %d", tc.content, tc.padding, h.PaddingLength)
		}
		if int(h.ContentLength) != tc.content {
			t.Errorf("content %d: header says %d", tc.content, h.ContentLength)
		}
	}
}

func TestNetworkFor(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"127.0.0.1:9000", "tcp"},
		{"localhost:9000", "tcp"},
		{"[::1]:9000", "tcp"},
		{"/run/php/php-fpm.sock", "unix"},
		{"./relative.sock", "unix"},
		{"plainname", "unix"},
	}
	for _, tc := range cases {
		if got := networkFor(tc.address); got != tc.want {
			t.Errorf("networkFor(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}

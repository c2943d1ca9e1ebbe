package bridge

import (
	"errors"
	"testing"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name    string
		headers HeaderMap
		want    int
		wantErr bool
	}{
		{"absent header defaults to 200", HeaderMap{}, 200, false},
		{"code with reason phrase", HeaderMap{"status": "404 Not Found"}, 404, false},
		{"bare code", HeaderMap{"status": "500"}, 500, false},
		{"leading whitespace", HeaderMap{"status": "  302 Found"}, 302, false},
		{"not a number", HeaderMap{"status": "banana"}, 0, true},
		{"empty value", HeaderMap{"status": ""}, 0, true},
		{"whitespace only", HeaderMap{"status": "   "}, 0, true},
		{"negative", HeaderMap{"status": "-1"}, 0, true},
		{"overflows uint16", HeaderMap{"status": "70000"}, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := StatusCode(tc.headers)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Errorf("expected ErrInvalidStatus, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("StatusCode: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, got)
			}
		})
	}
}

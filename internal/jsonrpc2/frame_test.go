package jsonrpc2

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestReadFrame(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{
			name:  "simple",
			input: "Content-Length: 2\r\n\r\n{}",
			want:  "{}",
		},
		{
			name:  "extra_headers_and_case",
			input: "content-length:  4\r\nContent-Type: application/vscode-jsonrpc; charset=utf-8\r\n\r\nnull",
			want:  "null",
		},
		{
			name:    "missing_length",
			input:   "Content-Type: x\r\n\r\n{}",
			wantErr: "missing Content-Length",
		},
		{
			name:    "bad_length",
			input:   "Content-Length: two\r\n\r\n{}",
			wantErr: "bad Content-Length",
		},
		{
			name:    "malformed_header",
			input:   "garbage\r\n\r\n",
			wantErr: "malformed header",
		},
		{
			name:    "too_large",
			input:   "Content-Length: 999999999999\r\n\r\n",
			wantErr: "exceeds limit",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := readFrame(bufio.NewReader(strings.NewReader(tc.input)))
			if tc.wantErr != "" {
				be.Err(t, err, tc.wantErr)
				return
			}
			be.Err(t, err, nil)
			be.Equal(t, string(got), tc.want)
		})
	}
}

func TestWriteFrameRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	be.Err(t, writeFrame(&buf, []byte(`{"a":1}`)), nil)
	be.Err(t, writeFrame(&buf, []byte(`[]`)), nil)
	be.Equal(t, buf.String(), "Content-Length: 7\r\n\r\n{\"a\":1}Content-Length: 2\r\n\r\n[]")

	r := bufio.NewReader(&buf)
	first, err := readFrame(r)
	be.Err(t, err, nil)
	be.Equal(t, string(first), `{"a":1}`)
	second, err := readFrame(r)
	be.Err(t, err, nil)
	be.Equal(t, string(second), `[]`)
}

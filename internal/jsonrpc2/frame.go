package jsonrpc2

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxFrameSize bounds a single message body.
const maxFrameSize = 64 << 20

var errMissingLength = errors.New("jsonrpc2: missing Content-Length header")

// readFrame reads one Content-Length framed message body from r.
func readFrame(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("jsonrpc2: malformed header %q", line)
		}
		// Content-Type and anything else is ignored.
		if !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("jsonrpc2: bad Content-Length: %w", err)
		}
		contentLength = n
	}
	if contentLength <= 0 {
		return nil, errMissingLength
	}
	if contentLength > maxFrameSize {
		return nil, fmt.Errorf("jsonrpc2: frame of %d bytes exceeds limit", contentLength)
	}
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// writeFrame writes body to w with a Content-Length header.
func writeFrame(w io.Writer, body []byte) error {
	header := "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

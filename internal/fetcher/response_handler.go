package fetcher // import "github.com/jemtv/storyfeed/internal/fetcher"

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type ResponseHandler struct {
	httpResponse *http.Response
	clientErr    error

	maxBodySize int64
}

func (r *ResponseHandler) Status() string  { return r.httpResponse.Status }
func (r *ResponseHandler) StatusCode() int { return r.httpResponse.StatusCode }

func (r *ResponseHandler) Err() error { return r.clientErr }

func (r *ResponseHandler) Close() {
	if r.Err() != nil {
		return
	}
	BodyClose(r.httpResponse.Body)
}

// maxPostHandlerReadBytes is how much of an unconsumed body gets drained
// before closing, so the keep-alive connection stays usable for the next
// page. Approximately a typical TCP buffer size, same value as
// net/http/server.go uses.
const maxPostHandlerReadBytes = 256 << 10

// https://github.com/golang/go/issues/60240
func BodyClose(r io.ReadCloser) {
	_, _ = io.CopyN(io.Discard, r, maxPostHandlerReadBytes+1)
	r.Close()
}

func (r *ResponseHandler) Body() io.Reader {
	return http.MaxBytesReader(nil, r.httpResponse.Body, r.maxBodySize)
}

func (r *ResponseHandler) ReadBody() ([]byte, error) {
	var buffer bytes.Buffer
	_, err := io.Copy(&buffer, r.Body())
	if err != nil && !errors.Is(err, io.EOF) {
		if maxBytesErr, ok := errors.AsType[*http.MaxBytesError](err); ok {
			return nil, fmt.Errorf("fetcher: response body too large: limit is %d bytes",
				maxBytesErr.Limit)
		}
		return nil, fmt.Errorf("fetcher: unable to read response body: %w", err)
	}

	if buffer.Len() == 0 {
		return nil, errors.New("fetcher: empty response body")
	}
	return buffer.Bytes(), nil
}

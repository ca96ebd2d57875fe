package anim

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Source provides the raw container bytes of an asset.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// BytesSource serves an in-memory asset.
type BytesSource []byte

// Open implements Source.
func (b BytesSource) Open(context.Context) (io.ReadCloser, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("anim: empty source")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FileSource reads an asset from the file system.
type FileSource string

// Open implements Source.
func (f FileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(string(f))
}

// ReaderSource wraps an already open reader. It can be opened once.
func ReaderSource(r io.Reader) Source {
	return readerSource{r: r}
}

type readerSource struct{ r io.Reader }

func (s readerSource) Open(context.Context) (io.ReadCloser, error) {
	if rc, ok := s.r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(s.r), nil
}

// URLSource fetches an asset over HTTP. A nil Client means
// http.DefaultClient.
type URLSource struct {
	URL    string
	Client *http.Client
}

// Open implements Source. Non-2xx responses are errors.
func (u URLSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, err
	}
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("anim: fetch %s: %s", u.URL, resp.Status)
	}
	return resp.Body, nil
}

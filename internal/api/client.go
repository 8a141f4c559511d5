package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// RemoteError is a non-2xx answer from a pokerd server.
type RemoteError struct {
	URL        string
	StatusCode int
	Body       ErrorBody
}

func (e *RemoteError) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("http %s: %d %s: %s", e.URL, e.StatusCode, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("http %s: %d", e.URL, e.StatusCode)
}

// PostJSON sends body as JSON and decodes the response into out, which may
// be nil.
func PostJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req, out)
}

// GetJSON fetches url and decodes the JSON response into out.
func GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return do(req, out)
}

func do(req *http.Request, out any) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		remote := &RemoteError{URL: req.URL.String(), StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = json.Unmarshal(data, &remote.Body)
		return remote
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

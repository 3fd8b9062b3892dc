package oracle

import (
	"bytes"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const maxLoggedBody = 2000

// loggingTransport logs every task API exchange at debug level. Request
// bodies carry the API key and are never logged.
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	start := time.Now()
	resp, err := next.RoundTrip(req)
	duration := time.Since(start)

	fields := log.Fields{
		"method":   req.Method,
		"url":      req.URL.String(),
		"duration": duration,
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Debug("Task API request failed")
		return nil, err
	}

	fields["status"] = resp.StatusCode
	if log.IsLevelEnabled(log.DebugLevel) && resp.Body != nil {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
		if readErr == nil {
			if len(body) > maxLoggedBody {
				body = append(body[:maxLoggedBody:maxLoggedBody], "...(truncated)"...)
			}
			fields["body"] = string(body)
		}
	}
	log.WithFields(fields).Debug("Task API response")

	return resp, nil
}

// newHTTPClient builds the client used for task API calls
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingTransport{next: http.DefaultTransport},
	}
}

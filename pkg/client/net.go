package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// HTTP aliases for readibility
type HTTPHeader map[string]string
type HTTPBody []byte

// AuthToken sets the header LibreNMS expects its API token in.
func (h HTTPHeader) AuthToken(token string) HTTPHeader {
	if token != "" {
		h["X-Auth-Token"] = token
	}
	return h
}

func (h HTTPHeader) Accept(contentType string) HTTPHeader {
	h["Accept"] = contentType
	return h
}

// TransportError is returned when a request never produced a response:
// DNS, connection, TLS or body read failures.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MakeRequest() is a wrapper function that condenses simple HTTP
// requests done to a single call. It expects a HTTP client, URL,
// HTTP method, request body, and request headers.
//
// Returns a HTTP response object, response body as byte array, and any
// error that may have occurred with making the request. Non-2xx responses
// are not treated as errors here since the API reports failures in the body.
func MakeRequest(ctx context.Context, client *http.Client, url string, httpMethod string, body HTTPBody, header HTTPHeader) (*http.Response, HTTPBody, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, httpMethod, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create new HTTP request: %w", err)
	}
	req.Header.Add("User-Agent", "librenms-inventory")
	for k, v := range header {
		req.Header.Add(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, nil, &TransportError{URL: url, Err: err}
	}
	b, err := io.ReadAll(res.Body)
	if cerr := res.Body.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("could not close response resource")
	}
	if err != nil {
		return nil, nil, &TransportError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return res, b, nil
}

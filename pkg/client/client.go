package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 30 * time.Second

type Option func(client *Client)

// The 'Client' struct is a wrapper around the default http.Client that
// carries the LibreNMS token header and TLS settings for every request.
type Client struct {
	*http.Client
	Header HTTPHeader
}

// NewClient() creates a new client. Certificates are not verified unless
// WithSecureTLS() or WithCertPool() is passed, matching how most LibreNMS
// installs are deployed with self-signed certificates.
func NewClient(opts ...Option) *Client {
	client := &Client{
		Client: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: newTransport(&tls.Config{InsecureSkipVerify: true}),
		},
		Header: HTTPHeader{},
	}
	client.Header.Accept("application/json")
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func newTransport(tlsConfig *tls.Config) *http.Transport {
	return &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: tlsConfig,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   30 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
	}
}

func WithAuthToken(token string) Option {
	return func(client *Client) {
		client.Header.AuthToken(token)
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.Timeout = timeout
		}
	}
}

// WithCertPool() enables certificate verification against certPool. A nil
// pool verifies against the system roots.
func WithCertPool(certPool *x509.CertPool) Option {
	return func(client *Client) {
		client.Transport = newTransport(&tls.Config{RootCAs: certPool})
	}
}

// WithSecureTLS() enables certificate verification, optionally trusting the
// PEM bundle at certPath in place of the system roots.
func WithSecureTLS(certPath string) Option {
	if certPath == "" {
		return WithCertPool(nil)
	}
	cacert, err := os.ReadFile(certPath)
	if err != nil {
		log.Warn().Err(err).Str("path", certPath).Msg("failed to read CA certificate, using system roots")
		return WithCertPool(nil)
	}
	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(cacert) {
		log.Warn().Str("path", certPath).Msg("no certificates found in CA file, using system roots")
		return WithCertPool(nil)
	}
	return WithCertPool(certPool)
}

// Get() performs an authenticated GET and returns the status code and body.
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	res, body, err := MakeRequest(ctx, c.Client, url, http.MethodGet, nil, c.Header)
	if err != nil {
		return 0, nil, err
	}
	log.Trace().Str("url", url).Int("status", res.StatusCode).Int("bytes", len(body)).Msg("GET")
	return res.StatusCode, body, nil
}


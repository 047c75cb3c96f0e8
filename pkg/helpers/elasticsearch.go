package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient creates an Elasticsearch client with optional basic auth.
// A nil transport uses a pooled HTTP transport with short dial and header timeouts.
func NewESClient(addrs []string, username, password string, transport http.RoundTripper) (*elasticsearch.Client, error) {
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		}
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    addrs,
		Username:     username,
		Password:     password,
		Transport:    transport,
		DisableRetry: true,
	})
}

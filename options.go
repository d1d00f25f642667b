package gfluent

import (
	"log/slog"
	"net/http"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"google.golang.org/api/option"

	"github.com/simple-dev-tools/gfluent/gftypes"
)

// WithLogger sets the structured logger used for operation logs.
// If not specified, logs are discarded.
func WithLogger(logger *slog.Logger) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithLocation sets the default BigQuery job and dataset location.
// Default is "US". The location must match the destination dataset.
func WithLocation(location string) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		if location != "" {
			c.Location = location
		}
	}
}

// WithCredentialsFile points the SDK clients at a service account JSON key
// file. If not specified, the default application credential chain is used.
func WithCredentialsFile(path string) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		c.CredentialsFile = path
	}
}

// WithCredentialsJSON provides raw service account JSON key material.
func WithCredentialsJSON(data []byte) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		c.CredentialsJSON = data
	}
}

// WithEndpoint overrides the service endpoint URL.
// This is useful for emulators or private service connect endpoints.
func WithEndpoint(endpoint string) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including timeouts and proxies.
func WithHTTPClient(client *http.Client) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithScopes overrides the OAuth scopes requested for the Sheets service.
// The Sheet client defaults to the read-only spreadsheets scope.
func WithScopes(scopes ...string) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		c.Scopes = scopes
	}
}

// WithFilesystem sets a custom filesystem implementation for local file
// operations. This allows using in-memory filesystems for testing.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithClientOptions passes raw Google API client options through to the
// underlying SDK clients, after the options derived from this configuration.
func WithClientOptions(opts ...option.ClientOption) gftypes.Option {
	return func(c *gftypes.ClientConfig) {
		c.ClientOptions = append(c.ClientOptions, opts...)
	}
}

// newClientConfig applies options over the defaults.
func newClientConfig(opts ...gftypes.Option) *gftypes.ClientConfig {
	cfg := &gftypes.ClientConfig{
		Location: gftypes.DefaultLocation,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

package storage

import (
	"strings"
)

// Config holds configuration for the storage provider.
type Config struct {
	// Driver selects the transport: s3, minio or memory.
	Driver string `mapstructure:"driver" default:"s3"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"http://localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL is used when Endpoint carries no scheme.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Region is the signing region and default bucket location.
	Region string `mapstructure:"region" default:"us-east-1"`
	// PathStyle forces endpoint/bucket/key URLs instead of virtual-hosted buckets.
	PathStyle bool `mapstructure:"path_style" default:"true"`
	// BucketIsEndpoint means Endpoint already addresses a single bucket.
	BucketIsEndpoint bool `mapstructure:"bucket_is_endpoint" default:"false"`
	// Encoding is the body codec: text or binary.
	Encoding string `mapstructure:"encoding" default:"text"`
	// LongBucketNames is the shortening policy for names over 63 characters: truncate or hash.
	LongBucketNames string `mapstructure:"long_bucket_names" default:"truncate"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PageSize caps keys per listing request. 0 uses the provider default.
	PageSize int `mapstructure:"page_size" default:"0"`
	// DeleteConcurrency caps in-flight delete requests. 0 means unlimited.
	DeleteConcurrency int `mapstructure:"delete_concurrency" default:"0"`
}

const (
	DriverS3     = "s3"
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

// Secure reports whether the endpoint uses TLS.
func (c Config) Secure() bool {
	switch {
	case strings.HasPrefix(c.Endpoint, "https://"):
		return true
	case strings.HasPrefix(c.Endpoint, "http://"):
		return false
	default:
		return c.UseSSL
	}
}

// Host returns the endpoint without its scheme.
func (c Config) Host() string {
	endpoint := strings.TrimPrefix(c.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimSuffix(endpoint, "/")
}

// URL returns the endpoint with an explicit scheme, or "" if none is set.
func (c Config) URL() string {
	if c.Host() == "" {
		return ""
	}
	if c.Secure() {
		return "https://" + c.Host()
	}
	return "http://" + c.Host()
}

// IsValidDriver checks if the configured driver is known.
func (c Config) IsValidDriver() bool {
	switch strings.ToLower(c.Driver) {
	case "", DriverS3, DriverMinio, DriverMemory:
		return true
	default:
		return false
	}
}

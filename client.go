package glacier

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/glacier"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/glacierapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/operations/jobs"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/operations/upload"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/session"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/validation"
)

// Client is a Glacier session client. It owns the registry of every upload
// submitted through it; the registry lives as long as the client.
// All methods are safe for concurrent use.
type Client struct {
	// glacierClient is the underlying AWS SDK Glacier client
	glacierClient glacierapi.GlacierAPI

	// config holds the AWS configuration
	config aws.Config

	// clientConfig holds the resolved client options
	clientConfig glaciertypes.ClientConfig

	// fs is the filesystem UploadFile reads from
	fs billy.Filesystem

	registry *session.Registry
	uploader *upload.Uploader
	jobs     *jobs.Manager

	// cancel ends the session context every upload derives from
	cancel context.CancelFunc

	// submitting counts UploadArchive calls still hashing their stream
	submitting sync.WaitGroup

	// mu protects closed and fs
	mu     sync.RWMutex
	closed bool
}

// defaultClientConfig returns the configuration applied before options.
func defaultClientConfig() glaciertypes.ClientConfig {
	return glaciertypes.ClientConfig{
		AccountID:          "-",
		MaxRetries:         3,
		Concurrency:        upload.DefaultConcurrency,
		PartSize:           upload.DefaultPartSize,
		MultipartThreshold: upload.DefaultMultipartThreshold,
	}
}

// New creates a new Glacier client with the provided options.
// It loads AWS credentials using the default credential chain unless
// WithCredentials or WithAWSConfig is given.
//
// Example:
//
//	client, err := glacier.New(
//	    glacier.WithRegion("us-west-2"),
//	    glacier.WithRetryer(glacier.NewRetryer(5, 0, 0)),
//	)
func New(opts ...glaciertypes.Option) (*Client, error) {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&clientCfg)
	}

	if err := validation.ValidatePartSize(clientCfg.PartSize); err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(clientCfg.AccessKeyID, clientCfg.SecretAccessKey, ""),
			))
		}
		cfg, err = config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if clientCfg.MaxRetries > 0 && clientCfg.Retryer == nil {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var glacierOpts []func(*glacier.Options)

	if clientCfg.Endpoint != "" {
		glacierOpts = append(glacierOpts, func(o *glacier.Options) {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		})
	}

	if clientCfg.Retryer != nil {
		retryer := clientCfg.Retryer
		glacierOpts = append(glacierOpts, func(o *glacier.Options) {
			o.Retryer = retryer
			// A non-zero value would wrap the retryer with the SDK attempt limit.
			o.RetryMaxAttempts = 0
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		httpClient := clientCfg.CustomHTTPClient
		glacierOpts = append(glacierOpts, func(o *glacier.Options) {
			o.HTTPClient = httpClient
		})
	case clientCfg.Timeout > 0:
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		glacierOpts = append(glacierOpts, func(o *glacier.Options) {
			o.HTTPClient = httpClient
		})
	}

	client := newClient(glacier.NewFromConfig(cfg, glacierOpts...), clientCfg)
	client.config = cfg
	return client, nil
}

// NewWithClient creates a new Glacier client with a custom GlacierAPI implementation.
// This is primarily used for testing with mocked clients. An invalid part
// size is replaced by the default one.
func NewWithClient(glacierClient glacierapi.GlacierAPI, opts ...glaciertypes.Option) *Client {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&clientCfg)
	}
	return newClient(glacierClient, clientCfg)
}

// newClient wires the session registry and operation handlers around api.
func newClient(api glacierapi.GlacierAPI, clientCfg glaciertypes.ClientConfig) *Client {
	if err := validation.ValidatePartSize(clientCfg.PartSize); err != nil {
		if clientCfg.Logger != nil {
			clientCfg.Logger.Warn("invalid part size, using default",
				"part_size", clientCfg.PartSize,
				"default", upload.DefaultPartSize,
				"error", err)
		}
		clientCfg.PartSize = upload.DefaultPartSize
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = osfs.New("/")
	}

	base, cancel := context.WithCancel(context.Background())
	registry := session.NewRegistry()

	return &Client{
		glacierClient: api,
		clientConfig:  clientCfg,
		fs:            filesystem,
		registry:      registry,
		uploader:      upload.New(api, registry, base, clientCfg.Logger),
		jobs:          jobs.New(api, clientCfg.AccountID, clientCfg.Logger),
		cancel:        cancel,
	}
}

// SetFilesystem sets the filesystem UploadFile reads from.
func (c *Client) SetFilesystem(filesystem billy.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

// Close ends the session. Submissions still hashing their stream are
// interrupted, pending uploads are cancelled and Close waits until every
// upload has been reconciled and its stream released. The upload history
// stays readable through Uploads. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.registry.CancelAll()
	c.cancel()
	c.submitting.Wait()
	c.uploader.Wait()
	return nil
}

// uploadConfig returns the upload settings derived from the client options.
func (c *Client) uploadConfig() *glaciertypes.UploadConfig {
	return &glaciertypes.UploadConfig{
		AccountID:          c.clientConfig.AccountID,
		PartSize:           c.clientConfig.PartSize,
		MultipartThreshold: c.clientConfig.MultipartThreshold,
		Concurrency:        c.clientConfig.Concurrency,
	}
}

// isClosed reports whether Close has been called.
func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// filesystem returns the current filesystem.
func (c *Client) filesystem() billy.Filesystem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fs
}

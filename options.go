// Package glacier provides functional options for configuring Glacier client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package glacier

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
)

// WithRegion sets the AWS region for Glacier operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.Region = region
	}
}

// WithCredentials sets static access keys instead of the default credential chain.
func WithCredentials(accessKeyID, secretAccessKey string) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
	}
}

// WithAccountID sets the account owning the vaults.
// Default is "-", the account of the credentials.
func WithAccountID(accountID string) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.AccountID = accountID
	}
}

// WithMaxRetries sets the maximum number of attempts made by the SDK retryer.
// Default is 3. It is ignored when WithRetryer is used.
func WithMaxRetries(maxRetries int) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP client timeout for individual requests.
// Default is no timeout (0). Archive transfers of large parts need generous values.
func WithTimeout(timeout time.Duration) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithEndpoint sets a custom Glacier endpoint URL.
// This is useful for local testing with service emulators.
func WithEndpoint(endpoint string) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// It takes precedence over WithTimeout.
func WithCustomHTTPClient(client *http.Client) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithRetryer replaces the SDK retryer, for example with NewRetryer.
// If retryer is nil, the default AWS SDK retry behavior is used.
func WithRetryer(retryer aws.Retryer) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.Retryer = retryer
	}
}

// WithLogger configures the client with a structured logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithFilesystem sets the filesystem UploadFile reads from.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem billy.Filesystem) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithMultipartThreshold sets the archive size from which multipart upload is used.
// Default is 128 MiB.
func WithMultipartThreshold(threshold int64) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		if threshold > 0 {
			c.MultipartThreshold = threshold
		}
	}
}

// WithPartSize sets the multipart part size. It must be 1 MiB multiplied by
// a power of two, at most 4 GiB. Default is 8 MiB.
func WithPartSize(partSize int64) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithConcurrency sets how many parts of one multipart upload are in flight.
// Default is 4.
func WithConcurrency(concurrency int) glaciertypes.Option {
	return func(c *glaciertypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithTier sets the retrieval tier of an archive retrieval job.
func WithTier(tier glaciertypes.RetrievalTier) glaciertypes.JobOption {
	return func(c *glaciertypes.JobOptionConfig) {
		c.Tier = tier
	}
}

// WithSNSTopic sets the topic notified when the job completes.
func WithSNSTopic(topicARN string) glaciertypes.JobOption {
	return func(c *glaciertypes.JobOptionConfig) {
		c.SNSTopic = topicARN
	}
}

// WithRetrievalRange restricts an archive retrieval to the inclusive byte
// range [start, end]. start must be megabyte aligned.
func WithRetrievalRange(start, end int64) glaciertypes.JobOption {
	return func(c *glaciertypes.JobOptionConfig) {
		c.RetrievalRange = &glaciertypes.ByteRange{Start: start, End: end}
	}
}

// WithCompletedOnly filters job listings by completion state.
func WithCompletedOnly(completed bool) glaciertypes.ListJobsOption {
	return func(c *glaciertypes.ListJobsOptionConfig) {
		c.Completed = &completed
	}
}

// WithStatusFilter filters job listings by status code.
func WithStatusFilter(status glaciertypes.JobStatusCode) glaciertypes.ListJobsOption {
	return func(c *glaciertypes.ListJobsOptionConfig) {
		c.StatusCode = status
	}
}

// WithPageLimit sets how many jobs are requested per page. All pages are still returned.
func WithPageLimit(limit int32) glaciertypes.ListJobsOption {
	return func(c *glaciertypes.ListJobsOptionConfig) {
		if limit > 0 {
			c.PageLimit = limit
		}
	}
}

// WithOutputRange fetches only the inclusive byte range [start, end] of the job output.
func WithOutputRange(start, end int64) glaciertypes.OutputOption {
	return func(c *glaciertypes.OutputOptionConfig) {
		c.Range = &glaciertypes.ByteRange{Start: start, End: end}
	}
}

// WithVerification checks the tree hash of the output body against the
// checksum returned by the service. A mismatch is reported by the final Read.
func WithVerification() glaciertypes.OutputOption {
	return func(c *glaciertypes.OutputOptionConfig) {
		c.Verify = true
	}
}

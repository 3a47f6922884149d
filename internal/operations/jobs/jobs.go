package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glacier"
	awstypes "github.com/aws/aws-sdk-go-v2/service/glacier/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/glacierapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/inventory"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/treehash"
)

// Job types understood by InitiateJob
const (
	jobTypeArchiveRetrieval   = "archive-retrieval"
	jobTypeInventoryRetrieval = "inventory-retrieval"
)

// Manager handles Glacier job operations.
type Manager struct {
	client    glacierapi.GlacierAPI
	accountID string
	logger    *slog.Logger
}

// New creates a new job Manager. An empty accountID selects the account of the credentials.
func New(client glacierapi.GlacierAPI, accountID string, logger *slog.Logger) *Manager {
	if accountID == "" {
		accountID = "-"
	}
	return &Manager{
		client:    client,
		accountID: accountID,
		logger:    logger,
	}
}

// List returns every job of vault, following pagination markers.
func (m *Manager) List(
	ctx context.Context,
	vault string,
	config *glaciertypes.ListJobsOptionConfig,
) ([]glaciertypes.Job, error) {
	input := &glacier.ListJobsInput{
		AccountId: aws.String(m.accountID),
		VaultName: aws.String(vault),
	}
	if config != nil {
		if config.Completed != nil {
			input.Completed = aws.String(strconv.FormatBool(*config.Completed))
		}
		if config.StatusCode != "" {
			input.Statuscode = aws.String(string(config.StatusCode))
		}
		if config.PageLimit > 0 {
			input.Limit = aws.Int32(config.PageLimit)
		}
	}

	jobs := []glaciertypes.Job{}
	for {
		output, err := m.client.ListJobs(ctx, input)
		if err != nil {
			return nil, errors.NewVaultError("listJobs", vault, errors.Classify(err, errors.ErrVaultNotFound))
		}

		for i := range output.JobList {
			jobs = append(jobs, fromDescription(&output.JobList[i]))
		}

		if aws.ToString(output.Marker) == "" {
			break
		}
		input.Marker = output.Marker
	}

	if m.logger != nil {
		m.logger.DebugContext(ctx, "listed vault jobs",
			"vault", vault,
			"count", len(jobs))
	}

	return jobs, nil
}

// Describe returns the current state of one job.
func (m *Manager) Describe(ctx context.Context, vault, jobID string) (*glaciertypes.Job, error) {
	output, err := m.client.DescribeJob(ctx, &glacier.DescribeJobInput{
		AccountId: aws.String(m.accountID),
		VaultName: aws.String(vault),
		JobId:     aws.String(jobID),
	})
	if err != nil {
		return nil, errors.NewResourceError("describeJob", vault, jobID, errors.Classify(err, errors.ErrJobNotFound))
	}

	job := fromDescription(&awstypes.GlacierJobDescription{
		Action:               output.Action,
		ArchiveId:            output.ArchiveId,
		ArchiveSizeInBytes:   output.ArchiveSizeInBytes,
		Completed:            output.Completed,
		CompletionDate:       output.CompletionDate,
		CreationDate:         output.CreationDate,
		InventorySizeInBytes: output.InventorySizeInBytes,
		JobDescription:       output.JobDescription,
		JobId:                output.JobId,
		SHA256TreeHash:       output.SHA256TreeHash,
		StatusCode:           output.StatusCode,
		StatusMessage:        output.StatusMessage,
		Tier:                 output.Tier,
	})
	return &job, nil
}

// StartArchiveRetrieval initiates a job staging archiveID for download and returns the job id.
// The archive id is not checked locally; the service rejects unknown archives.
func (m *Manager) StartArchiveRetrieval(
	ctx context.Context,
	vault, archiveID, description string,
	config *glaciertypes.JobOptionConfig,
) (string, error) {
	params := &awstypes.JobParameters{
		Type:      aws.String(jobTypeArchiveRetrieval),
		ArchiveId: aws.String(archiveID),
	}
	if err := applyJobOptions(params, description, config); err != nil {
		return "", err
	}

	jobID, err := m.initiate(ctx, vault, params)
	if err != nil {
		return "", errors.NewResourceError("initiateArchiveRetrieval", vault, archiveID, err)
	}

	if m.logger != nil {
		m.logger.InfoContext(ctx, "archive retrieval job initiated",
			"vault", vault,
			"archive_id", archiveID,
			"job_id", jobID)
	}
	return jobID, nil
}

// StartInventoryRetrieval initiates a job producing the inventory of vault in format and returns the job id.
func (m *Manager) StartInventoryRetrieval(
	ctx context.Context,
	vault string,
	format glaciertypes.InventoryFormat,
	description string,
	config *glaciertypes.JobOptionConfig,
) (string, error) {
	params := &awstypes.JobParameters{
		Type:   aws.String(jobTypeInventoryRetrieval),
		Format: aws.String(string(format)),
	}
	// Inventory jobs take neither a tier nor a byte range.
	if err := applyJobOptions(params, description, &glaciertypes.JobOptionConfig{SNSTopic: snsTopic(config)}); err != nil {
		return "", err
	}

	jobID, err := m.initiate(ctx, vault, params)
	if err != nil {
		return "", errors.NewVaultError("initiateInventoryRetrieval", vault, err)
	}

	if m.logger != nil {
		m.logger.InfoContext(ctx, "inventory retrieval job initiated",
			"vault", vault,
			"format", format,
			"job_id", jobID)
	}
	return jobID, nil
}

// Output fetches the output of a completed job. The caller must close the body.
// Returns ErrJobNotReady if the job has not finished yet.
func (m *Manager) Output(
	ctx context.Context,
	vault, jobID string,
	config *glaciertypes.OutputOptionConfig,
) (*glaciertypes.JobOutput, error) {
	input := &glacier.GetJobOutputInput{
		AccountId: aws.String(m.accountID),
		VaultName: aws.String(vault),
		JobId:     aws.String(jobID),
	}
	if config != nil && config.Range != nil {
		value, err := validation.OutputRange(config.Range.Start, config.Range.End)
		if err != nil {
			return nil, err
		}
		input.Range = aws.String(value)
	}

	output, err := m.client.GetJobOutput(ctx, input)
	if err != nil {
		classified := errors.Classify(err, errors.ErrJobNotFound)
		if m.logger != nil && !errors.IsJobNotReady(classified) {
			m.logger.ErrorContext(ctx, "failed to retrieve job output",
				"vault", vault,
				"job_id", jobID,
				"error", err)
		}
		return nil, errors.NewResourceError("getJobOutput", vault, jobID, classified)
	}

	result := &glaciertypes.JobOutput{
		Body:               output.Body,
		Checksum:           aws.ToString(output.Checksum),
		ContentRange:       aws.ToString(output.ContentRange),
		ContentType:        aws.ToString(output.ContentType),
		ArchiveDescription: aws.ToString(output.ArchiveDescription),
		Status:             output.Status,
	}

	if config != nil && config.Verify && result.Checksum != "" && result.Body != nil {
		expected, err := treehash.Parse(result.Checksum)
		if err != nil {
			_ = result.Body.Close()
			return nil, errors.NewResourceError("getJobOutput", vault, jobID, err).
				WithMessage("service returned an unreadable checksum")
		}
		result.Body = treehash.NewVerifyingReader(result.Body, expected)
	}

	return result, nil
}

// Inventory fetches and parses the output of a completed inventory retrieval job.
// The raw document is streamed into the parser and not retained.
func (m *Manager) Inventory(ctx context.Context, vault, jobID string) (*glaciertypes.Inventory, error) {
	output, err := m.Output(ctx, vault, jobID, &glaciertypes.OutputOptionConfig{Verify: true})
	if err != nil {
		return nil, err
	}
	if output.Body == nil {
		return nil, errors.NewResourceError("retrieveInventory", vault, jobID,
			fmt.Errorf("%w: empty job output", errors.ErrParse))
	}
	defer func() { _ = output.Body.Close() }()

	inv, err := inventory.Parse(output.Body, output.ContentType)
	if err != nil {
		return nil, errors.NewResourceError("retrieveInventory", vault, jobID, err)
	}

	if m.logger != nil {
		m.logger.InfoContext(ctx, "inventory retrieved",
			"vault", vault,
			"job_id", jobID,
			"archives", len(inv.ArchiveList))
	}
	return inv, nil
}

// initiate sends an InitiateJob request and returns the job id
func (m *Manager) initiate(ctx context.Context, vault string, params *awstypes.JobParameters) (string, error) {
	output, err := m.client.InitiateJob(ctx, &glacier.InitiateJobInput{
		AccountId:     aws.String(m.accountID),
		VaultName:     aws.String(vault),
		JobParameters: params,
	})
	if err != nil {
		return "", errors.Classify(err, errors.ErrVaultNotFound)
	}
	return aws.ToString(output.JobId), nil
}

// applyJobOptions copies the description and optional settings onto params
func applyJobOptions(params *awstypes.JobParameters, description string, config *glaciertypes.JobOptionConfig) error {
	if description != "" {
		params.Description = aws.String(description)
	}
	if config == nil {
		return nil
	}
	if config.Tier != "" {
		params.Tier = aws.String(string(config.Tier))
	}
	if config.SNSTopic != "" {
		params.SNSTopic = aws.String(config.SNSTopic)
	}
	if r := config.RetrievalRange; r != nil {
		value, err := validation.RetrievalRange(r.Start, r.End)
		if err != nil {
			return err
		}
		params.RetrievalByteRange = aws.String(value)
	}
	return nil
}

func snsTopic(config *glaciertypes.JobOptionConfig) string {
	if config == nil {
		return ""
	}
	return config.SNSTopic
}

// fromDescription maps a service job description onto a Job.
// Every action other than archive retrieval, Select included, is classified
// as an inventory retrieval; Action keeps the raw code.
func fromDescription(d *awstypes.GlacierJobDescription) glaciertypes.Job {
	job := glaciertypes.Job{
		ID:             aws.ToString(d.JobId),
		Description:    aws.ToString(d.JobDescription),
		StatusMessage:  aws.ToString(d.StatusMessage),
		Type:           glaciertypes.JobTypeInventoryRetrieval,
		Action:         string(d.Action),
		StatusCode:     glaciertypes.JobStatusCode(d.StatusCode),
		Completed:      d.Completed,
		ArchiveID:      aws.ToString(d.ArchiveId),
		CreationDate:   parseDate(d.CreationDate),
		CompletionDate: parseDate(d.CompletionDate),
		SizeInBytes:    aws.ToInt64(d.InventorySizeInBytes),
		TreeHash:       aws.ToString(d.SHA256TreeHash),
		Tier:           aws.ToString(d.Tier),
	}

	if d.Action == awstypes.ActionCodeArchiveRetrieval {
		job.Type = glaciertypes.JobTypeArchiveRetrieval
		job.SizeInBytes = aws.ToInt64(d.ArchiveSizeInBytes)
	}

	return job
}

// parseDate parses a service timestamp, returning the zero time when absent or malformed
func parseDate(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}
	}
	return t
}

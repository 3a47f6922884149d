// Package glacier provides unit tests for vault operations through the client.
package glacier

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glacier"
	awstypes "github.com/aws/aws-sdk-go-v2/service/glacier/types"
	"github.com/aws/smithy-go"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	glacierrors "github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/treehash"
)

func waitHandle(t *testing.T, h *UploadHandle) glaciertypes.UploadStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := h.Wait(ctx)
	require.NoError(t, err)
	return st
}

func TestClient_UploadArchive(t *testing.T) {
	data := testutil.GenerateRandomData(1024*1024+1, 11)
	digest, err := treehash.Compute(bytes.NewReader(data))
	require.NoError(t, err)

	gate := testutil.NewGate()
	mock := &testutil.MockGlacierClient{UploadArchiveFunc: testutil.GatedUploadArchive(gate, "archive-1")}

	var logs bytes.Buffer
	client := NewWithClient(mock, WithLogger(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	defer client.Close()

	stream := testutil.NewTrackingStream(data)
	handle, err := client.UploadArchive(context.Background(), "photos", stream, "holiday 2024")
	require.NoError(t, err)

	uploads := client.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, handle.ID(), uploads[0].ID)
	assert.Equal(t, glaciertypes.UploadPending, uploads[0].Status)
	assert.Empty(t, uploads[0].ArchiveID)
	assert.Equal(t, "holiday 2024", uploads[0].Description)
	assert.Equal(t, "photos", uploads[0].Vault)
	assert.Equal(t, digest.String(), uploads[0].Checksum)

	gate.Release()
	st := waitHandle(t, handle)

	assert.Equal(t, glaciertypes.UploadRanToCompletion, st.Status)
	assert.Equal(t, "archive-1", st.ArchiveID)
	assert.Equal(t, "/-/vaults/photos/archives/archive-1", st.Location)
	assert.True(t, stream.Closed())

	uploads = client.Uploads()
	assert.Equal(t, glaciertypes.UploadRanToCompletion, uploads[0].Status)
	assert.Equal(t, "archive-1", uploads[0].ArchiveID)

	require.NoError(t, client.Close())
	assert.Contains(t, logs.String(), "archive upload submitted")
	assert.Contains(t, logs.String(), "archive upload completed")
}

func TestClient_UploadArchive_Validation(t *testing.T) {
	client := NewWithClient(&testutil.MockGlacierClient{})
	defer client.Close()

	tests := []struct {
		name        string
		vault       string
		description string
		wantErr     error
	}{
		{"empty vault", "", "", glacierrors.ErrInvalidVaultName},
		{"bad vault", "my vault", "", glacierrors.ErrInvalidVaultName},
		{"non-ascii description", "photos", "été", glacierrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := testutil.NewTrackingStream([]byte("x"))
			h, err := client.UploadArchive(context.Background(), tt.vault, stream, tt.description)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, h)
			assert.True(t, stream.Closed(), "stream ownership passes to the client")
		})
	}

	_, err := client.UploadArchive(context.Background(), "photos", nil, "")
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)
	assert.Empty(t, client.Uploads())
}

func TestClient_UploadFile(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/backups/db.dump", []byte("dump contents"), 0o644))
	require.NoError(t, fs.MkdirAll("/backups/dir", 0o755))

	var body []byte
	mock := &testutil.MockGlacierClient{
		UploadArchiveFunc: func(_ context.Context, in *glacier.UploadArchiveInput, _ ...func(*glacier.Options)) (*glacier.UploadArchiveOutput, error) {
			body, _ = io.ReadAll(in.Body)
			return &glacier.UploadArchiveOutput{ArchiveId: aws.String("file-archive")}, nil
		},
	}
	client := NewWithClient(mock, WithFilesystem(fs))
	defer client.Close()

	h, err := client.UploadFile(context.Background(), "photos", "/backups/db.dump", "db")
	require.NoError(t, err)
	st := waitHandle(t, h)
	assert.Equal(t, glaciertypes.UploadRanToCompletion, st.Status)
	assert.Equal(t, "dump contents", string(body))

	_, err = client.UploadFile(context.Background(), "photos", "/backups/missing", "")
	assert.True(t, glacierrors.IsIO(err))

	_, err = client.UploadFile(context.Background(), "photos", "/backups/dir", "")
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)

	_, err = client.UploadFile(context.Background(), "photos", "", "")
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)

	assert.Len(t, client.Uploads(), 1)
}

func TestClient_CloseDuringDigest(t *testing.T) {
	client := NewWithClient(&testutil.MockGlacierClient{})
	stream := testutil.NewBlockingStream()

	errs := make(chan error, 1)
	go func() {
		_, err := client.UploadArchive(context.Background(), "photos", stream, "stalled")
		errs <- err
	}()
	<-stream.Reading()

	within := func(name string, fn func()) {
		t.Helper()
		done := make(chan struct{})
		go func() {
			defer close(done)
			fn()
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("%s blocked behind the hash pass", name)
		}
	}

	within("ListJobs", func() {
		_, err := client.ListJobs(context.Background(), "photos")
		assert.NoError(t, err)
	})

	within("Close", func() {
		assert.NoError(t, client.Close())
	})

	err := <-errs
	assert.ErrorIs(t, err, glacierrors.ErrClientClosed)
	assert.Equal(t, 1, stream.CloseCount())
	assert.Empty(t, client.Uploads())

	within("ListJobs after Close", func() {
		_, err := client.ListJobs(context.Background(), "photos")
		assert.ErrorIs(t, err, glacierrors.ErrClientClosed)
	})
}

func TestClient_CancelUpload(t *testing.T) {
	gate := testutil.NewGate()
	mock := &testutil.MockGlacierClient{UploadArchiveFunc: testutil.GatedUploadArchive(gate, "done")}
	client := NewWithClient(mock)
	defer client.Close()

	pending, err := client.UploadArchive(context.Background(), "photos", testutil.NewTrackingStream([]byte("a")), "a")
	require.NoError(t, err)
	<-gate.Entered()

	require.NoError(t, client.CancelUpload(pending.ID()))
	st := waitHandle(t, pending)
	assert.Equal(t, glaciertypes.UploadCanceled, st.Status)
	assert.ErrorIs(t, st.Err, glacierrors.ErrTransferCancelled)
	assert.Empty(t, st.ArchiveID)

	gate.Release()
	completed, err := client.UploadArchive(context.Background(), "photos", testutil.NewTrackingStream([]byte("b")), "b")
	require.NoError(t, err)
	before := waitHandle(t, completed)
	require.Equal(t, glaciertypes.UploadRanToCompletion, before.Status)

	require.NoError(t, client.CancelUpload(completed.ID()))
	after := completed.Snapshot()
	assert.Equal(t, before, after)

	err = client.CancelUpload("unknown")
	assert.ErrorIs(t, err, glacierrors.ErrUploadNotFound)

	err = client.CancelUpload("")
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)

	_, err = client.Upload("unknown")
	assert.ErrorIs(t, err, glacierrors.ErrUploadNotFound)

	got, err := client.Upload(completed.ID())
	require.NoError(t, err)
	assert.Equal(t, "done", got.ArchiveID())

	uploads := client.Uploads()
	require.Len(t, uploads, 2)
	assert.Equal(t, "a", uploads[0].Description)
	assert.Equal(t, "b", uploads[1].Description)
}

func TestClient_WaitUploads(t *testing.T) {
	gate := testutil.NewGate()
	mock := &testutil.MockGlacierClient{UploadArchiveFunc: testutil.GatedUploadArchive(gate, "x")}
	client := NewWithClient(mock)
	defer client.Close()

	for i := 0; i < 3; i++ {
		_, err := client.UploadArchive(context.Background(), "photos", testutil.NewTrackingStream([]byte{byte(i)}), "")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, client.PendingUploads())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, client.WaitUploads(ctx), context.DeadlineExceeded)

	gate.Release()
	require.NoError(t, client.WaitUploads(context.Background()))
	assert.Zero(t, client.PendingUploads())
	for _, st := range client.Uploads() {
		assert.Equal(t, glaciertypes.UploadRanToCompletion, st.Status)
	}
}

func TestClient_ListJobs(t *testing.T) {
	mock := &testutil.MockGlacierClient{
		ListJobsFunc: func(_ context.Context, in *glacier.ListJobsInput, _ ...func(*glacier.Options)) (*glacier.ListJobsOutput, error) {
			assert.Equal(t, "false", aws.ToString(in.Completed))
			return &glacier.ListJobsOutput{JobList: []awstypes.GlacierJobDescription{
				{JobId: aws.String("j1"), Action: awstypes.ActionCodeArchiveRetrieval, JobDescription: aws.String("restore")},
				{JobId: aws.String("j2"), Action: awstypes.ActionCodeInventoryRetrieval},
				{JobId: aws.String("j3"), Action: awstypes.ActionCodeSelect},
			}}, nil
		},
	}
	client := NewWithClient(mock)
	defer client.Close()

	jobs, err := client.ListJobs(context.Background(), "photos", WithCompletedOnly(false))
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, glaciertypes.JobTypeArchiveRetrieval, jobs[0].Type)
	assert.Equal(t, "restore", jobs[0].Description)
	assert.Equal(t, glaciertypes.JobTypeInventoryRetrieval, jobs[1].Type)
	assert.Equal(t, glaciertypes.JobTypeInventoryRetrieval, jobs[2].Type)
	assert.Equal(t, "Select", jobs[2].Action)

	_, err = client.ListJobs(context.Background(), "bad/vault")
	assert.ErrorIs(t, err, glacierrors.ErrInvalidVaultName)

	_, err = client.ListJobs(context.Background(), "photos", WithStatusFilter("Paused"))
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)
}

func TestClient_DescribeJob(t *testing.T) {
	mock := &testutil.MockGlacierClient{
		DescribeJobFunc: func(context.Context, *glacier.DescribeJobInput, ...func(*glacier.Options)) (*glacier.DescribeJobOutput, error) {
			return &glacier.DescribeJobOutput{
				JobId:      aws.String("j1"),
				Action:     awstypes.ActionCodeArchiveRetrieval,
				StatusCode: awstypes.StatusCodeInProgress,
			}, nil
		},
	}
	client := NewWithClient(mock)
	defer client.Close()

	job, err := client.DescribeJob(context.Background(), "photos", "j1")
	require.NoError(t, err)
	assert.Equal(t, glaciertypes.JobStatusInProgress, job.StatusCode)
	assert.False(t, job.Completed)

	_, err = client.DescribeJob(context.Background(), "photos", "")
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)
}

func TestClient_StartJobs(t *testing.T) {
	var params []*awstypes.JobParameters
	mock := &testutil.MockGlacierClient{
		InitiateJobFunc: func(_ context.Context, in *glacier.InitiateJobInput, _ ...func(*glacier.Options)) (*glacier.InitiateJobOutput, error) {
			params = append(params, in.JobParameters)
			return &glacier.InitiateJobOutput{JobId: aws.String("job-" + aws.ToString(in.JobParameters.Type))}, nil
		},
	}
	client := NewWithClient(mock)
	defer client.Close()

	jobID, err := client.StartArchiveRequestJob(context.Background(), "photos", "archive-1", "restore",
		WithTier(glaciertypes.TierExpedited), WithRetrievalRange(1024*1024, 3*1024*1024-1))
	require.NoError(t, err)
	assert.Equal(t, "job-archive-retrieval", jobID)

	jobID, err = client.StartInventoryRetrievalJob(context.Background(), "photos", glaciertypes.InventoryFormatCSV, "inventory",
		WithSNSTopic("arn:aws:sns:us-east-1:012345678901:inventory"))
	require.NoError(t, err)
	assert.Equal(t, "job-inventory-retrieval", jobID)

	require.Len(t, params, 2)
	assert.Equal(t, "Expedited", aws.ToString(params[0].Tier))
	assert.Equal(t, "1048576-3145727", aws.ToString(params[0].RetrievalByteRange))
	assert.Equal(t, "CSV", aws.ToString(params[1].Format))
	assert.Equal(t, "arn:aws:sns:us-east-1:012345678901:inventory", aws.ToString(params[1].SNSTopic))

	_, err = client.StartArchiveRequestJob(context.Background(), "photos", "", "")
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)

	_, err = client.StartArchiveRequestJob(context.Background(), "photos", "archive-1", "", WithTier("Instant"))
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)

	_, err = client.StartInventoryRetrievalJob(context.Background(), "photos", "XML", "")
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)

	assert.Len(t, params, 2, "invalid requests must not reach the service")
}

func TestClient_RetrieveJobOutput(t *testing.T) {
	notReady := true
	mock := &testutil.MockGlacierClient{
		GetJobOutputFunc: func(_ context.Context, in *glacier.GetJobOutputInput, _ ...func(*glacier.Options)) (*glacier.GetJobOutputOutput, error) {
			if notReady {
				return nil, &smithy.GenericAPIError{
					Code:    "InvalidParameterValueException",
					Message: "The job is not currently available for download: " + aws.ToString(in.JobId),
				}
			}
			assert.Equal(t, "bytes=0-3", aws.ToString(in.Range))
			return &glacier.GetJobOutputOutput{Body: io.NopCloser(strings.NewReader("data")), Status: 206}, nil
		},
	}
	client := NewWithClient(mock)
	defer client.Close()

	_, err := client.RetrieveJobOutput(context.Background(), "photos", "job-1")
	require.Error(t, err)
	assert.True(t, glacierrors.IsJobNotReady(err))
	assert.Equal(t, glacierrors.CodeJobNotReady, glacierrors.CodeOf(err))

	notReady = false
	out, err := client.RetrieveJobOutput(context.Background(), "photos", "job-1", WithOutputRange(0, 3), WithVerification())
	require.NoError(t, err)
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	_, err = client.RetrieveJobOutput(context.Background(), "photos", "job-1", WithOutputRange(5, 1))
	assert.ErrorIs(t, err, glacierrors.ErrInvalidInput)
}

func TestClient_RetrieveInventoryOutput(t *testing.T) {
	doc := testutil.NewTestDataGenerator(5).GenerateInventoryJSON("arn:aws:glacier:us-east-1:012345678901:vaults/photos", 4)
	body := string(doc)
	mock := &testutil.MockGlacierClient{
		GetJobOutputFunc: func(context.Context, *glacier.GetJobOutputInput, ...func(*glacier.Options)) (*glacier.GetJobOutputOutput, error) {
			return &glacier.GetJobOutputOutput{
				Body:        io.NopCloser(strings.NewReader(body)),
				ContentType: aws.String("application/json"),
				Status:      200,
			}, nil
		},
	}
	client := NewWithClient(mock)
	defer client.Close()

	inv, err := client.RetrieveInventoryOutput(context.Background(), "photos", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:glacier:us-east-1:012345678901:vaults/photos", inv.VaultARN)
	assert.Len(t, inv.ArchiveList, 4)

	body = `{"VaultARN": "arn", "ArchiveList": [`
	_, err = client.RetrieveInventoryOutput(context.Background(), "photos", "inv-1")
	assert.True(t, glacierrors.IsParse(err))
}

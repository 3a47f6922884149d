// Package testutil provides test data generators.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glacier/types"
)

// TestDataGenerator provides methods for generating test data.
type TestDataGenerator struct {
	rand *rand.Rand
}

// NewTestDataGenerator creates a new test data generator with a seeded random source.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateJobList generates count job descriptions alternating between
// archive and inventory retrieval.
func (g *TestDataGenerator) GenerateJobList(count int, vault string) []types.GlacierJobDescription {
	jobs := make([]types.GlacierJobDescription, count)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		created := base.Add(time.Duration(i) * time.Hour)
		job := types.GlacierJobDescription{
			JobId:          aws.String(fmt.Sprintf("job-%04d", i)),
			JobDescription: aws.String(fmt.Sprintf("job %d", i)),
			CreationDate:   aws.String(created.Format(time.RFC3339)),
			StatusCode:     types.StatusCodeInProgress,
			StatusMessage:  aws.String("In progress"),
			VaultARN:       aws.String("arn:aws:glacier:us-east-1:012345678901:vaults/" + vault),
		}
		if i%2 == 0 {
			job.Action = types.ActionCodeArchiveRetrieval
			job.ArchiveId = aws.String(fmt.Sprintf("archive-%x", g.rand.Int63()))
			job.ArchiveSizeInBytes = aws.Int64(int64(g.rand.Intn(1<<30) + 1))
		} else {
			job.Action = types.ActionCodeInventoryRetrieval
		}
		jobs[i] = job
	}

	return jobs
}

// GenerateInventoryJSON returns a Glacier-style JSON inventory listing count archives.
func (g *TestDataGenerator) GenerateInventoryJSON(vaultARN string, count int) []byte {
	out := fmt.Sprintf(`{"VaultARN":%q,"InventoryDate":"2024-03-01T10:00:00Z","ArchiveList":[`, vaultARN)
	for i := 0; i < count; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(
			`{"ArchiveId":"archive-%d","ArchiveDescription":"backup %d","CreationDate":"2024-02-%02dT08:00:00Z","Size":%d,"SHA256TreeHash":"%064x"}`,
			i, i, i%28+1, g.rand.Intn(1<<20)+1, g.rand.Int63(),
		)
	}
	out += "]}"
	return []byte(out)
}

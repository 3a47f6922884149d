package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
)

const (
	// MaxVaultNameLength is the longest vault name the service accepts
	MaxVaultNameLength = 255

	// MaxDescriptionLength is the longest archive or job description the service accepts
	MaxDescriptionLength = 1024

	// MiB is the unit every part size and retrieval range is aligned to
	MiB = 1024 * 1024

	// MaxPartSize is the largest multipart part size (4 GiB)
	MaxPartSize = 4096 * MiB
)

// ValidateVaultName validates a vault name: 1 to 255 characters drawn from
// a-z, A-Z, 0-9, '_', '-' and '.'.
// Returns ErrInvalidVaultName if the name is invalid.
func ValidateVaultName(vault string) error {
	if vault == "" {
		return errors.NewError("validateVaultName", errors.ErrInvalidVaultName).
			WithMessage("vault name cannot be empty")
	}

	if len(vault) > MaxVaultNameLength {
		return errors.NewVaultError("validateVaultName", vault, errors.ErrInvalidVaultName).
			WithMessage(fmt.Sprintf("vault name cannot exceed %d characters", MaxVaultNameLength))
	}

	for _, r := range vault {
		if !isVaultNameChar(r) {
			return errors.NewVaultError("validateVaultName", vault, errors.ErrInvalidVaultName).
				WithMessage("vault name can only contain letters, numbers, underscores, hyphens, and periods")
		}
	}

	return nil
}

// ValidateArchiveID validates a service-assigned archive identifier.
// The identifier is opaque; only emptiness and stray whitespace are rejected.
func ValidateArchiveID(archiveID string) error {
	return validateIdentifier("validateArchiveID", "archive id", archiveID)
}

// ValidateJobID validates a service-assigned job identifier.
func ValidateJobID(jobID string) error {
	return validateIdentifier("validateJobID", "job id", jobID)
}

// ValidateUploadID validates a session upload identifier.
func ValidateUploadID(uploadID string) error {
	return validateIdentifier("validateUploadID", "upload id", uploadID)
}

// ValidateDescription validates an archive or job description.
// Descriptions are optional, limited to 1024 characters of printable ASCII.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return errors.NewError("validateDescription", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("description cannot exceed %d characters", MaxDescriptionLength))
	}

	for i := 0; i < len(description); i++ {
		if c := description[i]; c < 0x20 || c > 0x7e {
			return errors.NewError("validateDescription", errors.ErrInvalidInput).
				WithMessage("description can only contain printable ASCII characters")
		}
	}

	return nil
}

// ValidatePartSize validates a multipart part size. It must be 1 MiB
// multiplied by a power of two, up to 4 GiB.
func ValidatePartSize(size int64) error {
	if size < MiB || size > MaxPartSize {
		return errors.NewError("validatePartSize", errors.ErrInvalidInput).
			WithMessage("part size must be between 1 MiB and 4 GiB")
	}

	if size%MiB != 0 {
		return errors.NewError("validatePartSize", errors.ErrInvalidInput).
			WithMessage("part size must be a multiple of 1 MiB")
	}

	if n := size / MiB; n&(n-1) != 0 {
		return errors.NewError("validatePartSize", errors.ErrInvalidInput).
			WithMessage("part size must be 1 MiB multiplied by a power of two")
	}

	return nil
}

// ValidateInventoryFormat validates an inventory output format.
func ValidateInventoryFormat(format glaciertypes.InventoryFormat) error {
	switch format {
	case glaciertypes.InventoryFormatJSON, glaciertypes.InventoryFormatCSV:
		return nil
	default:
		return errors.NewError("validateInventoryFormat", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unsupported inventory format %q", format))
	}
}

// ValidateTier validates a retrieval tier. An empty tier selects the service default.
func ValidateTier(tier glaciertypes.RetrievalTier) error {
	switch tier {
	case "", glaciertypes.TierExpedited, glaciertypes.TierStandard, glaciertypes.TierBulk:
		return nil
	default:
		return errors.NewError("validateTier", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unsupported retrieval tier %q", tier))
	}
}

// RetrievalRange formats an archive retrieval range as "start-end".
// The start must be megabyte aligned; the end is inclusive and must be the
// last byte of a megabyte or of the archive, which only the service can check.
func RetrievalRange(start, end int64) (string, error) {
	if err := validateRange("retrievalRange", start, end); err != nil {
		return "", err
	}

	if start%MiB != 0 {
		return "", errors.NewError("retrievalRange", errors.ErrInvalidInput).
			WithMessage("range start must be megabyte aligned")
	}

	return fmt.Sprintf("%d-%d", start, end), nil
}

// OutputRange formats a job output range as an HTTP "bytes=start-end" header value.
func OutputRange(start, end int64) (string, error) {
	if err := validateRange("outputRange", start, end); err != nil {
		return "", err
	}

	return fmt.Sprintf("bytes=%d-%d", start, end), nil
}

// validateRange checks that start and end describe a non-empty inclusive range
func validateRange(op string, start, end int64) error {
	if start < 0 {
		return errors.NewError(op, errors.ErrInvalidInput).
			WithMessage("range start cannot be negative")
	}

	if end < start {
		return errors.NewError(op, errors.ErrInvalidInput).
			WithMessage("range end cannot precede range start")
	}

	return nil
}

// validateIdentifier rejects empty identifiers and identifiers with whitespace or control characters
func validateIdentifier(op, what, id string) error {
	if id == "" {
		return errors.NewError(op, errors.ErrInvalidInput).
			WithMessage(what + " cannot be empty")
	}

	if strings.IndexFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return errors.NewResourceError(op, "", id, errors.ErrInvalidInput).
			WithMessage(what + " cannot contain whitespace or control characters")
	}

	return nil
}

// isVaultNameChar reports whether r may appear in a vault name
func isVaultNameChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-' || r == '.':
		return true
	default:
		return false
	}
}

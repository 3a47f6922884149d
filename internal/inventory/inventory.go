package inventory

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
)

// sniffLen is how much of the document is inspected to detect its format
const sniffLen = 3072

// CSV column names used by the service
const (
	columnArchiveID   = "ArchiveId"
	columnDescription = "ArchiveDescription"
	columnCreation    = "CreationDate"
	columnSize        = "Size"
	columnTreeHash    = "SHA256TreeHash"
)

// DetectFormat determines the format of an inventory document. The
// contentType reported by the service wins when it is conclusive; otherwise
// the leading bytes are sniffed.
func DetectFormat(head []byte, contentType string) glaciertypes.InventoryFormat {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "application/json":
			return glaciertypes.InventoryFormatJSON
		case "text/csv":
			return glaciertypes.InventoryFormatCSV
		}
	}

	mt := mimetype.Detect(head)
	switch {
	case mt.Is("application/json"):
		return glaciertypes.InventoryFormatJSON
	case mt.Is("text/csv"):
		return glaciertypes.InventoryFormatCSV
	}

	// Truncated or malformed JSON is not recognised by content sniffing.
	trimmed := strings.TrimLeft(string(head), " \t\r\n")
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return glaciertypes.InventoryFormatJSON
	}
	return glaciertypes.InventoryFormatCSV
}

// Parse reads an inventory document from r in whichever format it is in.
// Returns ErrParse if the document is not well formed.
func Parse(r io.Reader, contentType string) (*glaciertypes.Inventory, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, readError(err)
	}

	if len(strings.TrimSpace(string(head))) == 0 {
		return nil, parseError(fmt.Errorf("empty document"))
	}

	switch DetectFormat(head, contentType) {
	case glaciertypes.InventoryFormatJSON:
		return ParseJSON(br)
	default:
		return ParseCSV(br)
	}
}

// ParseJSON decodes a JSON inventory document.
func ParseJSON(r io.Reader) (*glaciertypes.Inventory, error) {
	dec := json.NewDecoder(r)

	var inv glaciertypes.Inventory
	if err := dec.Decode(&inv); err != nil {
		return nil, decodeError(err)
	}

	switch tok, err := dec.Token(); {
	case err == nil:
		return nil, parseError(fmt.Errorf("unexpected data %v after inventory document", tok))
	case err == io.EOF:
	default:
		if _, ok := err.(*json.SyntaxError); ok {
			return nil, parseError(err)
		}
		return nil, readError(err)
	}

	if inv.VaultARN == "" {
		return nil, parseError(fmt.Errorf("missing VaultARN"))
	}

	for i, a := range inv.ArchiveList {
		if a.ArchiveID == "" {
			return nil, parseError(fmt.Errorf("archive %d: missing ArchiveId", i))
		}
	}

	return &inv, nil
}

// ParseCSV decodes a CSV inventory listing. The first row must name the
// columns; ArchiveId is required, other columns are optional.
// CSV listings carry no vault header, so VaultARN and InventoryDate stay empty.
func ParseCSV(r io.Reader) (*glaciertypes.Inventory, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.IsChecksumMismatch(err) {
			return nil, readError(err)
		}
		return nil, parseError(fmt.Errorf("reading header: %w", err))
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns[columnArchiveID]; !ok {
		return nil, parseError(fmt.Errorf("missing %s column", columnArchiveID))
	}

	inv := &glaciertypes.Inventory{ArchiveList: []glaciertypes.InventoryArchive{}}
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, decodeError(err)
		}

		archive, err := parseRecord(record, columns)
		if err != nil {
			return nil, parseError(fmt.Errorf("row %d: %w", row, err))
		}
		inv.ArchiveList = append(inv.ArchiveList, archive)
	}

	return inv, nil
}

// parseRecord maps one CSV row onto an archive entry
func parseRecord(record []string, columns map[string]int) (glaciertypes.InventoryArchive, error) {
	field := func(name string) string {
		if i, ok := columns[name]; ok && i < len(record) {
			return record[i]
		}
		return ""
	}

	archive := glaciertypes.InventoryArchive{
		ArchiveID:          field(columnArchiveID),
		ArchiveDescription: field(columnDescription),
		SHA256TreeHash:     field(columnTreeHash),
	}
	if archive.ArchiveID == "" {
		return archive, fmt.Errorf("missing %s", columnArchiveID)
	}

	if v := field(columnCreation); v != "" {
		created, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return archive, fmt.Errorf("invalid %s: %w", columnCreation, err)
		}
		archive.CreationDate = created
	}

	if v := field(columnSize); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return archive, fmt.Errorf("invalid %s: %w", columnSize, err)
		}
		archive.Size = size
	}

	return archive, nil
}

// decodeError reports a decoder failure. A tree hash mismatch surfaced by the
// verifying body keeps its own sentinel instead of becoming a parse error.
func decodeError(err error) error {
	if errors.IsChecksumMismatch(err) {
		return readError(err)
	}
	return parseError(err)
}

// readError reports a failure of the underlying body
func readError(err error) error {
	if errors.IsChecksumMismatch(err) {
		return errors.NewError("parseInventory", err)
	}
	return errors.NewError("parseInventory", fmt.Errorf("%w: %w", errors.ErrIO, err))
}

func parseError(err error) error {
	return errors.NewError("parseInventory", fmt.Errorf("%w: %w", errors.ErrParse, err))
}

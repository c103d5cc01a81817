// Package extractor maps raw archive entries to normalized domain
// records. One extractor exists per section of the container (tables,
// pages, server commands); all share the same recovery contract: a
// malformed or unrecognized entry is logged, recorded as a skip, and
// never aborts the batch.
package extractor

import (
	"log/slog"
	"strings"

	"github.com/fginsight/fginsight/internal/archive"
	"github.com/fginsight/fginsight/internal/envelope"
	"github.com/fginsight/fginsight/internal/model"
)

// Section names inside the archive.
const (
	SectionTables         = "Tables"
	SectionPages          = "Pages"
	SectionMasterPages    = "MasterPages"
	SectionServerCommands = "ServerCommands"
)

// decodeEntry reads one entry and recovers the JSON object from its
// envelope.
func decodeEntry(r *archive.Reader, e archive.Entry) (map[string]interface{}, error) {
	data, err := r.ReadEntry(e)
	if err != nil {
		return nil, err
	}
	return envelope.Decode(data)
}

// recordSkip logs one skipped entry and appends it to the skip list. Skips
// are diagnostics, not failures: extraction continues with the next entry.
func recordSkip(logger *slog.Logger, skips *[]model.SkipRecord, e archive.Entry, err error) {
	logger.Warn("skipping entry", "section", e.Section, "entry", e.Path, "error", err)
	*skips = append(*skips, model.SkipRecord{
		Section: e.Section,
		Path:    e.Path,
		Reason:  err.Error(),
	})
}

// secondSegment returns the second path segment when the path has more
// than two segments: "Tables/Sales/Order.json" yields "Sales",
// "Tables/Order.json" yields "". Tables and server commands record this
// as their logical folder.
func secondSegment(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) > 2 {
		return parts[1]
	}
	return ""
}

// middleSegments joins every segment between the section and the file
// name: "Pages/crm/sub/Home.json" yields "crm/sub". Pages record this as
// their logical folder.
func middleSegments(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) > 2 {
		return strings.Join(parts[1:len(parts)-1], "/")
	}
	return ""
}

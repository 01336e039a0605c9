package render

import (
	"encoding/json"
	"io"

	"github.com/archlens/archlens/pkg/types"
)

// JSON writes the full analysis result as indented JSON. Maps serialize
// in sorted key order, so the output is canonical apart from the
// generation timestamp.
func JSON(w io.Writer, result *types.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

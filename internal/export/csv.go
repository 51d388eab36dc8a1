package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ironsheep/colony-counter-mcp/internal/batch"
)

// ResultHeader is the column layout of WriteResults.
var ResultHeader = []string{
	"filename", "count", "auto_count", "manual_added", "manual_removed",
	"image_id", "parameters", "status", "error",
}

// ColonyHeader is the column layout of WriteColonies.
var ColonyHeader = []string{
	"filename", "image_id", "colony_id", "origin", "status", "x", "y", "area",
}

// WriteResults writes one CSV row per result. Parameters are compact JSON,
// or empty when the result has none.
// Failed rows keep their filename and parameters, leave the counts empty and
// carry status "failed" with the error text.
func WriteResults(w io.Writer, results []batch.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range results {
		var params []byte
		if r.Params != nil {
			var err error
			if params, err = json.Marshal(r.Params); err != nil {
				return fmt.Errorf("failed to encode parameters for %s: %w", r.Filename, err)
			}
		}

		row := []string{r.Filename, "", "", "", "", r.ImageID, string(params), "ok", ""}
		if r.Failed {
			row[7] = "failed"
			row[8] = r.Error
		} else {
			row[1] = strconv.Itoa(r.Count)
			row[2] = strconv.Itoa(r.AutoCount)
			row[3] = strconv.Itoa(r.ManualAdded)
			row[4] = strconv.Itoa(r.ManualRemoved)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Filename, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteColonies writes one CSV row per colony across all results, removed
// colonies included. Results without colonies contribute nothing.
func WriteColonies(w io.Writer, results []batch.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ColonyHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range results {
		for _, c := range r.Colonies {
			area := ""
			if c.Area > 0 {
				area = strconv.Itoa(c.Area)
			}
			row := []string{
				r.Filename,
				r.ImageID,
				c.ID,
				string(c.Origin),
				string(c.Status),
				strconv.FormatFloat(c.Center.X, 'f', 2, 64),
				strconv.FormatFloat(c.Center.Y, 'f', 2, 64),
				area,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write colony %s of %s: %w", c.ID, r.Filename, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

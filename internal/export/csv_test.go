package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/ironsheep/colony-counter-mcp/internal/annotation"
	"github.com/ironsheep/colony-counter-mcp/internal/batch"
	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	return rows
}

func TestWriteResults(t *testing.T) {
	params := detection.Params{Threshold: 100, MinArea: 1, MaxArea: 10}
	results := []batch.Result{
		{
			ImageID:  "id-a",
			Filename: "a.png",
			Summary:  annotation.Summary{Count: 4, AutoCount: 3, ManualAdded: 2, ManualRemoved: 1},
			Params:   &params,
		},
		{
			ImageID:  "id-b",
			Filename: "b, with comma.png",
			Params:   &params,
			Failed:   true,
			Error:    "failed to load image: bad header",
		},
		{
			ImageID:  "id-c",
			Filename: "counted-by-hand.png",
			Summary:  annotation.Summary{Count: 2, ManualAdded: 2},
		},
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		t.Fatalf("WriteResults failed: %v", err)
	}
	rows := readCSV(t, buf.String())

	if len(rows) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "filename,count,auto_count,manual_added,manual_removed,image_id,parameters,status,error" {
		t.Errorf("Header: got %v", rows[0])
	}

	want := []string{"a.png", "4", "3", "2", "1", "id-a", `{"threshold":100,"min_area":1,"max_area":10}`, "ok", ""}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Errorf("row 1 column %s: got %q, want %q", ResultHeader[i], rows[1][i], want[i])
		}
	}

	failed := rows[2]
	if failed[0] != "b, with comma.png" {
		t.Errorf("filename not quoted correctly: %q", failed[0])
	}
	if failed[1] != "" || failed[7] != "failed" || !strings.Contains(failed[8], "bad header") {
		t.Errorf("failed row not flagged: %v", failed)
	}

	manual := []string{"counted-by-hand.png", "2", "0", "2", "0", "id-c", "", "ok", ""}
	for i := range manual {
		if rows[3][i] != manual[i] {
			t.Errorf("row 3 column %s: got %q, want %q", ResultHeader[i], rows[3][i], manual[i])
		}
	}
}

func TestWriteColonies(t *testing.T) {
	results := []batch.Result{
		{
			ImageID:  "id-a",
			Filename: "a.png",
			Colonies: []detection.Colony{
				{ID: "c1", Origin: detection.OriginAutomatic, Status: detection.StatusActive, Center: detection.Point{X: 2, Y: 3.5}, Area: 9},
				{ID: "c2", Origin: detection.OriginManual, Status: detection.StatusRemoved, Center: detection.Point{X: 10, Y: 11}},
			},
		},
		{Filename: "failed.png", Failed: true},
	}

	var buf bytes.Buffer
	if err := WriteColonies(&buf, results); err != nil {
		t.Fatalf("WriteColonies failed: %v", err)
	}
	rows := readCSV(t, buf.String())

	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if got := strings.Join(rows[1], ","); got != "a.png,id-a,c1,automatic,active,2.00,3.50,9" {
		t.Errorf("row 1: got %s", got)
	}
	if got := strings.Join(rows[2], ","); got != "a.png,id-a,c2,manual,removed,10.00,11.00," {
		t.Errorf("row 2: got %s", got)
	}
}

func TestWriteResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, nil); err != nil {
		t.Fatalf("WriteResults failed: %v", err)
	}
	if rows := readCSV(t, buf.String()); len(rows) != 1 {
		t.Errorf("Expected header only, got %d rows", len(rows))
	}
}

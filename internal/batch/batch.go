package batch

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/colony-counter-mcp/internal/annotation"
	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// Item is one image to process.
type Item struct {
	// ImageID identifies the image in results. Optional.
	ImageID  string
	Filename string

	// Load decodes the image. It runs on a worker, so decoding cost is
	// spread across the pool; an error marks only this item as failed.
	Load func() (image.Image, error)

	Params detection.Params
	Edits  []annotation.Edit

	// Previous is the last reconciled list for this image, used to keep
	// colony ids stable. May be nil.
	Previous []detection.Colony
}

// Result is the outcome for one item.
type Result struct {
	ImageID  string `json:"image_id,omitempty"`
	Filename string `json:"filename"`

	annotation.Summary

	// MeanArea and StdDevArea describe the active automatic colonies.
	MeanArea   float64 `json:"mean_area"`
	StdDevArea float64 `json:"stddev_area"`

	// Params is nil for an image that has never been through detection.
	Params   *detection.Params  `json:"parameters,omitempty"`
	Colonies []detection.Colony `json:"colonies,omitempty"`

	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`

	Elapsed time.Duration `json:"-"`
}

// Report is the ordered output of a batch.
type Report struct {
	Results []Result `json:"results"`

	// Total is the sum of Count over successful items.
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

// Options tunes a batch run.
type Options struct {
	// Workers bounds concurrent items. Zero or negative means GOMAXPROCS.
	Workers int

	// Tolerance is the reconciliation distance. Zero means the default.
	Tolerance float64

	// KeepColonies copies each reconciled list into its Result.
	KeepColonies bool

	Logger zerolog.Logger
}

// Run processes items on a bounded worker pool and returns one Result per
// item, in input order.
//
// Items are independent: each worker touches only its own item and its own
// result slot. A failing item, whether it returns an error or panics while
// decoding or detecting, is recorded as Failed and never affects the others.
func Run(items []Item, opts Options) Report {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger.With().Str("component", "batch").Logger()
	rec := annotation.Reconciler{Tolerance: opts.Tolerance}

	results := make([]Result, len(items))
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range items {
		i := i
		g.Go(func() error {
			results[i] = runItem(items[i], rec, opts.KeepColonies)
			if results[i].Failed {
				log.Warn().
					Int("index", i).
					Str("filename", items[i].Filename).
					Str("error", results[i].Error).
					Msg("item failed")
			} else {
				log.Debug().
					Int("index", i).
					Str("filename", items[i].Filename).
					Int("count", results[i].Count).
					Dur("elapsed", results[i].Elapsed).
					Msg("item processed")
			}
			return nil
		})
	}
	// Item errors live in the results; the group itself never fails.
	_ = g.Wait()

	report := Report{Results: results}
	for _, r := range results {
		if r.Failed {
			report.Failed++
			continue
		}
		report.Total += r.Count
	}

	log.Info().
		Int("items", len(items)).
		Int("failed", report.Failed).
		Int("total", report.Total).
		Int("workers", workers).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")

	return report
}

// runItem processes one item, converting errors and panics into a failed
// Result.
func runItem(it Item, rec annotation.Reconciler, keep bool) (res Result) {
	p := it.Params
	res = Result{ImageID: it.ImageID, Filename: it.Filename, Params: &p}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Failed = true
			res.Error = fmt.Sprintf("panic: %v", r)
		}
		res.Elapsed = time.Since(start)
	}()

	colonies, err := Process(it, rec)
	if err != nil {
		res.Failed = true
		res.Error = err.Error()
		return res
	}

	res.Summary = annotation.Summarize(colonies)
	res.MeanArea, res.StdDevArea = areaStats(colonies)
	if keep {
		res.Colonies = colonies
	}
	return res
}

// Process loads, detects and reconciles one item.
func Process(it Item, rec annotation.Reconciler) ([]detection.Colony, error) {
	if it.Load == nil {
		return nil, fmt.Errorf("no image source")
	}
	img, err := it.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	set, err := detection.Detect(img, it.Params)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	return rec.Reconcile(set, it.Edits, it.Previous), nil
}

// areaStats returns the mean and sample standard deviation of the areas of
// active automatic colonies. Both are zero for an empty list.
func areaStats(colonies []detection.Colony) (mean, std float64) {
	var areas []float64
	for _, c := range colonies {
		if c.Active() && c.Origin == detection.OriginAutomatic {
			areas = append(areas, float64(c.Area))
		}
	}
	switch len(areas) {
	case 0:
		return 0, 0
	case 1:
		return areas[0], 0
	}
	return stat.MeanStdDev(areas, nil)
}

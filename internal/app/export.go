package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"trade-surveillance/internal/detector"
	"trade-surveillance/internal/storage"
	"trade-surveillance/internal/timewin"
)

// exportBucket is the aggregation granularity for exported violation counts.
const exportBucket = time.Hour

// severityBucket counts violations by severity within one time bucket.
type severityBucket struct {
	Bucket   time.Time
	Total    int
	Low      int
	Medium   int
	High     int
	Critical int
}

// Export renders persisted violation history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * exportBucket)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	records, err := store.ListViolationsBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Msg("no violations found for export window")
		return nil
	}

	buckets := bucketViolations(records)
	downsampled := downsampleBuckets(buckets, opts.MaxPoints)
	a.Logger.Info().
		Int("violations", len(records)).
		Int("buckets", len(buckets)).
		Int("exported", len(downsampled)).
		Msg("exporting violation history")

	if opts.CSVPath != "" {
		if err := writeBucketsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if len(downsampled) < 2 {
			a.Logger.Warn().Msg("not enough buckets to chart; skipping PNG")
			return nil
		}
		if err := writeBucketsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func bucketViolations(records []storage.ViolationRecord) []severityBucket {
	byBucket := make(map[time.Time]*severityBucket)
	for _, record := range records {
		key := timewin.BucketFloor(record.AnchoredAt.UTC(), exportBucket)
		bucket, ok := byBucket[key]
		if !ok {
			bucket = &severityBucket{Bucket: key}
			byBucket[key] = bucket
		}
		bucket.Total++
		switch detector.Severity(record.Severity) {
		case detector.SeverityLow:
			bucket.Low++
		case detector.SeverityMedium:
			bucket.Medium++
		case detector.SeverityHigh:
			bucket.High++
		case detector.SeverityCritical:
			bucket.Critical++
		}
	}

	buckets := make([]severityBucket, 0, len(byBucket))
	for _, bucket := range byBucket {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Bucket.Before(buckets[j].Bucket)
	})
	return buckets
}

func downsampleBuckets(buckets []severityBucket, max int) []severityBucket {
	if max <= 0 || len(buckets) <= max {
		return buckets
	}

	result := make([]severityBucket, 0, max)
	step := float64(len(buckets)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(buckets) {
			idx = len(buckets) - 1
		}
		result = append(result, buckets[idx])
	}
	return result
}

func writeBucketsCSV(path string, buckets []severityBucket) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"bucket_ts", "total", "low", "medium", "high", "critical"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, bucket := range buckets {
		record := []string{
			bucket.Bucket.Format(time.RFC3339),
			strconv.Itoa(bucket.Total),
			strconv.Itoa(bucket.Low),
			strconv.Itoa(bucket.Medium),
			strconv.Itoa(bucket.High),
			strconv.Itoa(bucket.Critical),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeBucketsPNG(path string, buckets []severityBucket) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(buckets))
	total := make([]float64, len(buckets))
	high := make([]float64, len(buckets))
	critical := make([]float64, len(buckets))

	for i, bucket := range buckets {
		x[i] = bucket.Bucket
		total[i] = float64(bucket.Total)
		high[i] = float64(bucket.High)
		critical[i] = float64(bucket.Critical)
	}

	countFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Violations per hour",
			ValueFormatter: countFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total",
				XValues: x,
				YValues: total,
			},
			chart.TimeSeries{
				Name:    "High",
				XValues: x,
				YValues: high,
			},
			chart.TimeSeries{
				Name:    "Critical",
				XValues: x,
				YValues: critical,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

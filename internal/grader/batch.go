package grader

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/store"
)

// BatchSummary aggregates the outcome of grading a directory.
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	MeanScore float64       `json:"mean_score"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Batch grades every notebook under dir. Concurrency of 1 grades
// sequentially, which is the default since a single local inference server
// serializes anyway. Failures become error records; the batch never stops
// early. Records are persisted as they complete when st is non-nil.
func (s *Session) Batch(ctx context.Context, dir string, concurrency int, st store.Store) ([]*model.GradeRecord, BatchSummary, error) {
	start := time.Now()

	paths, err := listNotebooks(dir)
	if err != nil {
		return nil, BatchSummary{}, err
	}
	if len(paths) == 0 {
		return nil, BatchSummary{}, eris.Errorf("grader: no notebooks found under %s", dir)
	}

	if concurrency <= 0 {
		concurrency = 1
	}
	records := make([]*model.GradeRecord, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			rec := s.Grade(gctx, path)
			if st != nil {
				if err := st.SaveGrade(gctx, rec); err != nil {
					zap.L().Error("grader: save failed", zap.String("path", path), zap.Error(err))
					if rec.Error == "" {
						rec.Error = err.Error()
					}
				}
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, BatchSummary{}, eris.Wrap(err, "grader: batch")
	}

	sum := BatchSummary{Total: len(records), Elapsed: time.Since(start)}
	var scoreSum float64
	for _, rec := range records {
		if rec.Error != "" {
			sum.Failed++
			continue
		}
		sum.Succeeded++
		scoreSum += rec.FinalScorePercentage
	}
	if sum.Succeeded > 0 {
		sum.MeanScore = scoreSum / float64(sum.Succeeded)
	}

	zap.L().Info("grader: batch complete",
		zap.Int("total", sum.Total),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Float64("mean_score", sum.MeanScore),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return records, sum, nil
}

// listNotebooks returns the .ipynb files directly under dir, sorted.
// Checkpoint copies are skipped.
func listNotebooks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "grader: read dir %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ipynb") {
			continue
		}
		if strings.Contains(e.Name(), "checkpoint") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

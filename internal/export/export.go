// Package export defines the outbound port for pushing reports to
// external destinations.
package export

import (
	"context"
	"sync"

	"kasirpos/internal/report"
)

// ReportWriter writes a computed profit report somewhere outside the
// application, e.g. a spreadsheet.
type ReportWriter interface {
	WriteProfitReport(ctx context.Context, title string, buckets []report.PeriodBucket, sum report.Summary) error
}

// MemoryWriter records written reports for tests.
type MemoryWriter struct {
	mu      sync.Mutex
	Reports []WrittenReport
}

type WrittenReport struct {
	Title   string
	Buckets []report.PeriodBucket
	Summary report.Summary
}

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

func (w *MemoryWriter) WriteProfitReport(ctx context.Context, title string, buckets []report.PeriodBucket, sum report.Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Reports = append(w.Reports, WrittenReport{Title: title, Buckets: buckets, Summary: sum})
	return nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yildizm/DataSum/internal/monitor"
)

// profileWindow bounds the sampled series included in --profile output
const profileWindow = time.Hour

// writeProfile writes the collector's performance report as text
func writeProfile(w io.Writer, collector *monitor.MetricsCollector) error {
	gen := monitor.NewReportGenerator(collector)
	report := gen.GenerateReport(profileWindow)

	text, err := gen.FormatReport(report, monitor.ReportFormatText)
	if err != nil {
		return fmt.Errorf("failed to format profile: %w", err)
	}
	_, err = fmt.Fprintf(w, "\n%s\n", text)
	return err
}

// startSampling samples runtime metrics for long-running commands until
// the returned stop function is called
func startSampling(ctx context.Context, a *app) func() {
	if err := a.collector.Start(ctx); err != nil {
		a.log.Warn("failed to start monitoring: %v", err)
		return func() {}
	}
	return func() {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("error stopping monitor: %v", err)
		}
	}
}

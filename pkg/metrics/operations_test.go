package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOperationMetricsExportsOutcomesAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOperationMetrics(reg)

	m.Observe("close_task", "", 120*time.Millisecond)
	m.Observe("close_task", "INSUFFICIENT_STOCK", 80*time.Millisecond)
	m.Observe("close_task", "INSUFFICIENT_STOCK", 10*time.Millisecond)
	m.IncStockBelowMinimum("soap")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "hotelops_operation_total", map[string]string{"operation": "close_task", "outcome": "ok"}); err != nil {
		t.Fatalf("fetch ok: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ok=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "hotelops_operation_total", map[string]string{"operation": "close_task", "outcome": "INSUFFICIENT_STOCK"}); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 2 {
		t.Fatalf("expected failures=2, got %f", got)
	}

	if got, err := fetchHistogramCount(mfs, "hotelops_operation_duration_seconds", map[string]string{"operation": "close_task"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got != 3 {
		t.Fatalf("expected 3 samples, got %d", got)
	}

	if got, err := fetchCounterValue(mfs, "hotelops_stock_below_minimum_total", map[string]string{"item": "soap"}); err != nil {
		t.Fatalf("fetch stock low: %v", err)
	} else if got != 1 {
		t.Fatalf("expected stock low=1, got %f", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *OperationMetrics
	m.Observe("check_in", "", time.Second)
	m.IncStockBelowMinimum("towel")

	NewOperationMetrics(nil).Observe("check_in", "CONFLICT", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	metric, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func fetchHistogramCount(mfs []*dto.MetricFamily, name string, labels map[string]string) (uint64, error) {
	metric, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleCount(), nil
}

func findMetric(mfs []*dto.MetricFamily, name string, labels map[string]string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric, nil
			}
		}
		return nil, fmt.Errorf("metric %q missing labels %v", name, labels)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

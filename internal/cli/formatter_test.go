package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/ossobv/dutree/internal/dutree"
)

func TestHuman(t *testing.T) {
	tests := []struct {
		value int64
		want  string
	}{
		{0, "0   B"},
		{999, "999   B"},
		{1000, "1.0 K"},
		{1024, "1.0 K"},
		{1048576, "1.0 M"},
		{1073741824, "1.0 G"},
		{1099511627776, "1.0 T"},
		{2053393838542, "1.9 T"},
	}

	for _, tt := range tests {
		if got := human(tt.value); got != tt.want {
			t.Errorf("human(%d) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestBuildReport(t *testing.T) {
	root := dutree.NewDirectory("/srv")
	root.AddChildren(
		dutree.NewFile("/srv/big", 1000000, 1000448),
		dutree.NewLeftovers("/srv", 9, 4608),
	)

	report := BuildReport(root, dutree.Apparent, 1, time.Second)

	if report.Root != "/srv" {
		t.Errorf("Root = %q, want %q", report.Root, "/srv")
	}
	if report.Metric != "apparent" {
		t.Errorf("Metric = %q, want %q", report.Metric, "apparent")
	}
	if report.AppTotal != 1000009 || report.UseTotal != 1005056 {
		t.Errorf("totals = %d/%d, want 1000009/1005056", report.AppTotal, report.UseTotal)
	}
	if report.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", report.Warnings)
	}

	want := []Leaf{
		{Name: "/srv/big", AppSize: 1000000, UseSize: 1000448},
		{Name: "/srv/*", AppSize: 9, UseSize: 4608},
	}

	if len(report.Leaves) != len(want) {
		t.Fatalf("Leaves = %v, want %v", report.Leaves, want)
	}

	for i := range want {
		if report.Leaves[i] != want[i] {
			t.Errorf("leaf %d = %+v, want %+v", i, report.Leaves[i], want[i])
		}
	}
}

func TestPrintTable(t *testing.T) {
	report := &Report{
		Root:     "/",
		Metric:   "apparent",
		AppTotal: 1000009,
		UseTotal: 1005056,
		Leaves: []Leaf{
			{Name: "/big", AppSize: 1000000, UseSize: 1000448},
			{Name: "/*", AppSize: 9, UseSize: 4608},
		},
	}

	var buf bytes.Buffer
	if err := PrintTable(report, &buf); err != nil {
		t.Fatalf("PrintTable: %v", err)
	}

	want := " 976.6 K  /big\n" +
		"   9   B  /*\n" +
		"   -----\n" +
		" 976.6 K  TOTAL (1000009)\n"

	if got := buf.String(); got != want {
		t.Errorf("table output:\n%q\nwant:\n%q", got, want)
	}
}

func TestPrintTableUsedMetric(t *testing.T) {
	report := &Report{
		Root:     "/",
		Metric:   "used",
		AppTotal: 1000009,
		UseTotal: 1005056,
		Leaves: []Leaf{
			{Name: "/big", AppSize: 1000000, UseSize: 1000448},
		},
	}

	var buf bytes.Buffer
	if err := PrintTable(report, &buf); err != nil {
		t.Fatalf("PrintTable: %v", err)
	}

	want := " 977.0 K  /big\n" +
		"   -----\n" +
		" 981.5 K  TOTAL (1005056)\n"

	if got := buf.String(); got != want {
		t.Errorf("table output:\n%q\nwant:\n%q", got, want)
	}
}

func TestPrintJSON(t *testing.T) {
	report := &Report{Root: "/srv", Metric: "apparent"}

	var buf bytes.Buffer
	if err := PrintJSON(report, &buf); err != nil {
		t.Fatalf("PrintJSON: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	if decoded.Root != "/srv" || decoded.Metric != "apparent" {
		t.Errorf("decoded = %+v, want root/metric preserved", decoded)
	}
}

func TestPrintSummaryTable(t *testing.T) {
	var buf bytes.Buffer

	summary := dutree.Summary{AppSize: 1000, UseSize: 4096, Entries: 2}
	if err := PrintSummaryTable(summary, &buf); err != nil {
		t.Fatalf("PrintSummaryTable: %v", err)
	}

	want := "   1.0 K  apparent (1000)\n" +
		"   4.0 K  used (4096)\n"

	if got := buf.String(); got != want {
		t.Errorf("summary output:\n%q\nwant:\n%q", got, want)
	}
}

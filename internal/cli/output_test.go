package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/smartplay-booking/internal/booking"
	"github.com/pfrederiksen/smartplay-booking/internal/logger"
)

func sampleOutput() *OutputResult {
	start := time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)
	result := booking.NewResult(start, booking.DefaultParams())
	result.TargetDate = "2026-10-24"
	result.SelectedSlots = []string{"19:00 - 20:00", "20:00 - 21:00"}
	result.SlotIndices = []int{10, 11}
	result.Succeed(start.Add(42 * time.Second))

	return &OutputResult{
		Result:  result,
		Summary: "🎯 SmartPLAY 预订结果摘要",
		Metrics: logger.Snapshot{Counters: map[string]int64{"booking.success": 1}},
	}
}

func TestWriteOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleOutput(), FormatText); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	if got, want := buf.String(), "🎯 SmartPLAY 预订结果摘要\n\n"; got != want {
		t.Errorf("WriteOutput() = %q, want %q", got, want)
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleOutput(), FormatJSON); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	var decoded struct {
		Result struct {
			Status      string `json:"status"`
			TargetDate  string `json:"target_date"`
			SlotIndices []int  `json:"slot_indices"`
		} `json:"result"`
		Summary string `json:"summary"`
		Metrics struct {
			Counters map[string]int64 `json:"counters"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if decoded.Result.Status != "success" {
		t.Errorf("status = %q, want success", decoded.Result.Status)
	}
	if decoded.Result.TargetDate != "2026-10-24" {
		t.Errorf("target_date = %q, want 2026-10-24", decoded.Result.TargetDate)
	}
	if len(decoded.Result.SlotIndices) != 2 || decoded.Result.SlotIndices[0] != 10 {
		t.Errorf("slot_indices = %v, want [10 11]", decoded.Result.SlotIndices)
	}
	if !strings.Contains(decoded.Summary, "预订结果摘要") {
		t.Errorf("summary = %q", decoded.Summary)
	}
	if decoded.Metrics.Counters["booking.success"] != 1 {
		t.Errorf("metrics counters = %v", decoded.Metrics.Counters)
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleOutput(), OutputFormat("yaml")); err == nil {
		t.Error("WriteOutput() expected error for unknown format")
	}
}

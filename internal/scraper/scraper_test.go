package scraper

import (
	"os"
	"strings"
	"testing"

	"github.com/pfrederiksen/smartplay-booking/internal/slot"
)

func loadFixture(t *testing.T) *Page {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/facility_slots.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	page, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return page
}

func TestParse(t *testing.T) {
	page := loadFixture(t)

	if len(page.Slots) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(page.Slots))
	}
	if page.Preselected != 1 {
		t.Errorf("expected 1 preselected tag, got %d", page.Preselected)
	}
	for i, s := range page.Slots {
		if s.Index != i {
			t.Errorf("slot %d has Index %d", i, s.Index)
		}
	}
}

func TestInspector(t *testing.T) {
	page := loadFixture(t)
	in := Inspector{}

	tests := []struct {
		index     int
		wantDesc  string
		available bool
		checkable bool
	}{
		{0, "07:00 - 08:00", true, true},
		{2, "09:00 - 10:00", false, false},
		{3, "10:00 - 11:00", true, false},
		{6, "13:00 - 14:00", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.wantDesc, func(t *testing.T) {
			s := page.Slots[tt.index]
			text := in.Text(s)

			if got := slot.Describe(text); got != tt.wantDesc {
				t.Errorf("Describe() = %q, want %q", got, tt.wantDesc)
			}
			if got := slot.Available(text); got != tt.available {
				t.Errorf("Available() = %v, want %v", got, tt.available)
			}
			if got := in.Checkable(s); got != tt.checkable {
				t.Errorf("Checkable() = %v, want %v", got, tt.checkable)
			}
		})
	}
}

func TestSelectOnParsedPage(t *testing.T) {
	page := loadFixture(t)

	tests := []struct {
		name      string
		start     int
		window    int
		wantFound bool
		wantFirst int
	}{
		{"morning pair", 0, 4, true, 0},
		{"skips unchecked pair", 2, 5, true, 5},
		{"unchecked only", 3, 2, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slot.Select[Slot](page.Slots, Inspector{}, tt.start, tt.window)
			if got.Found != tt.wantFound {
				t.Fatalf("Found = %v, want %v", got.Found, tt.wantFound)
			}
			if got.Found && got.First != tt.wantFirst {
				t.Errorf("First = %d, want %d", got.First, tt.wantFirst)
			}
		})
	}
}

func TestParse_NoItems(t *testing.T) {
	page, err := ParseString("<html><body><p>载入中</p></body></html>")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(page.Slots) != 0 {
		t.Errorf("expected no slots, got %d", len(page.Slots))
	}
}

func TestInspector_ZeroSlot(t *testing.T) {
	in := Inspector{}
	if in.Text(Slot{}) != "" {
		t.Error("zero Slot should have empty text")
	}
	if in.Checkable(Slot{}) {
		t.Error("zero Slot should not be checkable")
	}
}

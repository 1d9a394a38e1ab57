package stockmon

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	in := `{
    "code": "600000",
    "cost": 5.5,
    "position": 100,
    "showInTitle": true,
    "alias": "pufa",
    "target": 7.2
}`

	var r Record
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Code != "600000" {
		t.Errorf("Code = %q, want 600000", r.Code)
	}
	if r.Cost == nil || r.Cost.String() != "5.5" {
		t.Errorf("Cost = %v, want 5.5", r.Cost)
	}
	if r.Position == nil || *r.Position != 100 {
		t.Errorf("Position = %v, want 100", r.Position)
	}
	if r.ShowInTitle == nil || !*r.ShowInTitle {
		t.Errorf("ShowInTitle = %v, want true", r.ShowInTitle)
	}
	if len(r.Extra) != 2 {
		t.Errorf("Extra has %d keys, want 2: %v", len(r.Extra), r.Extra)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// cost must come back as a JSON number, not a quoted string, and
	// unknown fields must survive.
	for _, want := range []string{`"cost":5.5`, `"alias":"pufa"`, `"target":7.2`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Marshal output %s does not contain %s", out, want)
		}
	}
}

func TestRecordShowInTitleAsString(t *testing.T) {
	// Hand-edited files sometimes carry the flag as a string.
	tests := []struct {
		in   string
		want *bool
	}{
		{`{"code":"A","showInTitle":"true"}`, boolPtr(true)},
		{`{"code":"A","showInTitle":""}`, boolPtr(false)},
		{`{"code":"A"}`, nil},
	}
	for _, tt := range tests {
		var r Record
		if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		switch {
		case tt.want == nil && r.ShowInTitle != nil:
			t.Errorf("Unmarshal(%s): ShowInTitle = %v, want unset", tt.in, *r.ShowInTitle)
		case tt.want != nil && (r.ShowInTitle == nil || *r.ShowInTitle != *tt.want):
			t.Errorf("Unmarshal(%s): ShowInTitle = %v, want %v", tt.in, r.ShowInTitle, *tt.want)
		}
	}
}

func boolPtr(b bool) *bool { return &b }

func TestRecordWeight(t *testing.T) {
	full := record("A", "5", 100)
	if got := full.Weight(); !got.Equal(d(t, "500")) {
		t.Errorf("Weight() = %s, want 500", got)
	}

	var bare Record
	if got := bare.Weight(); !got.IsZero() {
		t.Errorf("Weight() of bare record = %s, want 0", got)
	}

	costOnly := Record{Code: "B", Cost: full.Cost}
	if got := costOnly.Weight(); !got.IsZero() {
		t.Errorf("Weight() with missing position = %s, want 0", got)
	}
}

func TestLoadWatchlistMissing(t *testing.T) {
	_, err := LoadWatchlist(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("LoadWatchlist on a missing file: err = %v, want fs.ErrNotExist", err)
	}
}

func TestSaveAndLoadWatchlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "StockMonitor.json")
	records := []Record{
		record("600000", "5.5", 100),
		{Code: "000001", Extra: map[string]json.RawMessage{"alias": json.RawMessage(`"pa"`)}},
	}

	if err := SaveWatchlist(path, records); err != nil {
		t.Fatalf("SaveWatchlist: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Error("saved file does not end with a newline")
	}

	got, err := LoadWatchlist(path)
	if err != nil {
		t.Fatalf("LoadWatchlist: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d records, want 2", len(got))
	}
	if got[0].Code != "600000" || got[1].Code != "000001" {
		t.Errorf("codes = %q, %q; want 600000, 000001", got[0].Code, got[1].Code)
	}
	if string(got[1].Extra["alias"]) != `"pa"` {
		t.Errorf("Extra[alias] = %s, want kept", got[1].Extra["alias"])
	}
}

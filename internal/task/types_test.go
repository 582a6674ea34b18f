package task

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStatusClosedSet(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Errorf("Status %d should be valid", int(s))
		}
	}
	if Status(3).Valid() {
		t.Error("Status 3 should be invalid")
	}
	if Status(-1).Valid() {
		t.Error("Status -1 should be invalid")
	}
}

func TestStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s Status
	if err := json.Unmarshal([]byte("1"), &s); err != nil {
		t.Fatalf("Unmarshal(1) failed: %v", err)
	}
	if s != StatusInProgress {
		t.Errorf("got %v, want in-progress", s)
	}
	if err := json.Unmarshal([]byte("7"), &s); err == nil {
		t.Error("Unmarshal(7) should fail")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"in-progress", StatusInProgress, false},
		{"doing", StatusInProgress, false},
		{"done", StatusCompleted, false},
		{"completed", StatusCompleted, false},
		{"archived", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	if !FilterAll.All() {
		t.Error("FilterAll should match all")
	}
	f := FilterBy(StatusCompleted)
	if f.All() {
		t.Error("FilterBy should not match all")
	}
	if f.String() != "completed" {
		t.Errorf("got %q, want completed", f.String())
	}
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Year != 2024 || d.Month != time.March || d.Day != 5 {
		t.Errorf("got %v", d)
	}
	if d.String() != "2024-03-05" {
		t.Errorf("String() = %q", d.String())
	}

	// Full ISO timestamps are truncated to the date
	d2, err := ParseDate("2024-03-05T14:30:00Z")
	if err != nil {
		t.Fatalf("ParseDate(timestamp) failed: %v", err)
	}
	if d2 != d {
		t.Errorf("timestamp parse: got %v, want %v", d2, d)
	}

	if _, err := ParseDate("tomorrow"); err == nil {
		t.Error("ParseDate(tomorrow) should fail")
	}
}

func TestTaskDueDateJSON(t *testing.T) {
	raw := `{"id":7,"title":"pay rent","status":0,"dueDate":"2024-03-05","createdAt":"2024-03-01T09:00:00Z","updatedAt":"2024-03-01T09:00:00Z"}`
	var tk Task
	if err := json.Unmarshal([]byte(raw), &tk); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if tk.DueDate == nil || tk.DueDate.String() != "2024-03-05" {
		t.Errorf("DueDate = %v", tk.DueDate)
	}

	out, err := json.Marshal(tk)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"dueDate":"2024-03-05"`) {
		t.Errorf("marshaled: %s", out)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateRequest
		wantField string
	}{
		{"valid", CreateRequest{Title: "write report"}, ""},
		{"empty title", CreateRequest{}, "title"},
		{"title at limit", CreateRequest{Title: strings.Repeat("a", 100)}, ""},
		{"title too long", CreateRequest{Title: strings.Repeat("a", 101)}, "title"},
		{"description too long", CreateRequest{Title: "x", Description: strings.Repeat("d", 501)}, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if err.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", err.Field, tt.wantField)
			}
		})
	}
}

func TestUpdateFrom(t *testing.T) {
	due := NewDate(2024, time.June, 1)
	tk := Task{ID: 3, Title: "t", Description: "d", Status: StatusPending, DueDate: &due}
	req := UpdateFrom(tk)
	if req.Title != "t" || req.Description != "d" || req.Status != StatusPending || req.DueDate != &due {
		t.Errorf("UpdateFrom mismatch: %+v", req)
	}

	// Quick status change keeps everything else
	req.Status = StatusCompleted
	if req.Title != "t" || req.DueDate != &due {
		t.Error("status swap should not touch other fields")
	}
}

package domain

import "testing"

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"DRAFT", "PENDING", "APPROVED", "REJECTED"} {
		s, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if string(s) != raw {
			t.Fatalf("parse %q returned %q", raw, s)
		}
	}

	s, err := ParseStatus("")
	if err != nil || s != "" {
		t.Fatalf("empty status should parse as unspecified, got %q err=%v", s, err)
	}

	if _, err := ParseStatus("pending"); err == nil {
		t.Fatal("expected error for lowercase status")
	}
	if _, err := ParseStatus("ARCHIVED"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestInitialStatusDefaultsToPending(t *testing.T) {
	if got := InitialStatus(""); got != StatusPending {
		t.Fatalf("unspecified create should be PENDING, got %s", got)
	}
	if got := InitialStatus(StatusPending); got != StatusPending {
		t.Fatalf("explicit submit should be PENDING, got %s", got)
	}
	if got := InitialStatus(StatusDraft); got != StatusDraft {
		t.Fatalf("explicit draft should be DRAFT, got %s", got)
	}
}

func TestNextStatusOnEdit(t *testing.T) {
	cases := []struct {
		name      string
		current   Status
		requested Status
		want      Status
	}{
		{name: "draft stays draft without explicit status", current: StatusDraft, requested: "", want: StatusDraft},
		{name: "pending stays pending", current: StatusPending, requested: "", want: StatusPending},
		{name: "editing approved resubmits for review", current: StatusApproved, requested: "", want: StatusPending},
		{name: "editing rejected resubmits for review", current: StatusRejected, requested: "", want: StatusPending},
		{name: "explicit draft wins over approved", current: StatusApproved, requested: StatusDraft, want: StatusDraft},
		{name: "explicit draft wins over pending", current: StatusPending, requested: StatusDraft, want: StatusDraft},
		{name: "explicit submit publishes a draft", current: StatusDraft, requested: StatusPending, want: StatusPending},
		{name: "explicit submit on rejected", current: StatusRejected, requested: StatusPending, want: StatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextStatusOnEdit(tc.current, tc.requested); got != tc.want {
				t.Fatalf("NextStatusOnEdit(%s, %q) = %s, want %s", tc.current, tc.requested, got, tc.want)
			}
		})
	}
}

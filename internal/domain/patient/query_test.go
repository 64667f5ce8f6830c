package patient

import (
	"strings"
	"testing"
)

func TestListParams_OrderClause(t *testing.T) {
	tests := []struct {
		sort string
		want string
	}{
		{"id", "id ASC"},
		{"-id", "id DESC"},
		{"last_name", "last_name ASC, id ASC"},
		{"-birth_date", "birth_date DESC, id DESC"},
		{"cedula", "cedula ASC, id ASC"},
		{"", "created_at DESC, id DESC"},
		{"-created_at", "created_at DESC, id DESC"},
		{"deleted_at", "created_at DESC, id DESC"},              // not sortable
		{"id; DROP TABLE patients", "created_at DESC, id DESC"}, // injection attempt
	}

	// Every non-id clause must break ties on id so pages are stable.
	for key, clause := range sortable {
		if key == "id" || key == "-id" {
			continue
		}
		if !strings.Contains(clause, ", id ") {
			t.Errorf("clause for %q lacks an id tiebreak: %q", key, clause)
		}
	}

	for _, tt := range tests {
		p := ListParams{Sort: tt.sort}
		if got := p.OrderClause(); got != tt.want {
			t.Errorf("OrderClause(%q) = %q, want %q", tt.sort, got, tt.want)
		}
	}
}

func TestListParams_Normalize(t *testing.T) {
	p := ListParams{}
	p.normalize()
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}

	p = ListParams{Limit: 10000, Offset: -3}
	p.normalize()
	if p.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

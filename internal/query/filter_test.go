package query

import (
	"testing"
	"time"

	"github.com/boardkit/ticket-board/internal/domain"
)

func sampleTickets() []domain.Ticket {
	assignee := "dana"
	return []domain.Ticket{
		{
			ID:           "t1",
			TicketCode:   "TCK-001",
			Title:        "Onboarding call",
			Description:  "Kick off with new customer",
			Status:       domain.TicketStatusScheduled,
			Priority:     domain.TicketPriorityMedium,
			Category:     "onboarding",
			CustomerName: "Acme Corp",
			CSAMName:     "Jordan",
			Tags:         []string{"call"},
		},
		{
			ID:           "t2",
			TicketCode:   "TCK-002",
			Title:        "Billing escalation",
			Description:  "Payment gateway issue blocking invoices",
			Status:       domain.TicketStatusCompleted,
			Priority:     domain.TicketPriorityUrgent,
			Category:     "billing",
			CustomerName: "Globex",
			CSAMName:     "Sam",
			AssignedTo:   &assignee,
			Tags:         []string{"billing", "escalation"},
		},
		{
			ID:           "t3",
			TicketCode:   "TCK-003",
			Title:        "Renewal prep",
			Description:  "Prepare renewal deck",
			Status:       domain.TicketStatusCompleted,
			Priority:     domain.TicketPriorityHigh,
			Category:     "renewal",
			CustomerName: "Acme Corp",
			CSAMName:     "Jordan",
			Tags:         []string{"renewal"},
		},
	}
}

func TestApplyNoFilterReturnsCopy(t *testing.T) {
	tickets := sampleTickets()
	result := Apply(tickets, Filter{})

	if len(result) != len(tickets) {
		t.Fatalf("expected %d tickets, got %d", len(tickets), len(result))
	}

	result[0].Title = "mutated"
	result[1].Tags[0] = "mutated"
	if tickets[0].Title == "mutated" {
		t.Error("result aliases the source collection")
	}
	if tickets[1].Tags[0] == "mutated" {
		t.Error("result aliases the source tag slices")
	}
}

func TestApplyStatusSubset(t *testing.T) {
	result := Apply(sampleTickets(), Filter{
		Statuses: []domain.TicketStatus{domain.TicketStatusCompleted},
	})

	if len(result) != 2 {
		t.Fatalf("expected 2 completed tickets, got %d", len(result))
	}
	if result[0].ID != "t2" || result[1].ID != "t3" {
		t.Errorf("filter did not preserve source order: got %s, %s", result[0].ID, result[1].ID)
	}
}

func TestApplySearchCaseInsensitive(t *testing.T) {
	result := Apply(sampleTickets(), Filter{Search: "payment"})

	if len(result) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result))
	}
	if result[0].ID != "t2" {
		t.Errorf("expected ticket t2, got %s", result[0].ID)
	}
}

func TestApplySearchMatchesCodeAndNames(t *testing.T) {
	cases := []struct {
		term string
		want string
	}{
		{"tck-003", "t3"},
		{"globex", "t2"},
		{"jordan", "t1"},
	}
	for _, tc := range cases {
		result := Apply(sampleTickets(), Filter{Search: tc.term})
		if len(result) == 0 || result[0].ID != tc.want {
			t.Errorf("search %q: expected first match %s, got %v", tc.term, tc.want, result)
		}
	}
}

func TestApplyCombinesWithAnd(t *testing.T) {
	result := Apply(sampleTickets(), Filter{
		Statuses:     []domain.TicketStatus{domain.TicketStatusCompleted},
		CustomerName: "acme",
	})

	if len(result) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(result))
	}
	if result[0].ID != "t3" {
		t.Errorf("expected t3, got %s", result[0].ID)
	}
}

func TestApplyAssignedTo(t *testing.T) {
	result := Apply(sampleTickets(), Filter{AssignedTo: "dana"})
	if len(result) != 1 || result[0].ID != "t2" {
		t.Fatalf("expected only t2 assigned to dana, got %v", result)
	}

	result = Apply(sampleTickets(), Filter{AssignedTo: "nobody"})
	if len(result) != 0 {
		t.Fatalf("expected no matches for unknown assignee, got %d", len(result))
	}
}

func TestApplyTagsAnyOf(t *testing.T) {
	result := Apply(sampleTickets(), Filter{Tags: []string{"renewal", "escalation"}})
	if len(result) != 2 {
		t.Fatalf("expected 2 tickets with either tag, got %d", len(result))
	}
}

func TestApplyCSAMAndCategory(t *testing.T) {
	result := Apply(sampleTickets(), Filter{
		CSAMNames:  []string{"Jordan"},
		Categories: []string{"renewal"},
	})
	if len(result) != 1 || result[0].ID != "t3" {
		t.Fatalf("expected t3, got %v", result)
	}
}

func TestFilterEmpty(t *testing.T) {
	if !(Filter{}).Empty() {
		t.Error("zero filter should be empty")
	}
	if (Filter{Search: "x"}).Empty() {
		t.Error("filter with search term should not be empty")
	}
	if !(Filter{Search: "   "}).Empty() {
		t.Error("whitespace-only search should count as empty")
	}
}

func TestMatchesDeadlineIndependent(t *testing.T) {
	// Matching must not consult the clock; only Derive does.
	ticket := sampleTickets()[0]
	ticket.Deadline = time.Now().Add(-48 * time.Hour)
	if !Matches(ticket, Filter{Statuses: []domain.TicketStatus{domain.TicketStatusScheduled}}) {
		t.Error("past deadline should not affect filter matching")
	}
}

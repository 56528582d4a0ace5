package query

import (
	"strings"

	"github.com/boardkit/ticket-board/internal/domain"
)

// Filter captures board search parameters. Empty fields impose no
// constraint; populated fields are combined with AND.
type Filter struct {
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Categories   []string
	CSAMNames    []string
	CustomerName string
	AssignedTo   string
	Tags         []string
	Search       string
}

// Empty reports whether the filter imposes no constraints.
func (f Filter) Empty() bool {
	return len(f.Statuses) == 0 &&
		len(f.Priorities) == 0 &&
		len(f.Categories) == 0 &&
		len(f.CSAMNames) == 0 &&
		f.CustomerName == "" &&
		f.AssignedTo == "" &&
		len(f.Tags) == 0 &&
		strings.TrimSpace(f.Search) == ""
}

// Apply returns the tickets matching the filter, preserving the relative
// order of the source. The result is always a fresh slice of copies so
// callers cannot mutate the source collection through it.
func Apply(tickets []domain.Ticket, filter Filter) []domain.Ticket {
	result := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if Matches(tickets[i], filter) {
			result = append(result, tickets[i].Clone())
		}
	}
	return result
}

// Matches reports whether a single ticket satisfies every populated
// filter field.
func Matches(t domain.Ticket, f Filter) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, t.Category) {
		return false
	}
	if len(f.CSAMNames) > 0 && !containsString(f.CSAMNames, t.CSAMName) {
		return false
	}
	if f.CustomerName != "" && !containsFold(t.CustomerName, f.CustomerName) {
		return false
	}
	if f.AssignedTo != "" {
		if t.AssignedTo == nil || *t.AssignedTo != f.AssignedTo {
			return false
		}
	}
	if len(f.Tags) > 0 && !anyTag(t.Tags, f.Tags) {
		return false
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		haystack := strings.Join([]string{
			t.Title, t.Description, t.TicketCode, t.CustomerName, t.CSAMName,
		}, " ")
		if !containsFold(haystack, term) {
			return false
		}
	}
	return true
}

func containsStatus(set []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsPriority(set []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}
	return false
}

func containsString(set []string, s string) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyTag(ticketTags, wanted []string) bool {
	for _, tag := range wanted {
		if containsString(ticketTags, tag) {
			return true
		}
	}
	return false
}

package query

import (
	"math"
	"time"

	"github.com/boardkit/ticket-board/internal/domain"
)

// Metadata holds presentation values derived from a ticket snapshot.
// Derivation is pure: the same snapshot and clock always produce the
// same result, and the ticket is never mutated.
type Metadata struct {
	IsOverdue            bool
	DaysUntilDeadline    int
	CompletionPercentage int
	CompletedSubtasks    int
	TotalSubtasks        int
}

// Derive computes presentation metadata for a ticket at the given time.
func Derive(t domain.Ticket, now time.Time) Metadata {
	completed := 0
	for _, sub := range t.Subtasks {
		if sub.Completed {
			completed++
		}
	}

	percentage := 0
	if len(t.Subtasks) > 0 {
		percentage = int(math.Round(float64(completed) / float64(len(t.Subtasks)) * 100))
	}

	return Metadata{
		IsOverdue:            now.After(t.Deadline) && t.Status != domain.TicketStatusCompleted,
		DaysUntilDeadline:    daysBetween(now, t.Deadline),
		CompletionPercentage: percentage,
		CompletedSubtasks:    completed,
		TotalSubtasks:        len(t.Subtasks),
	}
}

// daysBetween returns the signed whole-day count from now to deadline,
// negative once the deadline has passed.
func daysBetween(now, deadline time.Time) int {
	diff := deadline.Sub(now).Hours() / 24
	if diff < 0 {
		return -int(math.Ceil(-diff))
	}
	return int(math.Ceil(diff))
}

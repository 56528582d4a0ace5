package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/boardkit/ticket-board/internal/domain"
	"github.com/boardkit/ticket-board/internal/store"
)

var boardColumns = []domain.TicketStatus{
	domain.TicketStatusScheduled,
	domain.TicketStatusInProgress,
	domain.TicketStatusActive,
	domain.TicketStatusOverdue,
	domain.TicketStatusCompleted,
}

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	overdueColor = color.New(color.FgRed)
	doneColor    = color.New(color.FgGreen)
	urgentColor  = color.New(color.FgYellow, color.Bold)
	dimColor     = color.New(color.Faint)
)

func renderList(w io.Writer, s *store.Store, tickets []domain.Ticket) {
	if len(tickets) == 0 {
		dimColor.Fprintln(w, "no tickets")
		return
	}
	for _, t := range tickets {
		fmt.Fprintln(w, ticketLine(s, t))
	}
	dimColor.Fprintf(w, "%d ticket(s)\n", len(tickets))
}

func renderBoard(w io.Writer, s *store.Store) {
	tickets := s.Tickets()
	for _, column := range boardColumns {
		var members []domain.Ticket
		for _, t := range tickets {
			if t.Status == column {
				members = append(members, t)
			}
		}
		headerColor.Fprintf(w, "%s (%d)\n", column, len(members))
		if len(members) == 0 {
			dimColor.Fprintln(w, "  -")
			continue
		}
		for _, t := range members {
			fmt.Fprintf(w, "  %s\n", ticketLine(s, t))
		}
	}
}

func renderTicket(w io.Writer, s *store.Store, t domain.Ticket) {
	headerColor.Fprintf(w, "%s  %s\n", t.TicketCode, t.Title)
	if t.Description != "" {
		fmt.Fprintln(w, t.Description)
	}
	fmt.Fprintf(w, "id:        %s\n", t.ID)
	fmt.Fprintf(w, "status:    %s\n", t.Status)
	fmt.Fprintf(w, "priority:  %s\n", t.Priority)
	if t.Category != "" {
		fmt.Fprintf(w, "category:  %s\n", t.Category)
	}
	if t.CustomerName != "" {
		fmt.Fprintf(w, "customer:  %s (%s)\n", t.CustomerName, t.CustomerType)
	}
	if t.CSAMName != "" {
		fmt.Fprintf(w, "csam:      %s\n", t.CSAMName)
	}
	if t.AssignedTo != nil {
		fmt.Fprintf(w, "assignee:  %s\n", *t.AssignedTo)
	}
	fmt.Fprintf(w, "deadline:  %s\n", t.Deadline.Format(time.RFC3339))
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "tags:      %s\n", strings.Join(t.Tags, ", "))
	}

	if meta, ok := s.Metadata(t.ID); ok {
		if meta.IsOverdue {
			overdueColor.Fprintf(w, "overdue by %d day(s)\n", -meta.DaysUntilDeadline)
		} else if t.Status != domain.TicketStatusCompleted {
			fmt.Fprintf(w, "due in:    %d day(s)\n", meta.DaysUntilDeadline)
		}
		if meta.TotalSubtasks > 0 {
			fmt.Fprintf(w, "subtasks:  %d/%d (%d%%)\n",
				meta.CompletedSubtasks, meta.TotalSubtasks, meta.CompletionPercentage)
		}
	}
	for _, sub := range t.Subtasks {
		mark := "[ ]"
		if sub.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, sub.Text)
	}
	if len(t.Notes) > 0 {
		fmt.Fprintln(w, "notes:")
		for _, note := range t.Notes {
			fmt.Fprintf(w, "  - %s\n", note)
		}
	}
}

// ticketLine renders the one-line summary used by list and board views.
func ticketLine(s *store.Store, t domain.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-9s %s", t.TicketCode, t.Priority, t.Title)
	if t.AssignedTo != nil {
		fmt.Fprintf(&b, " @%s", *t.AssignedTo)
	}
	line := b.String()

	meta, ok := s.Metadata(t.ID)
	switch {
	case t.Status == domain.TicketStatusCompleted:
		return doneColor.Sprint(line)
	case ok && meta.IsOverdue:
		return overdueColor.Sprintf("%s (overdue %dd)", line, -meta.DaysUntilDeadline)
	case t.Priority == domain.TicketPriorityUrgent:
		return urgentColor.Sprint(line)
	default:
		return line
	}
}

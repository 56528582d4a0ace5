package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boardkit/ticket-board/internal/auth"
	"github.com/boardkit/ticket-board/internal/client"
	"github.com/boardkit/ticket-board/internal/config"
	"github.com/boardkit/ticket-board/internal/domain"
	"github.com/boardkit/ticket-board/internal/query"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore(cmd)
		if err != nil {
			return err
		}
		filter := query.Filter{
			CustomerName: listCustomer,
			AssignedTo:   listAssignee,
			Search:       listSearch,
			Tags:         listTags,
		}
		for _, status := range listStatuses {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(status)))
		}
		for _, priority := range listPriorities {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.ToUpper(priority)))
		}
		tickets := s.Tickets()
		if !filter.Empty() {
			tickets = s.Filtered(filter)
		}
		renderList(cmd.OutOrStdout(), s, tickets)
		return nil
	},
}

var (
	listStatuses   []string
	listPriorities []string
	listTags       []string
	listCustomer   string
	listAssignee   string
	listSearch     string
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Render the Kanban board",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore(cmd)
		if err != nil {
			return err
		}
		renderBoard(cmd.OutOrStdout(), s)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <ticket-id>",
	Short: "Show one ticket with derived details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore(cmd)
		if err != nil {
			return err
		}
		ticket, ok := s.Find(args[0])
		if !ok {
			return fmt.Errorf("no ticket with id %s", args[0])
		}
		renderTicket(cmd.OutOrStdout(), s, ticket)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new ticket",
	Example: `  ticketctl create --code TCK-101 --title "Renewal prep" \
    --priority HIGH --deadline 2026-09-15 --tag renewal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore(cmd)
		if err != nil {
			return err
		}
		deadline, err := parseDeadline(createDeadline)
		if err != nil {
			return err
		}
		input := client.TicketCreate{
			TicketCode:   createCode,
			Title:        createTitle,
			Description:  createDescription,
			Priority:     domain.TicketPriority(strings.ToUpper(createPriority)),
			Category:     createCategory,
			CustomerName: createCustomer,
			CSAMName:     createCSAM,
			Deadline:     deadline,
			Tags:         createTags,
		}
		ticket := s.Create(cmd.Context(), input)
		if ticket == nil {
			return fmt.Errorf("create failed: %s", s.LastError())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", ticket.TicketCode, ticket.ID)
		return nil
	},
}

var (
	createCode        string
	createTitle       string
	createDescription string
	createPriority    string
	createCategory    string
	createCustomer    string
	createCSAM        string
	createDeadline    string
	createTags        []string
)

var moveCmd = &cobra.Command{
	Use:   "move <ticket-id> <status>",
	Short: "Move a ticket to another board column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore(cmd)
		if err != nil {
			return err
		}
		status := domain.TicketStatus(strings.ToUpper(args[1]))
		ticket := s.SetStatus(cmd.Context(), args[0], status)
		if ticket == nil {
			return fmt.Errorf("move failed: %s", s.LastError())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", ticket.TicketCode, ticket.Status)
		return nil
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <ticket-id> [assignee]",
	Short: "Assign a ticket, or clear the assignee when omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore(cmd)
		if err != nil {
			return err
		}
		var ticket *domain.Ticket
		if len(args) == 2 {
			ticket = s.Assign(cmd.Context(), args[0], args[1])
		} else {
			ticket = s.Unassign(cmd.Context(), args[0])
		}
		if ticket == nil {
			return fmt.Errorf("assign failed: %s", s.LastError())
		}
		if ticket.AssignedTo != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s assigned to %s\n", ticket.TicketCode, *ticket.AssignedTo)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s unassigned\n", ticket.TicketCode)
		}
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <ticket-id>",
	Short: "Mark a ticket completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore(cmd)
		if err != nil {
			return err
		}
		ticket := s.SetStatus(cmd.Context(), args[0], domain.TicketStatusCompleted)
		if ticket == nil {
			return fmt.Errorf("completion failed: %s", s.LastError())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s completed\n", ticket.TicketCode)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Produce a bcrypt hash for AUTH_ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(args[0], cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <ticket-id>",
	Short: "Delete a ticket permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore(cmd)
		if err != nil {
			return err
		}
		if !s.Remove(cmd.Context(), args[0]) {
			return fmt.Errorf("delete failed: %s", s.LastError())
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted")
		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by status (repeatable)")
	listCmd.Flags().StringSliceVar(&listPriorities, "priority", nil, "Filter by priority (repeatable)")
	listCmd.Flags().StringSliceVar(&listTags, "tag", nil, "Filter by tag (any match)")
	listCmd.Flags().StringVar(&listCustomer, "customer", "", "Filter by customer name substring")
	listCmd.Flags().StringVar(&listAssignee, "assignee", "", "Filter by exact assignee")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Free-text search")

	createCmd.Flags().StringVar(&createCode, "code", "", "Ticket code (required)")
	createCmd.Flags().StringVar(&createTitle, "title", "", "Ticket title (required)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Ticket description")
	createCmd.Flags().StringVarP(&createPriority, "priority", "p", "", "Priority (LOW, MEDIUM, HIGH, URGENT)")
	createCmd.Flags().StringVar(&createCategory, "category", "", "Category label")
	createCmd.Flags().StringVar(&createCustomer, "customer", "", "Customer name")
	createCmd.Flags().StringVar(&createCSAM, "csam", "", "CSAM name")
	createCmd.Flags().StringVar(&createDeadline, "deadline", "", "Deadline (RFC3339 or YYYY-MM-DD, default +7d)")
	createCmd.Flags().StringSliceVar(&createTags, "tag", nil, "Tags (repeatable)")
}

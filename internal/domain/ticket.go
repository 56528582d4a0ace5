package domain

import "time"

// TicketStatus enumerates board columns a ticket can occupy.
type TicketStatus string

const (
	TicketStatusScheduled  TicketStatus = "SCHEDULED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusActive     TicketStatus = "ACTIVE"
	TicketStatusOverdue    TicketStatus = "OVERDUE"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// CustomerType enumerates customer segments.
type CustomerType string

const (
	CustomerTypeEnterprise CustomerType = "ENTERPRISE"
	CustomerTypeMidMarket  CustomerType = "MID_MARKET"
	CustomerTypeSMB        CustomerType = "SMB"
)

// Subtask is a checklist item owned by exactly one ticket.
// CompletedAt is set iff Completed is true.
type Subtask struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Ticket is the aggregate for trackable work items.
//
// CompletedAt records the most recent completion. It is stamped when the
// ticket enters COMPLETED and deliberately retained when the ticket is
// reopened into another status; only a later re-completion overwrites it.
type Ticket struct {
	ID           string         `json:"id"`
	TicketCode   string         `json:"ticket_code"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Status       TicketStatus   `json:"status"`
	Priority     TicketPriority `json:"priority"`
	Category     string         `json:"category"`
	CustomerName string         `json:"customer_name"`
	CustomerType CustomerType   `json:"customer_type"`
	CSAMName     string         `json:"csam_name"`
	AssignedTo   *string        `json:"assigned_to"`
	Deadline     time.Time      `json:"deadline"`
	Tags         []string       `json:"tags"`
	Notes        []string       `json:"notes"`
	Subtasks     []Subtask      `json:"subtasks"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ValidStatus reports whether s is a recognized board status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusScheduled, TicketStatusInProgress, TicketStatusActive,
		TicketStatusOverdue, TicketStatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a recognized priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// ValidCustomerType reports whether c is a recognized customer segment.
func ValidCustomerType(c CustomerType) bool {
	switch c {
	case CustomerTypeEnterprise, CustomerTypeMidMarket, CustomerTypeSMB:
		return true
	}
	return false
}

// Clone returns a deep copy so callers can hand tickets across API
// boundaries without aliasing the stored slices.
func (t Ticket) Clone() Ticket {
	out := t
	if t.Tags != nil {
		out.Tags = make([]string, len(t.Tags))
		copy(out.Tags, t.Tags)
	}
	if t.Notes != nil {
		out.Notes = make([]string, len(t.Notes))
		copy(out.Notes, t.Notes)
	}
	if t.Subtasks != nil {
		out.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(out.Subtasks, t.Subtasks)
	}
	if t.AssignedTo != nil {
		assignee := *t.AssignedTo
		out.AssignedTo = &assignee
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}

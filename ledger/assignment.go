/*
assignment.go - Assignment engine: binding leads to agents

PURPOSE:
  Assignment binds a Lead to an Agent and reconciles the agent's outstanding
  LeadOrders. One assigned lead satisfies one unit of demand on the order
  whose date matches the lead's creation date.

KEY RULES:
  - Assignment unconditionally resets the payment cycle: due = leadCost,
    paid = 0, regardless of prior state. Reassigning a partially-paid lead
    starts a fresh cycle.
  - Reconciliation is secondary: the assignment itself always proceeds even
    when no order matches. Order counts floor at zero.
  - Bulk assignment groups creation dates and drains matching orders in
    collection order, skipping exhausted ones.

SEE ALSO:
  - ledger.go: decrementOrdersLocked, the shared draining walk
  - payment.go: what happens to the due this creates
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SINGLE ASSIGNMENT
// =============================================================================

// AssignLead binds the lead to the agent and resets its payment cycle.
// When createdAt is supplied, one unit is deducted from the first of the
// agent's orders matching the lead's creation date with count > 0. Unknown
// lead ids are a no-op.
func (l *Ledger) AssignLead(leadID LeadID, agentID AgentID, createdAt *time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.leads {
		if l.leads[i].ID == leadID {
			l.assignLocked(i, agentID)
			break
		}
	}

	if createdAt != nil {
		l.decrementOrdersLocked(agentID, DateOf(*createdAt), 1)
	}
}

// assignLocked performs the per-lead reset. Caller holds the write lock.
func (l *Ledger) assignLocked(i int, agentID AgentID) {
	l.leads[i].AssignedAgentID = agentID
	l.leads[i].Due = l.leads[i].LeadCost
	l.leads[i].Paid = decimal.Zero
}

// =============================================================================
// BULK ASSIGNMENT
// =============================================================================

// LeadAssignmentItem pairs a lead with its creation date for bulk
// reconciliation. A nil CreatedAt assigns the lead without consuming any
// order demand.
type LeadAssignmentItem struct {
	LeadID    LeadID
	CreatedAt *time.Time
}

// BulkAssignLeads assigns every listed lead to the agent, then reconciles
// orders per creation date: dates are grouped and each group drains the
// agent's matching orders in collection order until the group's count or
// the orders are exhausted. An empty items slice is a no-op.
func (l *Ledger) BulkAssignLeads(items []LeadAssignmentItem, agentID AgentID) {
	if len(items) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	wanted := make(map[LeadID]bool, len(items))
	for _, item := range items {
		wanted[item.LeadID] = true
	}
	for i := range l.leads {
		if wanted[l.leads[i].ID] {
			l.assignLocked(i, agentID)
		}
	}

	// Count assigned leads per creation date, preserving first-seen order
	// so reconciliation is deterministic.
	dateCounts := make(map[string]int)
	var dateOrder []string
	for _, item := range items {
		if item.CreatedAt == nil {
			continue
		}
		key := DateOf(*item.CreatedAt)
		if dateCounts[key] == 0 {
			dateOrder = append(dateOrder, key)
		}
		dateCounts[key]++
	}

	for _, date := range dateOrder {
		l.decrementOrdersLocked(agentID, date, dateCounts[date])
	}
}

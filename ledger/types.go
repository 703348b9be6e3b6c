/*
Package ledger is the core of the lead management engine.

PURPOSE:
  This package owns the authoritative in-memory collections of the system:
  Leads, Agents, Admins, and LeadOrders, plus the default lead cost setting.
  Every mutation goes through the Ledger so that the money invariants
  (paid + due reconciles against lead cost) and the assignment side effects
  (order decrementing, deletion cascades) live in exactly one place.

KEY CONCEPTS IN THIS FILE (types.go):
  - Lead: a sales prospect with cost, status, and optional agent assignment
  - Agent/Admin: directory entries; agents accrue cost, payments, and dues
  - LeadOrder: an agent's open request for N leads on a given date
  - LeadStatus: closed enum of pipeline states

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money, never float64
  2. Type Safety: distinct ID types prevent mixing agent/lead/order ids
  3. Id lookups: cross-entity references are by id only; a dangling
     AssignedAgentID is legal (the agent may have been deleted) and callers
     must resolve it with an explicit lookup

SEE ALSO:
  - ledger.go: The Ledger store and its mutation operations
  - assignment.go: Assignment engine and order reconciliation
  - payment.go: Payment waterfall allocation
*/
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AgentID string
type AdminID string
type LeadID string
type OrderID string

// =============================================================================
// LEAD STATUS - Closed pipeline enum
// =============================================================================

type LeadStatus string

const (
	StatusNew        LeadStatus = "New"
	StatusContacted  LeadStatus = "Contacted"
	StatusInterested LeadStatus = "Interested"
	StatusFollowUp   LeadStatus = "Follow-up"
	StatusConverted  LeadStatus = "Converted"
	StatusLost       LeadStatus = "Lost"
)

// AllLeadStatuses lists every status in pipeline order. Reporting iterates
// this slice so per-status counts always come out in a stable order.
var AllLeadStatuses = []LeadStatus{
	StatusNew,
	StatusContacted,
	StatusInterested,
	StatusFollowUp,
	StatusConverted,
	StatusLost,
}

// ValidStatus reports whether s is a member of the closed enum.
func ValidStatus(s LeadStatus) bool {
	for _, known := range AllLeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// =============================================================================
// ENTITIES
// =============================================================================

// Agent is a salesperson leads are assigned to.
type Agent struct {
	ID    AgentID
	Name  string
	Email string
}

// Admin is a directory entry with no cascading relationships.
type Admin struct {
	ID    AdminID
	Name  string
	Email string
}

// Lead is a sales prospect record.
//
// INVARIANTS:
//   - Paid and Due are meaningful only while AssignedAgentID is set;
//     unassigned leads carry zero for both.
//   - Assignment resets Due to LeadCost and Paid to zero: reassigning a
//     partially-paid lead restarts its payment cycle.
//   - ConvertedAmount is set only while Status is Converted. Any transition
//     away from Converted clears it.
type Lead struct {
	ID              LeadID
	Name            string
	Phone           string
	Source          string
	LeadCost        decimal.Decimal
	Status          LeadStatus
	AssignedAgentID AgentID // empty = unassigned
	Paid            decimal.Decimal
	Due             decimal.Decimal
	Address         string
	Age             string
	Gender          string
	CreatedAt       time.Time // zero = unknown; date filters pass it through

	// ConvertedAmount is the revenue recorded when the lead converted.
	// nil = absent.
	ConvertedAmount *decimal.Decimal
}

// Assigned reports whether the lead currently belongs to an agent.
func (l Lead) Assigned() bool { return l.AssignedAgentID != "" }

// LeadOrder is an agent's outstanding request for Count leads on Date.
// Count is decremented as matching leads are assigned, never below zero.
// An order with Count == 0 is inert but kept; only the agent-deletion
// cascade removes orders.
type LeadOrder struct {
	ID      OrderID
	AgentID AgentID
	Date    string // YYYY-MM-DD
	Count   int
}

// =============================================================================
// HELPERS
// =============================================================================

// NormalizeDate truncates an ISO timestamp to its YYYY-MM-DD component.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// DateOf formats a time as the YYYY-MM-DD key used by LeadOrder matching.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// clampAmount floors a money amount at zero. The engine clamps numeric
// inputs rather than rejecting them.
func clampAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

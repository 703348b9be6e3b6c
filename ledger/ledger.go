/*
ledger.go - The Ledger store: single source of truth for all collections

PURPOSE:
  The Ledger owns the Leads, Agents, Admins, and LeadOrders collections and
  the default lead cost setting. All mutation logic and invariants live
  here; consumers read snapshots and render.

CRITICAL INVARIANTS:
  1. ITERATION ORDER: Collections keep insertion order. Payment waterfall
     allocation and order reconciliation walk collections in that order, so
     order is a behavioral contract, not an implementation detail.
  2. SILENT NO-OP: Mutations against unknown ids do nothing. No error is
     raised for a missing entity; callers rely on "mutate if found, else
     no-op" semantics.
  3. CLAMPING: Money and count inputs are floored at zero instead of being
     rejected. Validation of required fields is the calling layer's job.
  4. ATOMIC CASCADES: DeleteAgent unassigns leads and drops orders under one
     lock; readers never observe a partial cascade.

CONCURRENCY:
  The underlying model is a single dashboard's state, but the store is
  guarded by an RWMutex so it can sit behind a concurrent HTTP surface.
  Reads return copies; callers cannot alias internal slices.

SEE ALSO:
  - types.go: Entity definitions and invariants
  - assignment.go: AssignLead / BulkAssignLeads
  - payment.go: MarkAgentPaid
*/
package ledger

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ID GENERATION AND CLOCK
// =============================================================================

// IDSource produces unique id suffixes. Injectable so tests can pin ids.
type IDSource func() string

// Clock supplies lead creation timestamps. Injectable for tests.
type Clock func() time.Time

func uuidSource() string { return uuid.NewString() }

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is the authoritative in-memory store.
type Ledger struct {
	mu sync.RWMutex

	agents []Agent
	admins []Admin
	leads  []Lead
	orders []LeadOrder

	defaultLeadCost decimal.Decimal

	newID IDSource
	now   Clock
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDSource replaces the uuid-backed id generator.
func WithIDSource(src IDSource) Option { return func(l *Ledger) { l.newID = src } }

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(l *Ledger) { l.now = c } }

// WithDefaultLeadCost sets the initial default lead cost.
func WithDefaultLeadCost(cost decimal.Decimal) Option {
	return func(l *Ledger) { l.defaultLeadCost = clampAmount(cost) }
}

// New creates an empty Ledger. The default lead cost starts at 12.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		defaultLeadCost: decimal.NewFromInt(12),
		newID:           uuidSource,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// =============================================================================
// READS - Snapshot accessors
// =============================================================================

// Agents returns a copy of the agent collection in insertion order.
func (l *Ledger) Agents() []Agent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Agent(nil), l.agents...)
}

// Admins returns a copy of the admin collection in insertion order.
func (l *Ledger) Admins() []Admin {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Admin(nil), l.admins...)
}

// Leads returns a copy of the lead collection in insertion order.
func (l *Ledger) Leads() []Lead {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Lead(nil), l.leads...)
}

// LeadOrders returns a copy of the order collection in insertion order.
func (l *Ledger) LeadOrders() []LeadOrder {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]LeadOrder(nil), l.orders...)
}

// DefaultLeadCost returns the current default cost for new leads.
func (l *Ledger) DefaultLeadCost() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaultLeadCost
}

// Lead looks up a single lead by id.
func (l *Ledger) Lead(id LeadID) (Lead, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, lead := range l.leads {
		if lead.ID == id {
			return lead, true
		}
	}
	return Lead{}, false
}

// Agent looks up a single agent by id. A dangling AssignedAgentID on a lead
// resolves to (Agent{}, false); the UI renders that as "Unknown".
func (l *Ledger) Agent(id AgentID) (Agent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// =============================================================================
// DIRECTORY MUTATIONS
// =============================================================================

// AddAgent appends a new agent. Inputs are trimmed; the store does not
// reject empty fields (callers pre-validate).
func (l *Ledger) AddAgent(name, email string) Agent {
	l.mu.Lock()
	defer l.mu.Unlock()

	agent := Agent{
		ID:    AgentID("agent-" + l.newID()),
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}
	l.agents = append(l.agents, agent)
	return agent
}

// AddAdmin appends a new admin, symmetric to AddAgent.
func (l *Ledger) AddAdmin(name, email string) Admin {
	l.mu.Lock()
	defer l.mu.Unlock()

	admin := Admin{
		ID:    AdminID("admin-" + l.newID()),
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}
	l.admins = append(l.admins, admin)
	return admin
}

// DeleteAgent removes an agent and cascades: every lead assigned to it is
// unassigned with paid/due zeroed, and all of its orders are removed. The
// cascade is atomic; readers never see a half-deleted agent.
func (l *Ledger) DeleteAgent(agentID AgentID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.agents[:0]
	for _, a := range l.agents {
		if a.ID != agentID {
			kept = append(kept, a)
		}
	}
	l.agents = kept

	for i := range l.leads {
		if l.leads[i].AssignedAgentID == agentID {
			l.leads[i].AssignedAgentID = ""
			l.leads[i].Due = decimal.Zero
			l.leads[i].Paid = decimal.Zero
		}
	}

	keptOrders := l.orders[:0]
	for _, o := range l.orders {
		if o.AgentID != agentID {
			keptOrders = append(keptOrders, o)
		}
	}
	l.orders = keptOrders
}

// =============================================================================
// LEAD MUTATIONS
// =============================================================================

// NewLead carries the caller-supplied fields for AddLead.
type NewLead struct {
	Name            string
	Phone           string
	Source          string
	LeadCost        decimal.Decimal
	AssignedAgentID AgentID // optional pre-assignment
	Address         string
	Age             string
	Gender          string
}

// AddLead constructs and appends a lead. Cost is clamped at zero, status
// starts at New, and due equals cost only when the lead is pre-assigned.
func (l *Ledger) AddLead(data NewLead) Lead {
	l.mu.Lock()
	defer l.mu.Unlock()

	cost := clampAmount(data.LeadCost)
	lead := Lead{
		ID:              LeadID("lead-" + l.newID()),
		Name:            strings.TrimSpace(data.Name),
		Phone:           strings.TrimSpace(data.Phone),
		Source:          strings.TrimSpace(data.Source),
		LeadCost:        cost,
		Status:          StatusNew,
		AssignedAgentID: data.AssignedAgentID,
		Paid:            decimal.Zero,
		Due:             decimal.Zero,
		Address:         strings.TrimSpace(data.Address),
		Age:             strings.TrimSpace(data.Age),
		Gender:          strings.TrimSpace(data.Gender),
		CreatedAt:       l.now(),
	}
	if lead.Assigned() {
		lead.Due = cost
	}
	l.leads = append(l.leads, lead)
	return lead
}

// DeleteLead removes a lead. No cascade.
func (l *Ledger) DeleteLead(leadID LeadID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.leads[:0]
	for _, lead := range l.leads {
		if lead.ID != leadID {
			kept = append(kept, lead)
		}
	}
	l.leads = kept
}

// UpdateLeadPhone trims and replaces the phone number. No format validation.
func (l *Ledger) UpdateLeadPhone(leadID LeadID, phone string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.leads {
		if l.leads[i].ID == leadID {
			l.leads[i].Phone = strings.TrimSpace(phone)
			return
		}
	}
}

// UpdateLeadStatus sets the pipeline status. A transition into Converted
// records the supplied amount (clamped at zero) when one is given; any other
// status clears the converted amount unconditionally, even if the caller
// passed one. The amount is tied strictly to the Converted state.
func (l *Ledger) UpdateLeadStatus(leadID LeadID, status LeadStatus, convertedAmount *decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.leads {
		if l.leads[i].ID != leadID {
			continue
		}
		l.leads[i].Status = status
		if status == StatusConverted {
			if convertedAmount != nil {
				v := clampAmount(*convertedAmount)
				l.leads[i].ConvertedAmount = &v
			}
		} else {
			l.leads[i].ConvertedAmount = nil
		}
		return
	}
}

// UpdateLeadConvertedAmount sets the converted amount directly without
// touching status. Used for post-hoc correction.
func (l *Ledger) UpdateLeadConvertedAmount(leadID LeadID, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.leads {
		if l.leads[i].ID == leadID {
			v := clampAmount(amount)
			l.leads[i].ConvertedAmount = &v
			return
		}
	}
}

// UpdateLeadCost re-prices a lead. Cost is clamped at zero. For an assigned
// lead, due becomes cost minus paid WITHOUT flooring: a negative due signals
// overpayment after re-pricing. (Every other due computation in the engine
// floors at zero; this one deliberately does not.) Unassigned leads keep
// due at zero.
func (l *Ledger) UpdateLeadCost(leadID LeadID, cost decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	value := clampAmount(cost)
	for i := range l.leads {
		if l.leads[i].ID != leadID {
			continue
		}
		l.leads[i].LeadCost = value
		if l.leads[i].Assigned() {
			l.leads[i].Due = value.Sub(l.leads[i].Paid)
		} else {
			l.leads[i].Due = decimal.Zero
		}
		return
	}
}

// =============================================================================
// LEAD ORDERS
// =============================================================================

// AddLeadOrder records an agent's request for count leads on date. The date
// is truncated to its YYYY-MM-DD component and count is floored at zero.
func (l *Ledger) AddLeadOrder(agentID AgentID, date string, count int) LeadOrder {
	l.mu.Lock()
	defer l.mu.Unlock()

	if count < 0 {
		count = 0
	}
	order := LeadOrder{
		ID:      OrderID("order-" + l.newID()),
		AgentID: agentID,
		Date:    NormalizeDate(date),
		Count:   count,
	}
	l.orders = append(l.orders, order)
	return order
}

// DecrementLeadOrder deducts up to by units across the agent's orders for
// the given date, walking the collection in order. Counts never go below
// zero; exhausted orders are skipped. This is the explicit admin
// fulfillment path.
func (l *Ledger) DecrementLeadOrder(agentID AgentID, date string, by int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decrementOrdersLocked(agentID, NormalizeDate(date), by)
}

// DecrementLeadOrderByID deducts by units from a single order, floored at
// zero.
func (l *Ledger) DecrementLeadOrderByID(orderID OrderID, by int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.orders {
		if l.orders[i].ID == orderID {
			l.orders[i].Count -= by
			if l.orders[i].Count < 0 {
				l.orders[i].Count = 0
			}
			return
		}
	}
}

// decrementOrdersLocked walks the order collection in insertion order and
// deducts up to by units from orders matching (agentID, date). Caller holds
// the write lock.
func (l *Ledger) decrementOrdersLocked(agentID AgentID, date string, by int) {
	remaining := by
	for i := range l.orders {
		if remaining <= 0 {
			return
		}
		if l.orders[i].AgentID != agentID || l.orders[i].Date != date || l.orders[i].Count <= 0 {
			continue
		}
		deduct := remaining
		if l.orders[i].Count < deduct {
			deduct = l.orders[i].Count
		}
		l.orders[i].Count -= deduct
		remaining -= deduct
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

// SetDefaultLeadCost updates the default cost for new leads, clamped at zero.
func (l *Ledger) SetDefaultLeadCost(cost decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defaultLeadCost = clampAmount(cost)
}

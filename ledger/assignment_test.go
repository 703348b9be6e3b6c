package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/lead-engine/ledger"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
	return &t
}

// =============================================================================
// SINGLE ASSIGNMENT
// =============================================================================

func TestAssignLead_ResetsPaymentCycle(t *testing.T) {
	// GIVEN: a lead with arbitrary prior paid/due from an earlier agent
	l := newTestLedger()
	first := l.AddAgent("First", "f@x.in")
	second := l.AddAgent("Second", "s@x.in")
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(50), AssignedAgentID: first.ID})
	l.MarkAgentPaid(first.ID, ledger.AmountPayment(dec(30)))

	// WHEN: the lead is reassigned
	l.AssignLead(lead.ID, second.ID, nil)

	// THEN: due == leadCost and paid == 0; the payment cycle restarts
	got, _ := l.Lead(lead.ID)
	assert.Equal(t, second.ID, got.AssignedAgentID)
	assert.True(t, got.Due.Equal(dec(50)))
	assert.True(t, got.Paid.IsZero())
}

func TestAssignLead_DecrementsMatchingOrderByOne(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
	l.AddLeadOrder(agent.ID, "2024-01-05", 3)

	l.AssignLead(lead.ID, agent.ID, datePtr(2024, time.January, 5))

	orders := l.LeadOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].Count, "one lead consumes one unit of demand")
}

func TestAssignLead_NoCreatedAt_SkipsReconciliation(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
	l.AddLeadOrder(agent.ID, "2024-01-05", 3)

	l.AssignLead(lead.ID, agent.ID, nil)

	assert.Equal(t, 3, l.LeadOrders()[0].Count)
}

func TestAssignLead_DateMismatch_OrderUntouched(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
	l.AddLeadOrder(agent.ID, "2024-01-06", 3)

	l.AssignLead(lead.ID, agent.ID, datePtr(2024, time.January, 5))

	assert.Equal(t, 3, l.LeadOrders()[0].Count)
}

func TestAssignLead_UnknownLead_NoOp(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	before := l.Leads()

	l.AssignLead("lead-missing", agent.ID, nil)

	assert.Equal(t, before, l.Leads(), "no state change for unknown lead id")
}

// =============================================================================
// BULK ASSIGNMENT
// =============================================================================

func TestBulkAssignLeads_ReconcilesOrdersPerDate(t *testing.T) {
	// GIVEN: 3 leads created on 2024-01-05 and one order for 5 on that date
	l := newTestLedger()
	agent := l.AddAgent("X", "x@x.in")
	var items []ledger.LeadAssignmentItem
	for i := 0; i < 3; i++ {
		lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
		items = append(items, ledger.LeadAssignmentItem{
			LeadID:    lead.ID,
			CreatedAt: datePtr(2024, time.January, 5),
		})
	}
	l.AddLeadOrder(agent.ID, "2024-01-05", 5)

	// WHEN: all 3 are bulk-assigned with matching creation dates
	l.BulkAssignLeads(items, agent.ID)

	// THEN: the order has 2 units of demand left
	assert.Equal(t, 2, l.LeadOrders()[0].Count)
	for _, lead := range l.Leads() {
		assert.Equal(t, agent.ID, lead.AssignedAgentID)
		assert.True(t, lead.Due.Equal(dec(10)))
		assert.True(t, lead.Paid.IsZero())
	}
}

func TestBulkAssignLeads_DrainsOrdersInCollectionOrder(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("X", "x@x.in")
	var items []ledger.LeadAssignmentItem
	for i := 0; i < 4; i++ {
		lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
		items = append(items, ledger.LeadAssignmentItem{
			LeadID:    lead.ID,
			CreatedAt: datePtr(2024, time.January, 5),
		})
	}
	l.AddLeadOrder(agent.ID, "2024-01-05", 1)
	l.AddLeadOrder(agent.ID, "2024-01-05", 2)
	l.AddLeadOrder(agent.ID, "2024-01-05", 9)

	l.BulkAssignLeads(items, agent.ID)

	orders := l.LeadOrders()
	assert.Equal(t, 0, orders[0].Count)
	assert.Equal(t, 0, orders[1].Count, "exhausted orders are skipped, never negative")
	assert.Equal(t, 8, orders[2].Count)
}

func TestBulkAssignLeads_NilCreatedAtAssignsWithoutReconciliation(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("X", "x@x.in")
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
	l.AddLeadOrder(agent.ID, "2024-01-05", 3)

	l.BulkAssignLeads([]ledger.LeadAssignmentItem{{LeadID: lead.ID}}, agent.ID)

	got, _ := l.Lead(lead.ID)
	assert.Equal(t, agent.ID, got.AssignedAgentID, "assignment proceeds")
	assert.Equal(t, 3, l.LeadOrders()[0].Count, "no demand consumed")
}

func TestBulkAssignLeads_Empty_NoOp(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("X", "x@x.in")
	l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})

	l.BulkAssignLeads(nil, agent.ID)

	assert.False(t, l.Leads()[0].Assigned())
}

func TestBulkAssignLeads_MixedDatesGroupedSeparately(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("X", "x@x.in")
	a := l.AddLead(ledger.NewLead{Name: "a", Phone: "1", LeadCost: dec(10)})
	b := l.AddLead(ledger.NewLead{Name: "b", Phone: "2", LeadCost: dec(10)})
	c := l.AddLead(ledger.NewLead{Name: "c", Phone: "3", LeadCost: dec(10)})
	l.AddLeadOrder(agent.ID, "2024-01-05", 2)
	l.AddLeadOrder(agent.ID, "2024-01-06", 2)

	l.BulkAssignLeads([]ledger.LeadAssignmentItem{
		{LeadID: a.ID, CreatedAt: datePtr(2024, time.January, 5)},
		{LeadID: b.ID, CreatedAt: datePtr(2024, time.January, 6)},
		{LeadID: c.ID, CreatedAt: datePtr(2024, time.January, 6)},
	}, agent.ID)

	orders := l.LeadOrders()
	assert.Equal(t, 1, orders[0].Count)
	assert.Equal(t, 0, orders[1].Count)
}

package ledger_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/lead-engine/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestLedger returns a ledger with sequential ids and a frozen clock so
// tests can pin ids and creation dates.
func newTestLedger() *ledger.Ledger {
	seq := 0
	return ledger.New(
		ledger.WithIDSource(func() string {
			seq++
			return fmt.Sprintf("%04d", seq)
		}),
		ledger.WithClock(func() time.Time {
			return time.Date(2024, time.January, 5, 10, 30, 0, 0, time.UTC)
		}),
	)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestAddAgent_TrimsAndGeneratesID(t *testing.T) {
	l := newTestLedger()

	agent := l.AddAgent("  Priya Sharma  ", " priya@company.in ")

	assert.Equal(t, ledger.AgentID("agent-0001"), agent.ID)
	assert.Equal(t, "Priya Sharma", agent.Name)
	assert.Equal(t, "priya@company.in", agent.Email)
	require.Len(t, l.Agents(), 1)
}

func TestAddAdmin_SymmetricToAddAgent(t *testing.T) {
	l := newTestLedger()

	admin := l.AddAdmin("Ops Admin", "ops@company.in")

	assert.Equal(t, ledger.AdminID("admin-0001"), admin.ID)
	require.Len(t, l.Admins(), 1)
	assert.Empty(t, l.Agents(), "admins are a separate directory")
}

func TestAgent_UnknownID_NotFound(t *testing.T) {
	l := newTestLedger()
	l.AddAgent("A", "a@x.in")

	_, ok := l.Agent("agent-missing")
	assert.False(t, ok, "dangling agent ids must resolve to not-found, not panic")
}

// =============================================================================
// LEADS
// =============================================================================

func TestAddLead_UnassignedDefaults(t *testing.T) {
	l := newTestLedger()

	lead := l.AddLead(ledger.NewLead{
		Name:     " Ravi ",
		Phone:    " 9876543210 ",
		Source:   "Facebook",
		LeadCost: dec(50),
	})

	assert.Equal(t, ledger.StatusNew, lead.Status)
	assert.False(t, lead.Assigned())
	assert.True(t, lead.Paid.IsZero())
	assert.True(t, lead.Due.IsZero(), "unassigned lead carries no due")
	assert.Equal(t, "Ravi", lead.Name)
	assert.Equal(t, "9876543210", lead.Phone)
	assert.Equal(t, time.Date(2024, time.January, 5, 10, 30, 0, 0, time.UTC), lead.CreatedAt)
}

func TestAddLead_PreAssignedDueEqualsCost(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")

	lead := l.AddLead(ledger.NewLead{
		Name:            "Ravi",
		Phone:           "9876543210",
		LeadCost:        dec(50),
		AssignedAgentID: agent.ID,
	})

	assert.True(t, lead.Due.Equal(dec(50)))
	assert.True(t, lead.Paid.IsZero())
}

func TestAddLead_NegativeCostClampedToZero(t *testing.T) {
	l := newTestLedger()

	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(-20)})

	assert.True(t, lead.LeadCost.IsZero())
}

func TestDeleteLead_NoCascade(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10), AssignedAgentID: agent.ID})
	l.AddLeadOrder(agent.ID, "2024-01-05", 3)

	l.DeleteLead(lead.ID)

	assert.Empty(t, l.Leads())
	assert.Len(t, l.Agents(), 1)
	assert.Len(t, l.LeadOrders(), 1)
}

func TestUpdateLeadPhone_TrimsAndReplaces(t *testing.T) {
	l := newTestLedger()
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})

	l.UpdateLeadPhone(lead.ID, "  98765  ")

	got, ok := l.Lead(lead.ID)
	require.True(t, ok)
	assert.Equal(t, "98765", got.Phone)
}

func TestUpdateLeadPhone_UnknownID_NoOp(t *testing.T) {
	l := newTestLedger()
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})

	l.UpdateLeadPhone("lead-missing", "0000")

	got, _ := l.Lead(lead.ID)
	assert.Equal(t, "1", got.Phone, "unknown-id mutation must leave state unchanged")
}

// =============================================================================
// CONVERTED AMOUNT LIFECYCLE
// =============================================================================

func TestUpdateLeadStatus_ConvertedRecordsAmount(t *testing.T) {
	l := newTestLedger()
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})

	l.UpdateLeadStatus(lead.ID, ledger.StatusConverted, decPtr(500))

	got, _ := l.Lead(lead.ID)
	require.NotNil(t, got.ConvertedAmount)
	assert.True(t, got.ConvertedAmount.Equal(dec(500)))
	assert.Equal(t, ledger.StatusConverted, got.Status)
}

func TestUpdateLeadStatus_LeavingConvertedClearsAmount(t *testing.T) {
	// GIVEN: a converted lead with a recorded amount
	l := newTestLedger()
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
	l.UpdateLeadStatus(lead.ID, ledger.StatusConverted, decPtr(500))

	// WHEN: the lead transitions away from Converted, even with an amount supplied
	l.UpdateLeadStatus(lead.ID, ledger.StatusLost, decPtr(999))

	// THEN: the amount is cleared unconditionally
	got, _ := l.Lead(lead.ID)
	assert.Nil(t, got.ConvertedAmount)
	assert.Equal(t, ledger.StatusLost, got.Status)
}

func TestUpdateLeadStatus_ReconvertWithoutAmountLeavesAbsent(t *testing.T) {
	l := newTestLedger()
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
	l.UpdateLeadStatus(lead.ID, ledger.StatusConverted, decPtr(500))
	l.UpdateLeadStatus(lead.ID, ledger.StatusContacted, nil)

	l.UpdateLeadStatus(lead.ID, ledger.StatusConverted, nil)

	got, _ := l.Lead(lead.ID)
	assert.Nil(t, got.ConvertedAmount, "amount must be supplied again on re-conversion")
}

func TestUpdateLeadStatus_NegativeAmountClamped(t *testing.T) {
	l := newTestLedger()
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})

	l.UpdateLeadStatus(lead.ID, ledger.StatusConverted, decPtr(-40))

	got, _ := l.Lead(lead.ID)
	require.NotNil(t, got.ConvertedAmount)
	assert.True(t, got.ConvertedAmount.IsZero())
}

func TestUpdateLeadConvertedAmount_DoesNotTouchStatus(t *testing.T) {
	l := newTestLedger()
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})
	l.UpdateLeadStatus(lead.ID, ledger.StatusConverted, decPtr(100))

	l.UpdateLeadConvertedAmount(lead.ID, dec(750))

	got, _ := l.Lead(lead.ID)
	assert.Equal(t, ledger.StatusConverted, got.Status)
	require.NotNil(t, got.ConvertedAmount)
	assert.True(t, got.ConvertedAmount.Equal(dec(750)))
}

// =============================================================================
// LEAD COST
// =============================================================================

func TestUpdateLeadCost_AssignedRecomputesDueWithoutFloor(t *testing.T) {
	// GIVEN: an assigned lead that has paid 30 of 50
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(50), AssignedAgentID: agent.ID})
	l.MarkAgentPaid(agent.ID, ledger.AmountPayment(dec(30)))

	// WHEN: the lead is re-priced below what was already paid
	l.UpdateLeadCost(lead.ID, dec(20))

	// THEN: due goes negative, signalling overpayment
	got, _ := l.Lead(lead.ID)
	assert.True(t, got.LeadCost.Equal(dec(20)))
	assert.True(t, got.Due.Equal(dec(-10)), "re-pricing does not floor due at zero")
}

func TestUpdateLeadCost_UnassignedForcesDueZero(t *testing.T) {
	l := newTestLedger()
	lead := l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(50)})

	l.UpdateLeadCost(lead.ID, dec(80))

	got, _ := l.Lead(lead.ID)
	assert.True(t, got.LeadCost.Equal(dec(80)))
	assert.True(t, got.Due.IsZero())
}

// =============================================================================
// DELETION CASCADE
// =============================================================================

func TestDeleteAgent_CascadeCompleteness(t *testing.T) {
	// GIVEN: agent X with 2 assigned leads and 2 orders, agent Y with 1 of each
	l := newTestLedger()
	x := l.AddAgent("X", "x@x.in")
	y := l.AddAgent("Y", "y@x.in")
	lx1 := l.AddLead(ledger.NewLead{Name: "x1", Phone: "1", LeadCost: dec(10), AssignedAgentID: x.ID})
	lx2 := l.AddLead(ledger.NewLead{Name: "x2", Phone: "2", LeadCost: dec(20), AssignedAgentID: x.ID})
	ly := l.AddLead(ledger.NewLead{Name: "y1", Phone: "3", LeadCost: dec(30), AssignedAgentID: y.ID})
	l.AddLeadOrder(x.ID, "2024-01-05", 5)
	l.AddLeadOrder(x.ID, "2024-01-06", 2)
	orderY := l.AddLeadOrder(y.ID, "2024-01-05", 4)

	// WHEN: agent X is deleted
	l.DeleteAgent(x.ID)

	// THEN: X is gone, its leads are unassigned with zeroed money fields,
	// and its orders are removed
	_, ok := l.Agent(x.ID)
	assert.False(t, ok)
	for _, id := range []ledger.LeadID{lx1.ID, lx2.ID} {
		lead, found := l.Lead(id)
		require.True(t, found)
		assert.False(t, lead.Assigned())
		assert.True(t, lead.Due.IsZero())
		assert.True(t, lead.Paid.IsZero())
	}

	// AND: agent Y's data is untouched
	leadY, _ := l.Lead(ly.ID)
	assert.Equal(t, y.ID, leadY.AssignedAgentID)
	assert.True(t, leadY.Due.Equal(dec(30)))
	orders := l.LeadOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, orderY.ID, orders[0].ID)
}

// =============================================================================
// LEAD ORDERS
// =============================================================================

func TestAddLeadOrder_NormalizesDateAndClampsCount(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")

	order := l.AddLeadOrder(agent.ID, "2024-01-05T14:22:00Z", -3)

	assert.Equal(t, "2024-01-05", order.Date)
	assert.Equal(t, 0, order.Count)
}

func TestDecrementLeadOrder_FloorAtZero(t *testing.T) {
	// Decrementing past the remaining count leaves the order at zero,
	// never negative, no matter how many calls are chained.
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	order := l.AddLeadOrder(agent.ID, "2024-01-05", 3)

	l.DecrementLeadOrder(agent.ID, "2024-01-05", 5)
	l.DecrementLeadOrder(agent.ID, "2024-01-05", 2)
	l.DecrementLeadOrderByID(order.ID, 7)

	orders := l.LeadOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, 0, orders[0].Count)
}

func TestDecrementLeadOrder_SpansMultipleOrdersInCollectionOrder(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	l.AddLeadOrder(agent.ID, "2024-01-05", 2)
	l.AddLeadOrder(agent.ID, "2024-01-05", 4)
	l.AddLeadOrder(agent.ID, "2024-01-06", 9) // different date, untouched

	l.DecrementLeadOrder(agent.ID, "2024-01-05", 5)

	orders := l.LeadOrders()
	assert.Equal(t, 0, orders[0].Count, "first matching order drains first")
	assert.Equal(t, 1, orders[1].Count)
	assert.Equal(t, 9, orders[2].Count)
}

func TestOrderWithZeroCountIsKept(t *testing.T) {
	l := newTestLedger()
	agent := l.AddAgent("A", "a@x.in")
	order := l.AddLeadOrder(agent.ID, "2024-01-05", 1)

	l.DecrementLeadOrderByID(order.ID, 1)

	require.Len(t, l.LeadOrders(), 1, "exhausted orders are inert, not removed")
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSetDefaultLeadCost_Clamped(t *testing.T) {
	l := newTestLedger()

	assert.True(t, l.DefaultLeadCost().Equal(dec(12)), "initial default")

	l.SetDefaultLeadCost(dec(25))
	assert.True(t, l.DefaultLeadCost().Equal(dec(25)))

	l.SetDefaultLeadCost(dec(-5))
	assert.True(t, l.DefaultLeadCost().IsZero())
}

// =============================================================================
// STATUS ENUM
// =============================================================================

func TestValidStatus(t *testing.T) {
	for _, s := range ledger.AllLeadStatuses {
		assert.True(t, ledger.ValidStatus(s), s)
	}
	assert.False(t, ledger.ValidStatus("Archived"))
}

func TestLeadsSnapshotIsACopy(t *testing.T) {
	l := newTestLedger()
	l.AddLead(ledger.NewLead{Name: "N", Phone: "1", LeadCost: dec(10)})

	snapshot := l.Leads()
	snapshot[0].Name = "mutated"

	got := l.Leads()
	assert.Equal(t, "N", got[0].Name, "readers must not alias internal state")
}

/*
payment.go - Payment reconciliation: waterfall allocation across dues

PURPOSE:
  Applies a payment against one agent's leads. Two modes:

  FULL:   total settlement. Every lead assigned to the agent gets
          paid = leadCost, due = 0, regardless of prior values. Idempotent.

  AMOUNT: greedy waterfall. The amount is distributed across the agent's
          leads with due > 0 in collection order: each lead absorbs
          min(remaining, due) until the amount is exhausted. Leads the
          waterfall never reaches are untouched.

MONEY CONSERVATION:
  In amount mode the total paid across the agent's leads increases by
  exactly the (clamped) payment amount, capped by the total due. No leakage,
  no double payment. Collection order decides who gets paid first; tests pin
  insertion order and assert the exact distribution.
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// PAYMENT OPTIONS
// =============================================================================

type PaymentKind string

const (
	// PaymentFull settles every assigned lead in full.
	PaymentFull PaymentKind = "full"

	// PaymentAmount distributes a fixed amount across outstanding dues.
	PaymentAmount PaymentKind = "amount"
)

// Payment selects the settlement mode for MarkAgentPaid.
type Payment struct {
	Kind   PaymentKind
	Amount decimal.Decimal // used only for PaymentAmount
}

// FullPayment settles all of an agent's dues.
func FullPayment() Payment { return Payment{Kind: PaymentFull} }

// AmountPayment distributes amount across an agent's dues, oldest first.
func AmountPayment(amount decimal.Decimal) Payment {
	return Payment{Kind: PaymentAmount, Amount: amount}
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// MarkAgentPaid applies a payment against the agent's leads. Unknown agents
// and agents with no assigned leads are a no-op.
func (l *Ledger) MarkAgentPaid(agentID AgentID, option Payment) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if option.Kind == PaymentFull {
		for i := range l.leads {
			if l.leads[i].AssignedAgentID == agentID {
				l.leads[i].Paid = l.leads[i].LeadCost
				l.leads[i].Due = decimal.Zero
			}
		}
		return
	}

	remaining := clampAmount(option.Amount)
	for i := range l.leads {
		if !remaining.IsPositive() {
			return
		}
		if l.leads[i].AssignedAgentID != agentID || !l.leads[i].Due.IsPositive() {
			continue
		}

		pay := remaining
		if l.leads[i].Due.LessThan(pay) {
			pay = l.leads[i].Due
		}
		l.leads[i].Paid = l.leads[i].Paid.Add(pay)
		l.leads[i].Due = clampAmount(l.leads[i].LeadCost.Sub(l.leads[i].Paid))
		remaining = remaining.Sub(pay)
	}
}

/*
Package report derives aggregate views from ledger snapshots.

PURPOSE:
  Pure, stateless aggregation: every function recomputes from the
  collections it is handed, on every call. No caching and no incremental
  maintenance; the ledger is small and consumers re-derive views after
  each mutation.

SIGN CONVENTIONS (two of them, on purpose):
  - AgentRollup.ProfitLoss  = AmountGot - TotalCost   positive = profit
    (the agent list view)
  - AgentReportRow.ProfitLoss = TotalCost - AmountGot positive = loss
    (the dashboard per-agent table)
  These are independent derived views, not a shared formula. Do not unify
  the sign without a product decision.

FILTERS:
  Date-range and agent filters are applied before aggregation. A lead
  matches a date range when its CreatedAt falls within
  [from 00:00:00, to 23:59:59] inclusive; leads without a CreatedAt pass
  through any date filter (permissive default).
*/
package report

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/lead-engine/ledger"
)

// =============================================================================
// FILTERS
// =============================================================================

// Filter narrows a lead snapshot before aggregation. Zero values mean "no
// constraint". From/To are YYYY-MM-DD; unparseable dates are ignored.
type Filter struct {
	AgentID ledger.AgentID
	From    string
	To      string
}

// Apply returns the leads matching the filter, preserving collection order.
func (f Filter) Apply(leads []ledger.Lead) []ledger.Lead {
	fromBound, hasFrom := parseDay(f.From)
	toBound, hasTo := parseDay(f.To)
	if hasTo {
		toBound = toBound.AddDate(0, 0, 1) // exclusive end of day
	}

	var out []ledger.Lead
	for _, lead := range leads {
		if f.AgentID != "" && lead.AssignedAgentID != f.AgentID {
			continue
		}
		if (hasFrom || hasTo) && !lead.CreatedAt.IsZero() {
			if hasFrom && lead.CreatedAt.Before(fromBound) {
				continue
			}
			if hasTo && !lead.CreatedAt.Before(toBound) {
				continue
			}
		}
		out = append(out, lead)
	}
	return out
}

func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// =============================================================================
// PER-AGENT ROLLUPS (agent list view: positive ProfitLoss = profit)
// =============================================================================

// AgentRollup aggregates one agent's leads and orders.
type AgentRollup struct {
	Agent      ledger.Agent
	LeadCount  int
	TotalCost  decimal.Decimal
	TotalPaid  decimal.Decimal
	TotalDue   decimal.Decimal
	OrderCount int
	AmountGot  decimal.Decimal // converted revenue
	ProfitLoss decimal.Decimal // AmountGot - TotalCost
}

// AgentRollups computes a rollup per agent over the given collections.
func AgentRollups(agents []ledger.Agent, leads []ledger.Lead, orders []ledger.LeadOrder) []AgentRollup {
	rollups := make([]AgentRollup, len(agents))
	for i, agent := range agents {
		r := AgentRollup{
			Agent:      agent,
			TotalCost:  decimal.Zero,
			TotalPaid:  decimal.Zero,
			TotalDue:   decimal.Zero,
			AmountGot:  decimal.Zero,
			ProfitLoss: decimal.Zero,
		}
		for _, lead := range leads {
			if lead.AssignedAgentID != agent.ID {
				continue
			}
			r.LeadCount++
			r.TotalCost = r.TotalCost.Add(lead.LeadCost)
			r.TotalPaid = r.TotalPaid.Add(lead.Paid)
			r.TotalDue = r.TotalDue.Add(lead.Due)
			if lead.Status == ledger.StatusConverted && lead.ConvertedAmount != nil {
				r.AmountGot = r.AmountGot.Add(*lead.ConvertedAmount)
			}
		}
		for _, o := range orders {
			if o.AgentID == agent.ID {
				r.OrderCount += o.Count
			}
		}
		r.ProfitLoss = r.AmountGot.Sub(r.TotalCost)
		rollups[i] = r
	}
	return rollups
}

// =============================================================================
// DASHBOARD PER-AGENT TABLE (positive ProfitLoss = loss)
// =============================================================================

// AgentReportRow is the dashboard's per-agent breakdown.
type AgentReportRow struct {
	Agent           ledger.Agent
	LeadCount       int
	TotalCost       decimal.Decimal
	TotalPaid       decimal.Decimal
	TotalDue        decimal.Decimal
	OrderCount      int
	AmountGot       decimal.Decimal
	CostOfConverted decimal.Decimal
	ProfitLoss      decimal.Decimal // TotalCost - AmountGot
}

// AgentReport computes the dashboard's per-agent rows.
func AgentReport(agents []ledger.Agent, leads []ledger.Lead, orders []ledger.LeadOrder) []AgentReportRow {
	rows := make([]AgentReportRow, len(agents))
	for i, agent := range agents {
		row := AgentReportRow{
			Agent:           agent,
			TotalCost:       decimal.Zero,
			TotalPaid:       decimal.Zero,
			TotalDue:        decimal.Zero,
			AmountGot:       decimal.Zero,
			CostOfConverted: decimal.Zero,
		}
		for _, lead := range leads {
			if lead.AssignedAgentID != agent.ID {
				continue
			}
			row.LeadCount++
			row.TotalCost = row.TotalCost.Add(lead.LeadCost)
			row.TotalPaid = row.TotalPaid.Add(lead.Paid)
			row.TotalDue = row.TotalDue.Add(lead.Due)
			if lead.Status == ledger.StatusConverted {
				row.CostOfConverted = row.CostOfConverted.Add(lead.LeadCost)
				if lead.ConvertedAmount != nil {
					row.AmountGot = row.AmountGot.Add(*lead.ConvertedAmount)
				}
			}
		}
		for _, o := range orders {
			if o.AgentID == agent.ID {
				row.OrderCount += o.Count
			}
		}
		row.ProfitLoss = row.TotalCost.Sub(row.AmountGot)
		rows[i] = row
	}
	return rows
}

// =============================================================================
// DASHBOARD TOTALS
// =============================================================================

// DashboardStats are the dashboard stat cards, computed over an already
// filtered lead set. TotalOrders sums the full order collection regardless
// of the lead filter.
type DashboardStats struct {
	TotalLeads      int
	AssignedLeads   int
	PendingLeads    int // assigned and neither Converted nor Lost
	ConvertedLeads  int
	LostLeads       int
	TotalLeadCost   decimal.Decimal
	TotalPaid       decimal.Decimal
	TotalDue        decimal.Decimal
	TotalAmountGot  decimal.Decimal
	TotalProfitLoss decimal.Decimal // TotalLeadCost - TotalAmountGot
	TotalOrders     int
	AgentsCount     int
}

// Dashboard computes the stat-card totals.
func Dashboard(leads []ledger.Lead, orders []ledger.LeadOrder, agentsCount int) DashboardStats {
	stats := DashboardStats{
		TotalLeadCost:  decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalDue:       decimal.Zero,
		TotalAmountGot: decimal.Zero,
		AgentsCount:    agentsCount,
	}
	for _, lead := range leads {
		stats.TotalLeads++
		if lead.Assigned() {
			stats.AssignedLeads++
			if lead.Status != ledger.StatusConverted && lead.Status != ledger.StatusLost {
				stats.PendingLeads++
			}
		}
		switch lead.Status {
		case ledger.StatusConverted:
			stats.ConvertedLeads++
		case ledger.StatusLost:
			stats.LostLeads++
		}
		stats.TotalLeadCost = stats.TotalLeadCost.Add(lead.LeadCost)
		stats.TotalPaid = stats.TotalPaid.Add(lead.Paid)
		stats.TotalDue = stats.TotalDue.Add(lead.Due)
		if lead.Status == ledger.StatusConverted && lead.ConvertedAmount != nil {
			stats.TotalAmountGot = stats.TotalAmountGot.Add(*lead.ConvertedAmount)
		}
	}
	for _, o := range orders {
		stats.TotalOrders += o.Count
	}
	stats.TotalProfitLoss = stats.TotalLeadCost.Sub(stats.TotalAmountGot)
	return stats
}

// =============================================================================
// STATUS COUNTS
// =============================================================================

// StatusCount pairs a pipeline status with its lead count.
type StatusCount struct {
	Status ledger.LeadStatus
	Count  int
}

// StatusCounts counts leads per status over the closed enum, in enum order.
func StatusCounts(leads []ledger.Lead) []StatusCount {
	counts := make([]StatusCount, len(ledger.AllLeadStatuses))
	for i, status := range ledger.AllLeadStatuses {
		counts[i].Status = status
		for _, lead := range leads {
			if lead.Status == status {
				counts[i].Count++
			}
		}
	}
	return counts
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the ledger's
  internal model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request structs carry validator tags; handlers run them through a shared
  validator.Validate before touching the ledger. The ledger itself clamps
  numeric inputs and no-ops on unknown ids, so all field-level rejection
  happens here, in the calling layer.

MONEY:
  Amounts travel as JSON strings via decimal.Decimal's marshaller to avoid
  float drift on the wire.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/lead-engine/importer"
	"github.com/warp/lead-engine/ledger"
)

// =============================================================================
// DIRECTORY TYPES
// =============================================================================

// AgentDTO represents an agent in API responses.
type AgentDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateAgentRequest creates an agent or an admin (same shape).
type CreateAgentRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// AdminDTO represents an admin in API responses.
type AdminDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// =============================================================================
// LEAD TYPES
// =============================================================================

// LeadDTO represents a lead in API responses.
type LeadDTO struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Phone           string           `json:"phone"`
	Source          string           `json:"source"`
	LeadCost        decimal.Decimal  `json:"lead_cost"`
	Status          string           `json:"status"`
	AssignedAgentID string           `json:"assigned_agent_id,omitempty"`
	Paid            decimal.Decimal  `json:"paid"`
	Due             decimal.Decimal  `json:"due"`
	Address         string           `json:"address,omitempty"`
	Age             string           `json:"age,omitempty"`
	Gender          string           `json:"gender,omitempty"`
	CreatedAt       string           `json:"created_at,omitempty"`
	ConvertedAmount *decimal.Decimal `json:"converted_amount,omitempty"`
}

func toLeadDTO(l ledger.Lead) LeadDTO {
	dto := LeadDTO{
		ID:              string(l.ID),
		Name:            l.Name,
		Phone:           l.Phone,
		Source:          l.Source,
		LeadCost:        l.LeadCost,
		Status:          string(l.Status),
		AssignedAgentID: string(l.AssignedAgentID),
		Paid:            l.Paid,
		Due:             l.Due,
		Address:         l.Address,
		Age:             l.Age,
		Gender:          l.Gender,
		ConvertedAmount: l.ConvertedAmount,
	}
	if !l.CreatedAt.IsZero() {
		dto.CreatedAt = l.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// CreateLeadRequest is the request to create a lead.
type CreateLeadRequest struct {
	Name            string           `json:"name" validate:"required"`
	Phone           string           `json:"phone" validate:"required"`
	Source          string           `json:"source"`
	LeadCost        *decimal.Decimal `json:"lead_cost"` // nil = default lead cost
	AssignedAgentID string           `json:"assigned_agent_id"`
	Address         string           `json:"address"`
	Age             string           `json:"age"`
	Gender          string           `json:"gender"`
}

// UpdatePhoneRequest replaces a lead's phone number.
type UpdatePhoneRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// UpdateStatusRequest transitions a lead's pipeline status.
type UpdateStatusRequest struct {
	Status          string           `json:"status" validate:"required"`
	ConvertedAmount *decimal.Decimal `json:"converted_amount"`
}

// UpdateConvertedAmountRequest corrects a converted amount post hoc.
type UpdateConvertedAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// UpdateCostRequest re-prices a lead.
type UpdateCostRequest struct {
	Cost decimal.Decimal `json:"cost"`
}

// =============================================================================
// ASSIGNMENT TYPES
// =============================================================================

// AssignLeadRequest binds one lead to an agent. CreatedAt, when present, is
// the lead's creation timestamp used for order reconciliation (RFC3339 or
// YYYY-MM-DD).
type AssignLeadRequest struct {
	AgentID   string `json:"agent_id" validate:"required"`
	CreatedAt string `json:"created_at"`
}

// BulkAssignItem pairs one lead with its creation timestamp.
type BulkAssignItem struct {
	LeadID    string `json:"lead_id" validate:"required"`
	CreatedAt string `json:"created_at"`
}

// BulkAssignRequest assigns a batch of leads to one agent.
type BulkAssignRequest struct {
	AgentID string           `json:"agent_id" validate:"required"`
	Items   []BulkAssignItem `json:"items" validate:"dive"`
}

// =============================================================================
// ORDER AND PAYMENT TYPES
// =============================================================================

// LeadOrderDTO represents a lead order in API responses.
type LeadOrderDTO struct {
	ID      string `json:"id"`
	AgentID string `json:"agent_id"`
	Date    string `json:"date"`
	Count   int    `json:"count"`
}

// CreateOrderRequest records an agent's request for leads.
type CreateOrderRequest struct {
	AgentID string `json:"agent_id" validate:"required"`
	Date    string `json:"date" validate:"required"`
	Count   int    `json:"count" validate:"min=0"`
}

// DecrementOrderRequest fulfills demand against one order by id.
type DecrementOrderRequest struct {
	By int `json:"by" validate:"min=1"`
}

// DecrementOrdersRequest fulfills demand against an agent/date pair.
type DecrementOrdersRequest struct {
	AgentID string `json:"agent_id" validate:"required"`
	Date    string `json:"date" validate:"required"`
	By      int    `json:"by" validate:"min=1"`
}

// PaymentRequest settles an agent's dues, fully or by amount.
type PaymentRequest struct {
	Type   string           `json:"type" validate:"required,oneof=full amount"`
	Amount *decimal.Decimal `json:"amount"` // required when type == amount
}

// DefaultLeadCostRequest updates the default cost for new leads.
type DefaultLeadCostRequest struct {
	Cost decimal.Decimal `json:"cost"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// AgentRollupDTO is one row of the agent list view.
type AgentRollupDTO struct {
	Agent      AgentDTO        `json:"agent"`
	LeadCount  int             `json:"lead_count"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalDue   decimal.Decimal `json:"total_due"`
	OrderCount int             `json:"order_count"`
	AmountGot  decimal.Decimal `json:"amount_got"`
	ProfitLoss decimal.Decimal `json:"profit_loss"`
	Display    string          `json:"profit_loss_display"`
}

// DashboardDTO wraps the dashboard stat cards and per-agent table.
type DashboardDTO struct {
	TotalLeads      int             `json:"total_leads"`
	AssignedLeads   int             `json:"assigned_leads"`
	PendingLeads    int             `json:"pending_leads"`
	ConvertedLeads  int             `json:"converted_leads"`
	LostLeads       int             `json:"lost_leads"`
	TotalLeadCost   decimal.Decimal `json:"total_lead_cost"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalDue        decimal.Decimal `json:"total_due"`
	TotalAmountGot  decimal.Decimal `json:"total_amount_got"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
	TotalOrders     int             `json:"total_orders"`
	AgentsCount     int             `json:"agents_count"`

	AgentRows []AgentReportRowDTO `json:"agent_rows"`
}

// AgentReportRowDTO is one row of the dashboard per-agent table. Its
// profit_loss sign is inverted relative to the agent list (positive = loss).
type AgentReportRowDTO struct {
	Agent           AgentDTO        `json:"agent"`
	LeadCount       int             `json:"lead_count"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalDue        decimal.Decimal `json:"total_due"`
	OrderCount      int             `json:"order_count"`
	AmountGot       decimal.Decimal `json:"amount_got"`
	CostOfConverted decimal.Decimal `json:"cost_of_converted"`
	ProfitLoss      decimal.Decimal `json:"profit_loss"`
}

// StatusCountDTO pairs a status with its lead count.
type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// =============================================================================
// IMPORT TYPES
// =============================================================================

// ImportPreviewDTO is the parsed sheet plus the auto-detected mapping.
type ImportPreviewDTO struct {
	FileName string                 `json:"file_name"`
	Headers  []string               `json:"headers"`
	Mapping  importer.ColumnMapping `json:"mapping"`
	Rows     []ImportRowDTO         `json:"rows"`
}

// ImportRowDTO is one mapped row with its validity flag.
type ImportRowDTO struct {
	importer.MappedRow
	Valid bool `json:"valid"`
}

// ImportCommitRequest creates leads from previously mapped rows. LeadCost
// defaults to the ledger's default lead cost; Source defaults to "Upload".
type ImportCommitRequest struct {
	Rows     []importer.MappedRow `json:"rows" validate:"required,min=1"`
	LeadCost *decimal.Decimal     `json:"lead_cost"`
	Source   string               `json:"source"`
}

// ImportCommitResponse reports how many rows became leads.
type ImportCommitResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

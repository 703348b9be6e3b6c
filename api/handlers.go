/*
handlers.go - HTTP handlers for the lead ledger engine

PURPOSE:
  Exposes the ledger via REST. Handlers parse and validate requests, call
  ledger operations, and serialize snapshots back as JSON.

ERROR HANDLING:
  - 400: body decoding and validation failures (the calling layer rejects
         what the ledger would otherwise silently accept)
  - 404: explicit read lookups that find nothing
  - Mutations against unknown ids succeed with a no-op, matching the
    ledger's "mutate if found" contract. Clients observe no state change
    rather than an error.

REQUEST FLOW:
  1. Decode JSON body
  2. Validate (go-playground/validator tags)
  3. Call ledger / report / importer
  4. Serialize response

SEE ALSO:
  - dto.go: Request/response structures
  - server.go: Route wiring
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/lead-engine/importer"
	"github.com/warp/lead-engine/ledger"
	"github.com/warp/lead-engine/report"
)

// maxImportSize caps uploaded sheet files at 10 MiB.
const maxImportSize = 10 << 20

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger   *ledger.Ledger
	Validate *validator.Validate
	Log      zerolog.Logger
}

// NewHandler creates a handler around the given ledger.
func NewHandler(l *ledger.Ledger, log zerolog.Logger) *Handler {
	return &Handler{
		Ledger:   l,
		Validate: validator.New(),
		Log:      log,
	}
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// parseTimestamp accepts RFC3339 or bare YYYY-MM-DD.
func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// =============================================================================
// AGENT HANDLERS
// =============================================================================

// ListAgents returns the agent directory.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents := h.Ledger.Agents()
	dtos := make([]AgentDTO, len(agents))
	for i, a := range agents {
		dtos[i] = AgentDTO{ID: string(a.ID), Name: a.Name, Email: a.Email}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAgent adds an agent to the directory.
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	agent := h.Ledger.AddAgent(req.Name, req.Email)
	writeJSON(w, http.StatusCreated, AgentDTO{ID: string(agent.ID), Name: agent.Name, Email: agent.Email})
}

// DeleteAgent removes an agent with its full cascade: leads unassigned,
// orders dropped.
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	h.Ledger.DeleteAgent(ledger.AgentID(chi.URLParam(r, "id")))
	w.WriteHeader(http.StatusNoContent)
}

// MarkAgentPaid settles an agent's dues, fully or by amount.
func (h *Handler) MarkAgentPaid(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	agentID := ledger.AgentID(chi.URLParam(r, "id"))
	switch req.Type {
	case "full":
		h.Ledger.MarkAgentPaid(agentID, ledger.FullPayment())
	case "amount":
		if req.Amount == nil {
			writeError(w, http.StatusBadRequest, "amount is required for type=amount", nil)
			return
		}
		h.Ledger.MarkAgentPaid(agentID, ledger.AmountPayment(*req.Amount))
	}

	writeJSON(w, http.StatusOK, h.agentLeadDTOs(agentID))
}

func (h *Handler) agentLeadDTOs(agentID ledger.AgentID) []LeadDTO {
	dtos := make([]LeadDTO, 0)
	for _, lead := range h.Ledger.Leads() {
		if lead.AssignedAgentID == agentID {
			dtos = append(dtos, toLeadDTO(lead))
		}
	}
	return dtos
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ListAdmins returns the admin directory.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins := h.Ledger.Admins()
	dtos := make([]AdminDTO, len(admins))
	for i, a := range admins {
		dtos[i] = AdminDTO{ID: string(a.ID), Name: a.Name, Email: a.Email}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAdmin adds an admin to the directory.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	admin := h.Ledger.AddAdmin(req.Name, req.Email)
	writeJSON(w, http.StatusCreated, AdminDTO{ID: string(admin.ID), Name: admin.Name, Email: admin.Email})
}

// =============================================================================
// LEAD HANDLERS
// =============================================================================

// ListLeads returns leads, optionally filtered by agent_id, from, and to
// query parameters.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	filter := report.Filter{
		AgentID: ledger.AgentID(r.URL.Query().Get("agent_id")),
		From:    r.URL.Query().Get("from"),
		To:      r.URL.Query().Get("to"),
	}
	leads := filter.Apply(h.Ledger.Leads())
	dtos := make([]LeadDTO, len(leads))
	for i, lead := range leads {
		dtos[i] = toLeadDTO(lead)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLead adds a lead. Cost defaults to the ledger's default lead cost.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	cost := h.Ledger.DefaultLeadCost()
	if req.LeadCost != nil {
		cost = *req.LeadCost
	}
	lead := h.Ledger.AddLead(ledger.NewLead{
		Name:            req.Name,
		Phone:           req.Phone,
		Source:          req.Source,
		LeadCost:        cost,
		AssignedAgentID: ledger.AgentID(req.AssignedAgentID),
		Address:         req.Address,
		Age:             req.Age,
		Gender:          req.Gender,
	})
	writeJSON(w, http.StatusCreated, toLeadDTO(lead))
}

// DeleteLead removes a lead. No cascade.
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	h.Ledger.DeleteLead(ledger.LeadID(chi.URLParam(r, "id")))
	w.WriteHeader(http.StatusNoContent)
}

// UpdateLeadPhone replaces a lead's phone number.
func (h *Handler) UpdateLeadPhone(w http.ResponseWriter, r *http.Request) {
	var req UpdatePhoneRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.Ledger.UpdateLeadPhone(ledger.LeadID(chi.URLParam(r, "id")), req.Phone)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateLeadStatus transitions a lead's status; an amount may accompany a
// transition into Converted.
func (h *Handler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	status := ledger.LeadStatus(req.Status)
	if !ledger.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}

	h.Ledger.UpdateLeadStatus(ledger.LeadID(chi.URLParam(r, "id")), status, req.ConvertedAmount)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateLeadConvertedAmount corrects a converted amount without touching
// status.
func (h *Handler) UpdateLeadConvertedAmount(w http.ResponseWriter, r *http.Request) {
	var req UpdateConvertedAmountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.Ledger.UpdateLeadConvertedAmount(ledger.LeadID(chi.URLParam(r, "id")), req.Amount)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateLeadCost re-prices a lead.
func (h *Handler) UpdateLeadCost(w http.ResponseWriter, r *http.Request) {
	var req UpdateCostRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.Ledger.UpdateLeadCost(ledger.LeadID(chi.URLParam(r, "id")), req.Cost)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// AssignLead binds a lead to an agent, reconciling one unit of order demand
// when a creation timestamp is supplied.
func (h *Handler) AssignLead(w http.ResponseWriter, r *http.Request) {
	var req AssignLeadRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	createdAt, err := parseTimestamp(req.CreatedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid created_at (use RFC3339 or YYYY-MM-DD)", err)
		return
	}

	h.Ledger.AssignLead(ledger.LeadID(chi.URLParam(r, "id")), ledger.AgentID(req.AgentID), createdAt)
	w.WriteHeader(http.StatusNoContent)
}

// BulkAssignLeads assigns a batch of leads to one agent and reconciles
// order demand per creation date.
func (h *Handler) BulkAssignLeads(w http.ResponseWriter, r *http.Request) {
	var req BulkAssignRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	items := make([]ledger.LeadAssignmentItem, 0, len(req.Items))
	for _, item := range req.Items {
		createdAt, err := parseTimestamp(item.CreatedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid created_at (use RFC3339 or YYYY-MM-DD)", err)
			return
		}
		items = append(items, ledger.LeadAssignmentItem{
			LeadID:    ledger.LeadID(item.LeadID),
			CreatedAt: createdAt,
		})
	}

	h.Ledger.BulkAssignLeads(items, ledger.AgentID(req.AgentID))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LEAD ORDER HANDLERS
// =============================================================================

// ListLeadOrders returns all lead orders, including exhausted ones.
func (h *Handler) ListLeadOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.Ledger.LeadOrders()
	dtos := make([]LeadOrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = LeadOrderDTO{ID: string(o.ID), AgentID: string(o.AgentID), Date: o.Date, Count: o.Count}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeadOrder records an agent's request for leads on a date.
func (h *Handler) CreateLeadOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	order := h.Ledger.AddLeadOrder(ledger.AgentID(req.AgentID), req.Date, req.Count)
	writeJSON(w, http.StatusCreated, LeadOrderDTO{
		ID:      string(order.ID),
		AgentID: string(order.AgentID),
		Date:    order.Date,
		Count:   order.Count,
	})
}

// DecrementLeadOrder fulfills demand against one order by id.
func (h *Handler) DecrementLeadOrder(w http.ResponseWriter, r *http.Request) {
	var req DecrementOrderRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.Ledger.DecrementLeadOrderByID(ledger.OrderID(chi.URLParam(r, "id")), req.By)
	w.WriteHeader(http.StatusNoContent)
}

// DecrementLeadOrders fulfills demand against an agent/date pair, walking
// that agent's orders in collection order.
func (h *Handler) DecrementLeadOrders(w http.ResponseWriter, r *http.Request) {
	var req DecrementOrdersRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.Ledger.DecrementLeadOrder(ledger.AgentID(req.AgentID), req.Date, req.By)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func reportFilter(r *http.Request) report.Filter {
	return report.Filter{
		AgentID: ledger.AgentID(r.URL.Query().Get("agent_id")),
		From:    r.URL.Query().Get("from"),
		To:      r.URL.Query().Get("to"),
	}
}

// DashboardReport returns the stat-card totals and the per-agent table.
func (h *Handler) DashboardReport(w http.ResponseWriter, r *http.Request) {
	leads := reportFilter(r).Apply(h.Ledger.Leads())
	orders := h.Ledger.LeadOrders()
	agents := h.Ledger.Agents()

	stats := report.Dashboard(leads, orders, len(agents))
	rows := report.AgentReport(agents, leads, orders)

	dto := DashboardDTO{
		TotalLeads:      stats.TotalLeads,
		AssignedLeads:   stats.AssignedLeads,
		PendingLeads:    stats.PendingLeads,
		ConvertedLeads:  stats.ConvertedLeads,
		LostLeads:       stats.LostLeads,
		TotalLeadCost:   stats.TotalLeadCost,
		TotalPaid:       stats.TotalPaid,
		TotalDue:        stats.TotalDue,
		TotalAmountGot:  stats.TotalAmountGot,
		TotalProfitLoss: stats.TotalProfitLoss,
		TotalOrders:     stats.TotalOrders,
		AgentsCount:     stats.AgentsCount,
		AgentRows:       make([]AgentReportRowDTO, len(rows)),
	}
	for i, row := range rows {
		dto.AgentRows[i] = AgentReportRowDTO{
			Agent:           AgentDTO{ID: string(row.Agent.ID), Name: row.Agent.Name, Email: row.Agent.Email},
			LeadCount:       row.LeadCount,
			TotalCost:       row.TotalCost,
			TotalPaid:       row.TotalPaid,
			TotalDue:        row.TotalDue,
			OrderCount:      row.OrderCount,
			AmountGot:       row.AmountGot,
			CostOfConverted: row.CostOfConverted,
			ProfitLoss:      row.ProfitLoss,
		}
	}

	writeJSON(w, http.StatusOK, dto)
}

// AgentsReport returns the agent list rollups (positive profit_loss =
// profit, the opposite of the dashboard table).
func (h *Handler) AgentsReport(w http.ResponseWriter, r *http.Request) {
	leads := reportFilter(r).Apply(h.Ledger.Leads())
	rollups := report.AgentRollups(h.Ledger.Agents(), leads, h.Ledger.LeadOrders())

	dtos := make([]AgentRollupDTO, len(rollups))
	for i, rollup := range rollups {
		dtos[i] = AgentRollupDTO{
			Agent:      AgentDTO{ID: string(rollup.Agent.ID), Name: rollup.Agent.Name, Email: rollup.Agent.Email},
			LeadCount:  rollup.LeadCount,
			TotalCost:  rollup.TotalCost,
			TotalPaid:  rollup.TotalPaid,
			TotalDue:   rollup.TotalDue,
			OrderCount: rollup.OrderCount,
			AmountGot:  rollup.AmountGot,
			ProfitLoss: rollup.ProfitLoss,
			Display:    report.FormatINR(rollup.ProfitLoss),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// StatusReport returns per-status lead counts over the closed enum.
func (h *Handler) StatusReport(w http.ResponseWriter, r *http.Request) {
	counts := report.StatusCounts(reportFilter(r).Apply(h.Ledger.Leads()))
	dtos := make([]StatusCountDTO, len(counts))
	for i, c := range counts {
		dtos[i] = StatusCountDTO{Status: string(c.Status), Count: c.Count}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetDefaultLeadCost returns the default cost applied to new leads.
func (h *Handler) GetDefaultLeadCost(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"cost": h.Ledger.DefaultLeadCost()})
}

// SetDefaultLeadCost updates the default cost applied to new leads.
func (h *Handler) SetDefaultLeadCost(w http.ResponseWriter, r *http.Request) {
	var req DefaultLeadCostRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.Ledger.SetDefaultLeadCost(req.Cost)
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"cost": h.Ledger.DefaultLeadCost()})
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

// ImportPreview parses an uploaded sheet and returns headers, the
// auto-detected column mapping, and the mapped rows with validity flags.
// Nothing is written to the ledger; the client may adjust the mapping and
// commit, or abandon the flow with no effect.
func (h *Handler) ImportPreview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file", err)
		return
	}
	defer file.Close()

	firstRowIsData := r.FormValue("first_row_is_data") == "true"

	sheet, err := importer.ParseSheet(file, header.Filename, firstRowIsData)
	if err != nil {
		if errors.Is(err, importer.ErrEmptySheet) || errors.Is(err, importer.ErrNoHeaders) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to parse sheet", err)
		return
	}

	mapping := importer.AutoDetectMapping(sheet.Headers)
	mapped := importer.MapRows(sheet.Rows, mapping)

	dto := ImportPreviewDTO{
		FileName: sheet.FileName,
		Headers:  sheet.Headers,
		Mapping:  mapping,
		Rows:     make([]ImportRowDTO, len(mapped)),
	}
	for i, row := range mapped {
		dto.Rows[i] = ImportRowDTO{MappedRow: row, Valid: row.Valid()}
	}
	writeJSON(w, http.StatusOK, dto)
}

// ImportCommit creates a lead per valid mapped row. Invalid rows (missing
// name or phone) are counted as skipped, never created.
func (h *Handler) ImportCommit(w http.ResponseWriter, r *http.Request) {
	var req ImportCommitRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	cost := h.Ledger.DefaultLeadCost()
	if req.LeadCost != nil {
		cost = *req.LeadCost
	}
	source := req.Source
	if source == "" {
		source = "Upload"
	}

	resp := ImportCommitResponse{}
	for _, row := range req.Rows {
		if !row.Valid() {
			resp.Skipped++
			continue
		}
		h.Ledger.AddLead(ledger.NewLead{
			Name:     row.Name,
			Phone:    row.Phone,
			Source:   source,
			LeadCost: cost,
			Address:  row.Address,
			Age:      row.Age,
			Gender:   row.Gender,
		})
		resp.Created++
	}

	h.Log.Info().Int("created", resp.Created).Int("skipped", resp.Skipped).Msg("import committed")
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rgehrsitz/aishcalc/internal/breakeven"
	"github.com/rgehrsitz/aishcalc/internal/compare"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/rgehrsitz/aishcalc/internal/output"
	"github.com/rgehrsitz/aishcalc/internal/tracker"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler serves the tracker endpoints
type Handler struct {
	svc      *tracker.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates a handler over svc
func NewHandler(svc *tracker.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, validate: newValidator(), logger: logger}
}

type benefitRequest struct {
	Household            string `json:"householdType" validate:"omitempty,oneof=single family"`
	EmploymentIncome     string `json:"employmentIncome" validate:"omitempty,numeric"`
	SelfEmploymentIncome string `json:"selfEmploymentIncome" validate:"omitempty,numeric"`
	OtherIncome          string `json:"otherIncome" validate:"omitempty,numeric"`
	Save                 bool   `json:"save"`
}

type paydayRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Amount string `json:"amount" validate:"required,numeric"`
	Note   string `json:"note" validate:"max=200"`
}

type paydayUpdateRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
	Note   string `json:"note" validate:"max=200"`
}

type paymentRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Amount string `json:"amount" validate:"required,numeric"`
}

type adjustmentRequest struct {
	Value string `json:"value" validate:"required,numeric"`
}

type compareRequest struct {
	Household    string   `json:"householdType" validate:"omitempty,oneof=single family"`
	Base         string   `json:"base" validate:"required,numeric"`
	Alternatives []string `json:"alternatives" validate:"required,min=1,dive,required,numeric"`
	Adjusted     bool     `json:"adjusted"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", domain.ErrInvalidInput, s)
	}
	return d, nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CalculateBenefit previews the benefit with the current factor. When save
// is set the inputs are remembered for the next session.
func (h *Handler) CalculateBenefit(w http.ResponseWriter, r *http.Request) {
	var req benefitRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	household := domain.HouseholdSingle
	if req.Household != "" {
		household = domain.ParseHouseholdType(req.Household)
	}
	var income domain.IncomeBreakdown
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&income.Employment, req.EmploymentIncome},
		{&income.SelfEmployment, req.SelfEmploymentIncome},
		{&income.Other, req.OtherIncome},
	} {
		v, err := parseAmount(f.src)
		if err != nil {
			handleServiceError(w, err, h.logger)
			return
		}
		*f.dst = v
	}

	if req.Save {
		err := h.svc.SaveCalculatorInputs(r.Context(), domain.CalculatorInputs{Household: household, Income: income})
		if err != nil {
			handleServiceError(w, err, h.logger)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.svc.Preview(income, household))
}

// GetPeriod summarises one benefit month. month is 1-12.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month, expected 1-12")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.PeriodSummary(domain.MonthKey{Year: year, Month: time.Month(month)}))
}

// GetThresholds finds the income at which the benefit stops, or falls to the
// target query parameter. household and adjusted are optional.
func (h *Handler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := breakeven.Request{
		Household: domain.ParseHouseholdType(q.Get("household")),
		Goal:      breakeven.GoalCutoff,
	}
	if v := q.Get("target"); v != "" {
		target, err := parseAmount(v)
		if err != nil {
			handleServiceError(w, err, h.logger)
			return
		}
		req.Goal = breakeven.GoalMatchBenefit
		req.TargetBenefit = target
	}
	adjusted, _ := strconv.ParseBool(q.Get("adjusted"))

	results, err := h.svc.Thresholds(r.Context(), req, adjusted)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// CompareIncomes evaluates a base monthly income against alternatives for
// one household type
func (h *Handler) CompareIncomes(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	household := domain.HouseholdSingle
	if req.Household != "" {
		household = domain.ParseHouseholdType(req.Household)
	}
	amounts := make([]decimal.Decimal, 0, len(req.Alternatives)+1)
	for _, v := range append([]string{req.Base}, req.Alternatives...) {
		amount, err := parseAmount(v)
		if err != nil {
			handleServiceError(w, err, h.logger)
			return
		}
		amounts = append(amounts, amount)
	}

	scenarios := compare.IncomeScenarios(household, amounts...)
	set, err := h.svc.Compare(r.Context(), scenarios[0], scenarios[1:], req.Adjusted)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) ListPaydays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, output.PaydaysReport(h.svc.Paydays()).Paydays)
}

func (h *Handler) AddPayday(w http.ResponseWriter, r *http.Request) {
	var req paydayRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	if err := h.svc.AddPayday(r.Context(), date, amount, req.Note); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, output.PaydayRow{Date: date, Amount: amount, Note: req.Note})
}

func (h *Handler) UpdatePayday(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}
	var req paydayUpdateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	if err := h.svc.UpdatePayday(r.Context(), date, amount, req.Note); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, output.PaydayRow{Date: date, Amount: amount, Note: req.Note})
}

func (h *Handler) RemovePayday(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}
	if err := h.svc.RemovePayday(r.Context(), date); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearPaydays(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearPaydays(r.Context()); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, output.PaymentsReport(h.svc.Payments()).Payments)
}

// RecordPayment files an actual payment and returns the recomputed factor
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	outcome, err := h.svc.RecordPayment(r.Context(), date, amount)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

func (h *Handler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}
	outcome, err := h.svc.RemovePayment(r.Context(), date)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) ClearPayments(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearPayments(r.Context()); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAdjustment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// SetAdjustment applies a manual factor until the next recompute
func (h *Handler) SetAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	value, err := parseAmount(req.Value)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	state, err := h.svc.SetManualFactor(r.Context(), value)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.svc.Recompute(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history := h.svc.History()
	if history == nil {
		history = []domain.AdjustmentHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, history)
}

// Export downloads the full state as an export document
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export()
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tracker.ExportFileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import replaces the state with the posted export document
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	summary, err := h.svc.Import(r.Context(), data)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context()); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "all data cleared"})
}

func (h *Handler) pathDate(w http.ResponseWriter, r *http.Request) (domain.Date, bool) {
	date, err := domain.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, err, h.logger)
		return domain.Date{}, false
	}
	return date, true
}

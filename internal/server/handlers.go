package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/logging"
	"options-lab/internal/models"
	"options-lab/internal/pricing"
	"options-lab/internal/strategies"
)

// Default curve settings for POST /v1/payoff.
const (
	defaultCurveRange   = 0.5
	defaultCurveSamples = 100
)

type pricingQuery struct {
	Spot   float64 `schema:"spot,required"`
	Strike float64 `schema:"strike,required"`
	Years  float64 `schema:"years"`
	Days   float64 `schema:"days"`
	Rate   float64 `schema:"rate"`
	Vol    float64 `schema:"vol"`
	Type   string  `schema:"type"`
	Price  float64 `schema:"price"`
}

func (q pricingQuery) input() models.PricingInput {
	years := q.Years
	if years == 0 && q.Days > 0 {
		years = q.Days / pricing.DaysPerYear
	}
	return models.PricingInput{
		Spot:         q.Spot,
		Strike:       q.Strike,
		TimeToExpiry: years,
		RiskFreeRate: q.Rate,
		Volatility:   q.Vol,
	}
}

func (s *Server) decodeQuery(r *http.Request) (pricingQuery, error) {
	var q pricingQuery
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		return q, apperrors.NewValidationError("query", r.URL.RawQuery, err.Error())
	}
	return q, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewValidationError("body", nil, err.Error())
	}
	return nil
}

func parseType(s string) (models.OptionType, error) {
	if s == "" {
		return models.OptionTypeCall, nil
	}
	t, err := models.ParseOptionType(s)
	if err != nil {
		return "", apperrors.NewValidationError("type", s, err.Error())
	}
	return t, nil
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	q, err := s.decodeQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	prices, err := s.engine.Price(q.input())
	logging.LogCalculation(logging.FromContext(r.Context()), "price", time.Since(start), err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

func (s *Server) handleGreeks(w http.ResponseWriter, r *http.Request) {
	q, err := s.decodeQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := parseType(q.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	greeks, err := s.engine.Greeks(q.input(), t)
	logging.LogCalculation(logging.FromContext(r.Context()), "greeks", time.Since(start), err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, greeks)
}

type ivResponse struct {
	ImpliedVolatility float64 `json:"iv"`
}

func (s *Server) handleImpliedVolatility(w http.ResponseWriter, r *http.Request) {
	q, err := s.decodeQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := parseType(q.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	iv, err := s.engine.ImpliedVolatility(q.input(), t, q.Price)
	logging.LogCalculation(logging.FromContext(r.Context()), "iv", time.Since(start), err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ivResponse{ImpliedVolatility: iv})
}

type payoffRequest struct {
	Legs    []models.StrategyLeg `json:"legs"`
	Center  float64              `json:"center"`
	Range   float64              `json:"range"`
	Samples int                  `json:"samples"`
}

type payoffResponse struct {
	Points    []models.PayoffPoint   `json:"points"`
	KeyPrices models.KeyPriceSummary `json:"key_prices"`
}

func (s *Server) handlePayoff(w http.ResponseWriter, r *http.Request) {
	var req payoffRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	resp, err := s.payoff(req)
	logging.LogCalculation(logging.FromContext(r.Context()), "payoff", time.Since(start), err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) payoff(req payoffRequest) (payoffResponse, error) {
	summary, err := s.calc.KeyPrices(req.Legs)
	if err != nil {
		return payoffResponse{}, err
	}
	center := req.Center
	if center == 0 {
		center = (summary.Strikes[0] + summary.Strikes[len(summary.Strikes)-1]) / 2
	}
	rng := req.Range
	if rng == 0 {
		rng = defaultCurveRange
	}
	samples := req.Samples
	if samples == 0 {
		samples = defaultCurveSamples
	}
	points, err := s.calc.GenerateCurve(req.Legs, center, rng, samples)
	if err != nil {
		return payoffResponse{}, err
	}
	return payoffResponse{Points: points, KeyPrices: summary}, nil
}

type keyPricesRequest struct {
	Legs []models.StrategyLeg `json:"legs"`
}

func (s *Server) handleKeyPrices(w http.ResponseWriter, r *http.Request) {
	var req keyPricesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	summary, err := s.calc.KeyPrices(req.Legs)
	logging.LogCalculation(logging.FromContext(r.Context()), "keyprices", time.Since(start), err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, strategies.List())
}

type buildRequest struct {
	ATM      float64   `json:"atm"`
	Width    float64   `json:"width"`
	Wing     float64   `json:"wing"`
	Quantity int       `json:"quantity"`
	Premiums []float64 `json:"premiums"`
	// Market inputs used to price legs when premiums are omitted.
	Years float64 `json:"years"`
	Rate  float64 `json:"rate"`
	Vol   float64 `json:"vol"`
}

type buildResponse struct {
	Name      string                 `json:"name"`
	Legs      []models.StrategyLeg   `json:"legs"`
	KeyPrices models.KeyPriceSummary `json:"key_prices"`
}

func (s *Server) handleBuildStrategy(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var req buildRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	spec := strategies.BuildSpec{
		ATM:      req.ATM,
		Width:    req.Width,
		Wing:     req.Wing,
		Quantity: req.Quantity,
		Premiums: req.Premiums,
		Premium: strategies.ModelPremiums(s.engine, models.PricingInput{
			TimeToExpiry: req.Years,
			RiskFreeRate: req.Rate,
			Volatility:   req.Vol,
		}),
	}

	legs, err := strategies.Build(name, spec)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := s.calc.KeyPrices(legs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse{Name: name, Legs: legs, KeyPrices: summary})
}

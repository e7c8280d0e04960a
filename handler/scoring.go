package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"trader-bot/internal/domain"
	"trader-bot/internal/usecase"
)

const maxBodyBytes = 1 << 20

// flexNumber accepts a JSON number or a numeric string.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not a number: %s", b)
	}
	*n = flexNumber(v)
	return nil
}

// int truncates like a float-to-int conversion but saturates at the int
// range instead of wrapping.
func (n flexNumber) int() int {
	v := float64(n)
	switch {
	case v >= float64(math.MaxInt):
		return math.MaxInt
	case v <= float64(math.MinInt):
		return math.MinInt
	default:
		return int(v)
	}
}

// textOr renders a loosely typed prompt field; absent or null uses def.
func textOr(v any, def string) string {
	if v == nil {
		return def
	}
	return domain.Text(v)
}

// Fields that only feed the prompt are decoded as any and rendered as text,
// so callers may send strings or numbers.
type interpretRequest struct {
	Name          any `json:"nombre"`
	ProfileCode   any `json:"perfil_codigo"`
	ProfileName   any `json:"perfil_nombre"`
	Level         any `json:"nivel"`
	CapitalTotal  any `json:"capital_total"`
	CapitalTrader any `json:"capital_trader"`
	CapitalFree   any `json:"capital_libre"`
}

type interpretResponse struct {
	HTML string `json:"interpretacion_html"`
}

type traderRequest struct {
	Score    flexNumber `json:"puntaje"`
	Answers  any        `json:"respuestas"`
	Operator any        `json:"operador_asignado"`
}

type traderResponse struct {
	Profile     string `json:"perfil"`
	Level       string `json:"nivel"`
	Description string `json:"descripcion"`
	Score       int    `json:"puntaje"`
	Answers     any    `json:"respuestas"`
}

type aptitudeRequest struct {
	Name    any        `json:"nombre"`
	Score   flexNumber `json:"puntaje"`
	Answers any        `json:"respuestas"`
}

type aptitudeResponse struct {
	Aptitude string `json:"aptitud"`
	Fit      bool   `json:"apto"`
	Message  string `json:"mensaje"`
	Score    int    `json:"puntaje"`
	Answers  any    `json:"respuestas"`
}

// decodeJSON fills dst, which carries the defaults for absent fields.
// Content-Type is not checked.
func decodeJSON(r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return usecase.NewInvalidInput("unreadable_body", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return usecase.NewInvalidInput("invalid_json", err)
	}
	return nil
}

func (h *Handler) interpretProfile(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	d := usecase.DefaultProfileInput()
	html, err := h.scoring.InterpretProfile(r.Context(), usecase.ProfileInput{
		Name:          textOr(req.Name, d.Name),
		ProfileCode:   textOr(req.ProfileCode, d.ProfileCode),
		ProfileName:   textOr(req.ProfileName, d.ProfileName),
		Level:         textOr(req.Level, d.Level),
		CapitalTotal:  textOr(req.CapitalTotal, d.CapitalTotal),
		CapitalTrader: textOr(req.CapitalTrader, d.CapitalTrader),
		CapitalFree:   textOr(req.CapitalFree, d.CapitalFree),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, interpretResponse{HTML: html})
}

func (h *Handler) traderProfile(w http.ResponseWriter, r *http.Request) {
	req := traderRequest{Answers: []any{}}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.scoring.TraderProfile(r.Context(), usecase.TraderInput{
		Score:    req.Score.int(),
		Answers:  req.Answers,
		Operator: textOr(req.Operator, usecase.DefaultOperator),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, traderResponse{
		Profile:     res.Profile,
		Level:       res.Level,
		Description: res.Description,
		Score:       res.Score,
		Answers:     res.Answers,
	})
}

func (h *Handler) ikarusAptitude(w http.ResponseWriter, r *http.Request) {
	req := aptitudeRequest{Answers: []any{}}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.scoring.IkarusAptitude(r.Context(), usecase.AptitudeInput{
		Name:    textOr(req.Name, ""),
		Score:   req.Score.int(),
		Answers: req.Answers,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aptitudeResponse{
		Aptitude: res.Aptitude,
		Fit:      res.Fit,
		Message:  res.Message,
		Score:    res.Score,
		Answers:  res.Answers,
	})
}

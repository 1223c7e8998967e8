package enquiry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/wolfman30/voiceflow-enquiry/internal/observability/metrics"
	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

// maxBodyBytes bounds how much of a request body is read.
const maxBodyBytes = 64 << 10

const (
	msgMethodNotAllowed = "Method not allowed"
	msgMissingFields    = "Missing required fields"
	msgInternalError    = "Internal server error"
)

// Dispatcher relays a validated enquiry to the operator channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Enquiry) Outcome
}

// Response is the transport-neutral result of processing one submission.
type Response struct {
	Status int
	Body   any
}

type okBody struct {
	OK bool `json:"ok"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Handler is the request boundary for enquiry submissions. It is the only
// place where validation and dispatch results become HTTP status codes.
type Handler struct {
	dispatcher Dispatcher
	metrics    *metrics.RelayMetrics
	logger     *logging.Logger
}

// NewHandler creates a new enquiry handler
func NewHandler(dispatcher Dispatcher, m *metrics.RelayMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// ServeHTTP handles POST /api/send.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Method == http.MethodPost && r.Body != nil {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.logger.Warn("enquiry: failed to read request body", "error", err)
		} else {
			body = data
		}
	}

	resp := h.Process(r.Context(), r.Method, body)
	if resp.Status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", http.MethodPost)
	}
	writeJSON(w, resp.Status, resp.Body)
}

// Process runs one submission through validation and dispatch.
func (h *Handler) Process(ctx context.Context, method string, body []byte) Response {
	if method != http.MethodPost {
		h.metrics.ObserveEnquiry(metrics.ResultMethodNotAllowed)
		return Response{Status: http.StatusMethodNotAllowed, Body: errorBody{Error: msgMethodNotAllowed}}
	}

	enq, err := Validate(DecodePayload(body))
	if err != nil {
		h.logger.Info("enquiry rejected", "error", err)
		h.metrics.ObserveEnquiry(metrics.ResultInvalid)
		return Response{Status: http.StatusBadRequest, Body: errorBody{Error: msgMissingFields}}
	}

	outcome := h.dispatch(ctx, enq)
	if !outcome.OK {
		h.logger.Error("enquiry dispatch failed", "error", outcome.Err)
		h.metrics.ObserveEnquiry(metrics.ResultFailed)
		return Response{Status: http.StatusInternalServerError, Body: errorBody{Error: msgInternalError}}
	}

	h.logger.Info("enquiry accepted", "name", enq.Name, "channels", summarize(outcome.Results))
	h.metrics.ObserveEnquiry(metrics.ResultAccepted)
	return Response{Status: http.StatusOK, Body: okBody{OK: true}}
}

func (h *Handler) dispatch(ctx context.Context, e Enquiry) (out Outcome) {
	if h.dispatcher == nil {
		return Outcome{Err: fmt.Errorf("%w: no dispatcher", ErrDispatchFault)}
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome{Err: fmt.Errorf("%w: panic: %v", ErrDispatchFault, rec)}
		}
	}()
	return h.dispatcher.Dispatch(ctx, e)
}

func summarize(results []ChannelResult) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		out[string(r.Channel)] = string(r.Status)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/protobuf/types/known/structpb"

	"tasks-lab/codec"
	"tasks-lab/errors"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type queryResponse struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

type subscriptionResponse struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

func (h *Handler) postCommand(w http.ResponseWriter, r *http.Request) {
	msg, err := readMessage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	env, err := codec.DecodeCommand(msg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ack := h.commands.Post(r.Context(), env)
	res, err := codec.EncodeAck(ack)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, res)
}

func (h *Handler) postQuery(w http.ResponseWriter, r *http.Request) {
	msg, err := readMessage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	query, err := codec.DecodeQuery(msg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.queries.Send(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Path: result.Path, Count: result.Count})
}

func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	msg, err := readMessage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	topic, err := codec.DecodeTopic(msg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sub, err := h.subscriptions.Create(r.Context(), topic)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse{ID: sub.ID.String(), Path: SubscriptionPath(sub.ID)})
}

func (h *Handler) keepUpSubscription(w http.ResponseWriter, r *http.Request) {
	msg, err := readMessage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sub, err := codec.DecodeSubscription(msg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.subscriptions.KeepUp(r.Context(), sub.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse{ID: sub.ID.String(), Path: SubscriptionPath(sub.ID)})
}

func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	msg, err := readMessage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sub, err := codec.DecodeSubscription(msg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.subscriptions.Cancel(r.Context(), sub.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse{ID: sub.ID.String(), Path: SubscriptionPath(sub.ID)})
}

func readMessage(r *http.Request) (*structpb.Struct, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return codec.UnmarshalJSON(body)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		h.log.Debug("Request refused", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: middleware.GetReqID(r.Context())})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidMessage), errors.Is(err, errors.ErrInvalidCommand),
		errors.Is(err, errors.ErrUnknownType), errors.Is(err, errors.ErrUnsupportedTarget):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrSubscriptionNotFound), errors.Is(err, errors.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrSubscriptionExists):
		return http.StatusConflict
	case errors.Is(err, errors.ErrCommandBusFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeMessage(w http.ResponseWriter, status int, msg *structpb.Struct) {
	body, err := codec.MarshalJSON(msg)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

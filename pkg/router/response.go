package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

var httpStatuses = map[errorx.Code]int{
	errorx.BadRequest:         http.StatusBadRequest,
	errorx.InvalidSignature:   http.StatusBadRequest,
	errorx.Unauthenticated:    http.StatusUnauthorized,
	errorx.PermissionDenied:   http.StatusForbidden,
	errorx.NotFound:           http.StatusNotFound,
	errorx.AlreadyExists:      http.StatusConflict,
	errorx.Conflict:           http.StatusConflict,
	errorx.TooManyRequests:    http.StatusTooManyRequests,
	errorx.Unavailable:        http.StatusServiceUnavailable,
	errorx.NotImplemented:     http.StatusNotImplemented,
	errorx.RedemptionRejected: http.StatusUnprocessableEntity,
}

func newResponse(data any) response {
	return response{Code: 0, Data: data}
}

func newErrorResponse(err error) (response, int) {
	var errx errorx.Error
	if errors.As(err, &errx) {
		status, ok := httpStatuses[errx.Code]
		if !ok {
			status = http.StatusInternalServerError
		}

		return response{Code: int64(errx.Code), Error: errx.Message}, status
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}, http.StatusInternalServerError
}

func writeResponse(ctx context.Context) {
	w := xcontext.HTTPWriter(ctx)
	if err := xcontext.Error(ctx); err != nil {
		resp, status := newErrorResponse(err)
		if err := WriteJSON(w, status, resp); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, newResponse(xcontext.Response(ctx))); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}

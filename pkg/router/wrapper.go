package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

type parseFunc[Request any] func(context.Context, *Request) error

func wrapHandler[Request, Response any](
	router *Router,
	parse parseFunc[Request],
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := router.newContext(r, w)

		defer func() {
			for _, closer := range router.closers {
				closer(ctx)
			}
		}()

		for _, before := range router.befores {
			newCtx, err := before(ctx)
			if err != nil {
				ctx = xcontext.WithError(ctx, err)
				writeResponse(ctx)
				return
			}
			ctx = newCtx
		}

		var req Request
		if err := parse(ctx, &req); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
			writeResponse(ctx)
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeResponse(ctx)
			return
		}

		ctx = xcontext.WithResponse(ctx, resp)
		for _, after := range router.afters {
			newCtx, err := after(ctx)
			if err != nil {
				ctx = xcontext.WithError(ctx, err)
				break
			}
			ctx = newCtx
		}

		writeResponse(ctx)
	}
}

func parseQuery[Request any](ctx context.Context, req *Request) error {
	query := xcontext.HTTPRequest(ctx).URL.Query()
	input := make(map[string]any, len(query))
	for key, values := range query {
		if len(values) == 1 {
			input[key] = values[0]
		} else {
			input[key] = values
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           req,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

// parseBody decodes the JSON body and restores it on the request, so a
// handler can still read the raw payload (webhook signatures are computed
// over the exact bytes).
func parseBody[Request any](ctx context.Context, req *Request) error {
	r := xcontext.HTTPRequest(ctx)
	if r.Body == nil {
		return nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	return json.Unmarshal(body, req)
}

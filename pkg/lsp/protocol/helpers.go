package protocol

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func NonNilSlice[T any](x []T) []T {
	if x == nil {
		return []T{}
	}
	return x
}

func newParseError(err error) *jrpc2.Error {
	return &jrpc2.Error{
		Code:    -32700, // Parse error
		Message: err.Error(),
	}
}

func createHandler[T any, O any](method func(ctx context.Context, params *T) (O, error)) jrpc2.Handler {
	return func(ctx context.Context, r *jrpc2.Request) (any, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}

		result, err := method(ctx, &params)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

func createEmptyResultHandler[T any](method func(ctx context.Context, params *T) error) jrpc2.Handler {
	return func(ctx context.Context, r *jrpc2.Request) (any, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}

		return nil, method(ctx, &params)
	}
}

func createEmptyHandler(method func(ctx context.Context) error) jrpc2.Handler {
	return func(ctx context.Context, r *jrpc2.Request) (any, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		return nil, method(ctx)
	}
}

type Callbacker interface {
	Callback(ctx context.Context, method string, params any) (*jrpc2.Response, error)
	Notify(ctx context.Context, method string, params any) error
}

func createNotify[I any](ctx context.Context, client Callbacker, method string, params *I) error {
	return client.Notify(ctx, method, params)
}

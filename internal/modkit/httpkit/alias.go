// Package httpkit is what modules mount handlers with, so they never import the platform http package directly
package httpkit

import (
	"net/http"

	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
	"github.com/maurolguin1/ig-moderation/internal/platform/net/http/bind"
)

type (
	// Response is a status plus the body placed under the envelope's data
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router

	// JSONOptions tunes body decoding, e.g. a larger cap for bulk chunks
	JSONOptions = bind.JSONOptions
)

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// reply turns a handler result into a Response; a returned Response passes through untouched
func reply(out any, err error) Response {
	if err != nil {
		return phttp.Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return phttp.OK(out)
}

// JSON decodes and validates a T body before calling fn
func JSON[T any](fn func(*http.Request, T) (any, error), opts ...JSONOptions) Handler {
	return phttp.Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r, opts...)
		if err != nil {
			return phttp.Error(err)
		}
		return reply(fn(r, in))
	})
}

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response { return reply(fn(r)) })
}

// RespondError writes err as an error envelope, for handlers that stream their own body
func RespondError(w http.ResponseWriter, r *http.Request, err error) { phttp.RespondError(w, r, err) }

// Param returns the named path parameter
func Param(r *http.Request, key string) string { return phttp.URLParam(r, key) }

// Decode parses and validates a JSON body for handlers that write their own response
func Decode[T any](r *http.Request) (T, error) { return bind.ParseJSON[T](r) }

// Package handler provides a small generic adapter between chi routes and
// typed request/response functions. Handlers receive a decoded request
// struct and return a Response; decoding, error rendering and content
// negotiation live here so module handlers stay declarative.
package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/memberboard/pkg/binder"
)

// Response renders itself onto the http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Binder decodes part of the request into v. A binder that does not apply
// to the request (wrong method, no body) returns ErrBinderNotApplicable
// and the next binder is tried.
type Binder func(r *http.Request, v any) error

// HandlerFunc is a typed request handler. R is the request payload type,
// decoded by the configured binders before the function is invoked.
type HandlerFunc[R any] func(r *http.Request, req R) Response

// ErrorHandler converts an error returned by binding or rendering into a
// Response. The default maps validation errors to 422 and everything else
// to a generic 400/500.
type ErrorHandler func(err error) Response

type options struct {
	binders      []Binder
	errorHandler ErrorHandler
}

// Option configures Wrap.
type Option func(*options)

// WithBinder appends a binder to the decoding chain.
func WithBinder(b Binder) Option {
	return func(o *options) {
		o.binders = append(o.binders, b)
	}
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = h
	}
}

// Wrap adapts a typed HandlerFunc into a http.HandlerFunc. Binders run in
// order and stop at the first hard failure; ErrBinderNotApplicable is
// skipped so body and query binders can share a route.
func Wrap[R any](fn HandlerFunc[R], opts ...Option) http.HandlerFunc {
	o := options{
		errorHandler: DefaultErrorHandler,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req R

		for _, bind := range o.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrBinderNotApplicable) {
					continue
				}
				renderResponse(w, r, o.errorHandler(err))
				return
			}
		}

		resp := fn(r, req)
		if resp == nil {
			resp = Message("ok")
		}
		renderResponse(w, r, resp)
	}
}

func renderResponse(w http.ResponseWriter, r *http.Request, resp Response) {
	if err := resp.Render(w, r); err != nil {
		// Rendering failed after headers may have been written; nothing
		// safe to do but give up on this response.
		return
	}
}

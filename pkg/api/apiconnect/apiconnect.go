// Package apiconnect wires the SplitSmart services to connect: procedure
// names, handler constructors and typed clients.
//
// Handlers accept application/json and application/cbor. Clients speak
// JSON unless given connect.WithCodec(api.CBORCodec{}).
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/pkg/api"
)

const (
	AuthServiceName    = "splitsmart.v1.AuthService"
	UserServiceName    = "splitsmart.v1.UserService"
	GroupServiceName   = "splitsmart.v1.GroupService"
	ExpenseServiceName = "splitsmart.v1.ExpenseService"
)

// handlerOptions puts the message codecs ahead of caller options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{
		connect.WithCodec(api.JSONCodec{}),
		connect.WithCodec(api.CBORCodec{}),
	}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

// router dispatches by procedure path under one service prefix.
type router map[string]http.Handler

func (rt router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rt[r.URL.Path]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func unary[Req, Res any](procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) http.Handler {
	return connect.NewUnaryHandler(procedure, fn, opts...)
}

func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], req *connect.Request[Req]) (*connect.Response[Res], error) {
	return c.CallUnary(ctx, req)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

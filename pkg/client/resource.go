package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// resource implements the operations every collection shares. D is the data
// shape returned by the service, P the create parameters and U the partial
// update. Sub-clients differ only in the kind, the base path and the shapes.
type resource[D, P, U any] struct {
	client *BaseClient
	kind   string
	base   string
}

func newResource[D, P, U any](client *BaseClient, kind, base string) resource[D, P, U] {
	return resource[D, P, U]{client: client, kind: kind, base: base}
}

func (r resource[D, P, U]) path(key string, rest ...string) string {
	return "/" + r.base + escapePath(append([]string{key}, rest...)...)
}

func (r resource[D, P, U]) list(ctx context.Context, op string) ([]D, error) {
	items, err := invoke[[]D](ctx, r.client, request{
		resource: r.kind,
		action:   "list",
		op:       op,
		method:   http.MethodGet,
		path:     "/" + r.base + "/",
	})
	if err != nil {
		return nil, err
	}
	return *items, nil
}

func (r resource[D, P, U]) get(ctx context.Context, key string) (*D, error) {
	return invoke[D](ctx, r.client, r.getRequest(key))
}

func (r resource[D, P, U]) getRequest(key string) request {
	return request{
		resource: r.kind,
		action:   "get",
		op:       fmt.Sprintf("get %s '%s'", r.kind, key),
		method:   http.MethodGet,
		path:     r.path(key),
	}
}

func (r resource[D, P, U]) create(ctx context.Context, params *P) (*D, error) {
	return invoke[D](ctx, r.client, request{
		resource: r.kind,
		action:   "create",
		op:       "create " + r.kind,
		method:   http.MethodPost,
		path:     "/" + r.base + "/create",
		body:     params,
	})
}

func (r resource[D, P, U]) update(ctx context.Context, key string, patch *U) (*D, error) {
	return invoke[D](ctx, r.client, request{
		resource: r.kind,
		action:   "update",
		op:       fmt.Sprintf("update %s '%s'", r.kind, key),
		method:   http.MethodPut,
		path:     r.path(key),
		body:     patch,
	})
}

func (r resource[D, P, U]) delete(ctx context.Context, key string) (*api.StatusMessage, error) {
	return invoke[api.StatusMessage](ctx, r.client, request{
		resource: r.kind,
		action:   "delete",
		op:       fmt.Sprintf("delete %s '%s'", r.kind, key),
		method:   http.MethodDelete,
		path:     r.path(key),
	})
}

// action returns a request against a nested path of one resource
func (r resource[D, P, U]) action(name, op, method string, key string, rest ...string) request {
	return request{
		resource: r.kind,
		action:   name,
		op:       op,
		method:   method,
		path:     r.path(key, rest...),
	}
}

// Package http_client provides the `http` natives. Every call returns an
// object `{status, headers, body}`; a JSON response body is decoded, any
// other body is returned as a string. Transport failures are logged to the
// order and yield null.
package http_client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/orderlog"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/value"
)

const Name = "http"

// Module implements the registry.Module interface. Client is used for all
// requests; nil means a client with DefaultTimeout.
type Module struct {
	Client *http.Client
}

// Register registers get, post, put, patch and delete.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = newHttpClient(DefaultTimeout)
	}

	withoutBody := []registry.Param{
		{Name: "url", Kind: registry.KindString},
		{Name: "env", Kind: registry.KindEnv},
		{Name: "span", Kind: registry.KindSpan},
	}
	withBody := []registry.Param{
		{Name: "url", Kind: registry.KindString},
		{Name: "body", Kind: registry.KindAny, Optional: true},
		{Name: "env", Kind: registry.KindEnv},
		{Name: "span", Kind: registry.KindSpan},
	}

	r.Register(Name, "get", &registry.Handler{Params: withoutBody, Fn: request(client, http.MethodGet, false)})
	r.Register(Name, "delete", &registry.Handler{Params: withoutBody, Fn: request(client, http.MethodDelete, false)})
	r.Register(Name, "post", &registry.Handler{Params: withBody, Fn: request(client, http.MethodPost, true)})
	r.Register(Name, "put", &registry.Handler{Params: withBody, Fn: request(client, http.MethodPut, true)})
	r.Register(Name, "patch", &registry.Handler{Params: withBody, Fn: request(client, http.MethodPatch, true)})
}

func request(client *http.Client, method string, hasBody bool) registry.Func {
	return func(ctx context.Context, args registry.Args) (any, error) {
		rawURL := args.String(0)
		next := 1
		var body value.Value
		if hasBody {
			body = args.Value(1)
			next = 2
		}
		env := args.Env(next)
		span := args.Span(next + 1)

		logger := ctxlog.FromContext(ctx).With("method", method, "url", rawURL)
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return nil, evalerr.Fatalf("invalid url `%s`: %v", rawURL, err)
		}

		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(value.ToJSON(body))
			if err != nil {
				return nil, evalerr.Fatalf("failed to encode request body: %v", err)
			}
			reader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return nil, evalerr.Fatalf("failed to create request: %v", err)
		}
		if reader != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		logger.Info("Making HTTP request")
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("HTTP request failed", "error", err)
			env.Log(ctx, orderlog.Entry{Level: orderlog.Error, Msg: err.Error(), Span: &span})
			return nil, nil
		}
		defer resp.Body.Close()

		return readResponse(ctx, resp)
	}
}

func readResponse(ctx context.Context, resp *http.Response) (value.Value, error) {
	logger := ctxlog.FromContext(ctx)

	headers := make(value.Object, len(resp.Header))
	for name, values := range resp.Header {
		headers[strings.ToLower(name)] = value.String(strings.Join(values, ", "))
	}
	out := value.Object{
		"status":  value.Number(resp.StatusCode),
		"headers": headers,
		"body":    value.Null{},
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read response body", "error", err)
		return out, nil
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		decoded, err := value.ParseJSON(raw)
		if err != nil {
			logger.Error("Failed to decode JSON response body", "error", err)
			return out, nil
		}
		out["body"] = decoded
		return out, nil
	}
	out["body"] = value.String(raw)
	return out, nil
}

func isJSON(contentType string) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	return strings.Contains(contentType, "json")
}

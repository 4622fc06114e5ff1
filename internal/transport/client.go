package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"eke/internal/domain"
)

// HTTPClient talks to a Server.
type HTTPClient struct {
	Base string
	HTTP *http.Client
}

// NewHTTPClient returns a client for the server at base. A nil hc selects
// http.DefaultClient.
func NewHTTPClient(base string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

func (c *HTTPClient) Register(ctx context.Context, reg domain.Registration) error {
	return c.post(ctx, "/register", encodeRegistration(reg), nil)
}

func (c *HTTPClient) Negotiate(ctx context.Context, round domain.Round, f domain.Frame) (domain.Frame, error) {
	return c.exchange(ctx, "/"+round.String(), f)
}

func (c *HTTPClient) Send(ctx context.Context, f domain.Frame) (domain.Frame, error) {
	return c.exchange(ctx, "/send", f)
}

func (c *HTTPClient) Close(ctx context.Context, username domain.Username, id domain.NegotiationID) error {
	return c.post(ctx, "/close", encodeFrame(domain.Frame{Username: username, NegotiationID: id}), nil)
}

// Health reports whether the server answers its health check.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("eke get /healthz: %s", resp.Status)
	}
	return nil
}

func (c *HTTPClient) exchange(ctx context.Context, path string, f domain.Frame) (domain.Frame, error) {
	var out frameJSON
	if err := c.post(ctx, path, encodeFrame(f), &out); err != nil {
		return domain.Frame{}, err
	}
	reply, err := out.decode()
	if err != nil {
		return domain.Frame{}, fmt.Errorf("eke post %s: %w", path, err)
	}
	return reply, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return remoteError(path, resp)
	}
	if out != nil {
		return json.NewDecoder(io.LimitReader(resp.Body, MaxBodyBytes)).Decode(out)
	}
	return nil
}

func remoteError(path string, resp *http.Response) error {
	var e errorJSON
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return fmt.Errorf("eke post %s: %s", path, resp.Status)
	}
	return fmt.Errorf("eke post %s: %w", path, &RemoteError{Status: resp.StatusCode, Code: e.Error, Message: e.Message})
}

var _ domain.ResponderClient = (*HTTPClient)(nil)

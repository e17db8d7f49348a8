package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/chanthanathaicook/backend/internal/middleware"
	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
)

type fakeClients map[uint64]uint64

func (f fakeClients) IDByAuthUser(_ context.Context, authUserID uint64) (uint64, error) {
	if id, found := f[authUserID]; found {
		return id, nil
	}
	return 0, repository.ErrClientNotFound
}

type recordingPublisher struct {
	sent []queue.Envelope
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, env queue.Envelope) error {
	p.sent = append(p.sent, env)
	return p.err
}

// newCtx builds an echo context for method/target with an optional JSON
// body.  A non-zero uid marks the request as authenticated, as JWTAuth does.
func newCtx(method, target, body string, uid uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != 0 {
		c.Set(middleware.ContextUserID, uid)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

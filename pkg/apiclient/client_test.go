package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idpclient/internal/platform/metrics"
	"idpclient/pkg/platform/sentinel"
	"idpclient/pkg/requestcontext"
	"idpclient/pkg/testutil"
)

func TestNew(t *testing.T) {
	t.Run("rejects relative base URL", func(t *testing.T) {
		_, err := New("/api")
		assert.ErrorContains(t, err, "must be absolute")
	})

	t.Run("timeout does not mutate the supplied http client", func(t *testing.T) {
		hc := &http.Client{Timeout: time.Minute}
		c, err := New("http://idp.test/api", WithHTTPClient(hc), WithTimeout(2*time.Second))
		require.NoError(t, err)
		assert.Equal(t, time.Minute, hc.Timeout)
		assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	})
}

func TestPathOf(t *testing.T) {
	assert.Equal(t, "/oidc/clients/c1/logo", PathOf("oidc", "clients", "c1", "logo"))
	assert.Equal(t, "/oidc/clients/a%2Fb", PathOf("oidc", "clients", "a/b"))
	assert.Equal(t, "/oidc/clients/with%20space", PathOf("oidc", "clients", "with space"))
}

func TestDoJSON(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodPost, "/api/oidc/clients", http.StatusCreated, map[string]string{"id": "c1"})

	c, err := New(fake.URL()+"/api/", WithAPIKey("key-1"), WithBearerToken("tok"), WithUserAgent("idpctl/test"))
	require.NoError(t, err)

	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	resp, err := c.Do(ctx, &Request{
		Operation: "oidc.createClient",
		Method:    http.MethodPost,
		Path:      "/oidc/clients",
		JSON:      map[string]any{"name": "Portal"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "c1", out.ID)

	reqs := fake.RequestsTo(http.MethodPost, "/api/oidc/clients")
	require.Len(t, reqs, 1)
	got := reqs[0]
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "key-1", got.Header.Get(HeaderAPIKey))
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.Equal(t, "idpctl/test", got.Header.Get("User-Agent"))
	assert.Equal(t, "req-42", got.Header.Get(HeaderRequestID))
	assert.JSONEq(t, `{"name":"Portal"}`, string(got.Body))
}

func TestDoWithoutBody(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodGet, "/oidc/device/info", http.StatusOK, map[string]string{"scope": "openid"})

	c, err := New(fake.URL())
	require.NoError(t, err)

	_, err = c.Do(context.Background(), &Request{
		Operation: "oidc.getDeviceCodeInfo",
		Method:    http.MethodGet,
		Path:      "/oidc/device/info",
		Query:     url.Values{"code": {"ABCD-1234"}},
	})
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "ABCD-1234", reqs[0].Query.Get("code"))
	assert.Empty(t, reqs[0].Body)
	assert.Empty(t, reqs[0].Header.Get("Content-Type"))
	assert.Empty(t, reqs[0].Header.Get(HeaderAPIKey))
	assert.NotEmpty(t, reqs[0].Header.Get(HeaderRequestID), "request id is minted when absent")
}

func TestDoMultipart(t *testing.T) {
	fake := testutil.NewFakeIdP(t)

	var (
		gotName        string
		gotContentType string
		gotContent     string
	)
	fake.HandleFunc(http.MethodPost, "/oidc/clients/{id}/logo", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName = header.Filename
		gotContentType = header.Header.Get("Content-Type")
		gotContent = string(data)
		w.WriteHeader(http.StatusNoContent)
	})

	c, err := New(fake.URL())
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), &Request{
		Operation: "oidc.updateClientLogo",
		Method:    http.MethodPost,
		Path:      PathOf("oidc", "clients", "c1", "logo"),
		File: &File{
			Name:        "logo.png",
			ContentType: "image/png",
			Content:     strings.NewReader("png-bytes"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "logo.png", gotName)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, "png-bytes", gotContent)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasPrefix(reqs[0].Header.Get("Content-Type"), "multipart/form-data; boundary="))
}

func TestDoErrors(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodGet, "/oidc/clients/missing", http.StatusNotFound, map[string]string{"error": "Record not found"})
	fake.Respond(http.MethodGet, "/oidc/clients/broken", http.StatusInternalServerError, nil)

	c, err := New(fake.URL())
	require.NoError(t, err)

	t.Run("non-2xx becomes RequestError carrying status and body", func(t *testing.T) {
		_, err := c.Do(context.Background(), &Request{
			Operation: "oidc.getClient",
			Method:    http.MethodGet,
			Path:      "/oidc/clients/missing",
		})
		require.Error(t, err)

		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
		assert.Equal(t, "Record not found", reqErr.Message)
		assert.JSONEq(t, `{"error":"Record not found"}`, string(reqErr.Body))
		assert.NotEmpty(t, reqErr.RequestID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
		assert.Equal(t, "GET /oidc/clients/missing: status 404: Record not found", err.Error())
	})

	t.Run("empty error body still classifies", func(t *testing.T) {
		_, err := c.Do(context.Background(), &Request{
			Operation: "oidc.getClient",
			Method:    http.MethodGet,
			Path:      "/oidc/clients/broken",
		})
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.Equal(t, "GET /oidc/clients/broken: status 500", err.Error())
	})

	t.Run("cancelled context is detectable", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Do(ctx, &Request{
			Operation: "oidc.getClient",
			Method:    http.MethodGet,
			Path:      "/oidc/clients/missing",
		})
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	})
}

func TestDoMultipartWithoutContent(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	c, err := New(fake.URL())
	require.NoError(t, err)

	var (
		gotName string
		gotLen  int
	)
	fake.HandleFunc(http.MethodPost, "/oidc/clients/{id}/logo", func(w http.ResponseWriter, r *http.Request) {
		f, h, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotName, gotLen = h.Filename, len(data)
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := c.Do(context.Background(), &Request{
		Operation: "oidc.updateClientLogo",
		Method:    http.MethodPost,
		Path:      "/oidc/clients/c1/logo",
		File:      &File{Name: "empty.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, fake.Requests(), 1)
	assert.Equal(t, "empty.png", gotName)
	assert.Zero(t, gotLen)
}

func TestDoRecordsMetrics(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodDelete, "/oidc/clients/c1", http.StatusNoContent, nil)
	fake.Respond(http.MethodDelete, "/oidc/clients/c2", http.StatusForbidden, nil)

	m := metrics.New(prometheus.NewRegistry())
	c, err := New(fake.URL(), WithMetrics(m))
	require.NoError(t, err)

	for _, id := range []string{"c1", "c2"} {
		_, _ = c.Do(context.Background(), &Request{
			Operation: "oidc.removeClient",
			Method:    http.MethodDelete,
			Path:      PathOf("oidc", "clients", id),
		})
	}

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.RequestsTotal.WithLabelValues("oidc.removeClient", "DELETE", "204")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.RequestsTotal.WithLabelValues("oidc.removeClient", "DELETE", "403")))
}

func TestServerMessage(t *testing.T) {
	assert.Equal(t, "bad", serverMessage([]byte(`{"error":"bad"}`)))
	assert.Equal(t, "worse", serverMessage([]byte(`{"message":"worse"}`)))
	assert.Equal(t, "", serverMessage([]byte(`{"error":{"code":1}}`)))
	assert.Equal(t, "", serverMessage([]byte(`not json`)))
	assert.Equal(t, "", serverMessage(nil))
}

func TestResponseDecode(t *testing.T) {
	var v map[string]any
	err := (&Response{Body: []byte("{")}).Decode(&v)
	assert.ErrorContains(t, err, "decode response body")
}

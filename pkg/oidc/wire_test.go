package oidc_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idpclient/pkg/apiclient"
	"idpclient/pkg/oidc"
	"idpclient/pkg/platform/sentinel"
	"idpclient/pkg/testutil"
)

// Justification: these run the gateway over the real transport against a
// recording server, pinning paths, query strings and bodies on the wire.

func newGateway(t *testing.T, fake *testutil.FakeIdP) *oidc.Gateway {
	t.Helper()
	api, err := apiclient.New(fake.URL()+"/api", apiclient.WithAPIKey("admin-key"))
	require.NoError(t, err)
	g, err := oidc.New(api)
	require.NoError(t, err)
	return g
}

func TestWireLogoRemovalSendsSingleDelete(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodDelete, "/api/oidc/clients/{id}/logo", http.StatusNoContent, nil)
	g := newGateway(t, fake)

	err := g.UpdateClientLogo(context.Background(), oidc.ClientMetaData{ID: "c1", HasLogo: true}, nil)
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/api/oidc/clients/c1/logo", reqs[0].Path)
	assert.Equal(t, "admin-key", reqs[0].Header.Get(apiclient.HeaderAPIKey))
}

func TestWireLogoUpload(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	var got string
	fake.HandleFunc(http.MethodPost, "/api/oidc/clients/{id}/logo", func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		got = string(data)
		w.WriteHeader(http.StatusNoContent)
	})
	g := newGateway(t, fake)

	err := g.UpdateClientLogo(context.Background(), oidc.ClientMetaData{ID: "c1"}, &oidc.Image{
		Filename:    "logo.svg",
		ContentType: "image/svg+xml",
		Content:     strings.NewReader("<svg/>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", got)
	assert.Len(t, fake.Requests(), 1)
}

func TestWireLogoUploadWithoutContentStillPosts(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodPost, "/api/oidc/clients/{id}/logo", http.StatusBadRequest, map[string]string{"error": "File is empty"})
	g := newGateway(t, fake)

	err := g.UpdateClientLogo(context.Background(), oidc.ClientMetaData{ID: "c1"}, &oidc.Image{Filename: "x.png"})
	assert.ErrorIs(t, err, sentinel.ErrValidation)
	assert.ErrorContains(t, err, "File is empty")

	assert.Len(t, fake.RequestsTo(http.MethodPost, "/api/oidc/clients/c1/logo"), 1)
	assert.Empty(t, fake.RequestsTo(http.MethodDelete, "/api/oidc/clients/c1/logo"))
}

func TestWireLogoNoopSendsNothing(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	g := newGateway(t, fake)

	require.NoError(t, g.UpdateClientLogo(context.Background(), oidc.ClientMetaData{ID: "c1"}, nil))
	assert.Empty(t, fake.Requests())
}

func TestWireDeviceCodeInfo(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodGet, "/api/oidc/device/info", http.StatusOK, map[string]any{
		"scope":                 "openid profile",
		"authorizationRequired": false,
		"client":                map[string]any{"id": "c9", "name": "TV", "hasLogo": true},
	})
	g := newGateway(t, fake)

	info, err := g.GetDeviceCodeInfo(context.Background(), "ABCD-1234")
	require.NoError(t, err)
	assert.Equal(t, "openid profile", info.Scope)
	assert.Equal(t, "c9", info.Client.ID)
	assert.True(t, info.Client.HasLogo)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "ABCD-1234", reqs[0].Query.Get("code"))
}

func TestWireListClientsWithoutOptions(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodGet, "/api/oidc/clients", http.StatusOK, map[string]any{
		"data": []map[string]any{
			{"id": "c1", "name": "One", "allowedUserGroupsCount": 0},
			{"id": "c2", "name": "Two", "allowedUserGroupsCount": 3},
		},
		"pagination": map[string]any{"totalPages": 1, "totalItems": 2, "currentPage": 1, "itemsPerPage": 20},
	})
	g := newGateway(t, fake)

	page, err := g.ListClients(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "c2", page.Data[1].ID)
	assert.Equal(t, 3, page.Data[1].AllowedUserGroupsCount)
	assert.False(t, page.HasNext())

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Query)
}

func TestWireServerErrorsClassify(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodPost, "/api/oidc/clients/{id}/secret", http.StatusForbidden, map[string]string{"error": "not an admin"})
	g := newGateway(t, fake)

	secret, err := g.CreateClientSecret(context.Background(), "c1")
	assert.Empty(t, secret)
	assert.ErrorIs(t, err, sentinel.ErrForbidden)

	var reqErr *apiclient.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "not an admin", reqErr.Message)
}

func TestWireVerifyDeviceCode(t *testing.T) {
	fake := testutil.NewFakeIdP(t)
	fake.Respond(http.MethodPost, "/api/oidc/device/verify", http.StatusNoContent, nil)
	g := newGateway(t, fake)

	resp, err := g.VerifyDeviceCode(context.Background(), "WXYZ-9876")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "WXYZ-9876", reqs[0].Query.Get("code"))
	assert.Empty(t, reqs[0].Body)
}

func TestWireAPIKeyGuard(t *testing.T) {
	fake := testutil.NewFakeIdP(t, testutil.WithAPIKey("admin-key"))
	fake.Respond(http.MethodDelete, "/api/oidc/clients/{id}", http.StatusNoContent, nil)

	t.Run("matching key passes", func(t *testing.T) {
		require.NoError(t, newGateway(t, fake).RemoveClient(context.Background(), "c1"))
	})

	t.Run("wrong key is unauthorized", func(t *testing.T) {
		api, err := apiclient.New(fake.URL()+"/api", apiclient.WithAPIKey("guess"))
		require.NoError(t, err)
		g, err := oidc.New(api)
		require.NoError(t, err)

		err = g.RemoveClient(context.Background(), "c1")
		assert.ErrorIs(t, err, sentinel.ErrUnauthorized)
		assert.ErrorContains(t, err, "You are not signed in")
	})
}

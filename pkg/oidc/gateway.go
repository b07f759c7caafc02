// Package oidc is a typed client for the identity provider's OIDC surface:
// the authorization handshake, client registrations with their logo, secret
// and allowed groups, and the device authorization flow.
//
// Gateway holds no state. Each method issues at most one request through the
// Doer it was built with and returns transport errors unchanged.
package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"idpclient/pkg/apiclient"
	"idpclient/pkg/pagination"
)

// Operation names used for request logs, metrics, and spans.
const (
	OpAuthorize               = "oidc.authorize"
	OpIsAuthorizationRequired = "oidc.isAuthorizationRequired"
	OpListClients             = "oidc.listClients"
	OpCreateClient            = "oidc.createClient"
	OpRemoveClient            = "oidc.removeClient"
	OpGetClient               = "oidc.getClient"
	OpGetClientMetaData       = "oidc.getClientMetaData"
	OpUpdateClient            = "oidc.updateClient"
	OpUpdateClientLogo        = "oidc.updateClientLogo"
	OpRemoveClientLogo        = "oidc.removeClientLogo"
	OpCreateClientSecret      = "oidc.createClientSecret"
	OpUpdateAllowedUserGroups = "oidc.updateAllowedUserGroups"
	OpVerifyDeviceCode        = "oidc.verifyDeviceCode"
	OpGetDeviceCodeInfo       = "oidc.getDeviceCodeInfo"
	OpGetClientPreview        = "oidc.getClientPreview"
)

// Doer sends one request. *apiclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *apiclient.Request) (*apiclient.Response, error)
}

// Gateway exposes the OIDC operations of the identity provider.
type Gateway struct {
	api Doer
}

// New constructs a Gateway over api.
func New(api Doer) (*Gateway, error) {
	if api == nil {
		return nil, errors.New("api transport is required")
	}
	return &Gateway{api: api}, nil
}

// Authorize sends every parameter in the request body so nonce and PKCE
// values stay out of URLs. Nothing is validated or defaulted locally.
func (g *Gateway) Authorize(ctx context.Context, req AuthorizationRequest) (*AuthorizeResponse, error) {
	return doJSON[AuthorizeResponse](ctx, g.api, &apiclient.Request{
		Operation: OpAuthorize,
		Method:    http.MethodPost,
		Path:      "/oidc/authorize",
		JSON:      req,
	})
}

// IsAuthorizationRequired asks whether clientID needs an interactive grant
// for scope before Authorize is attempted.
func (g *Gateway) IsAuthorizationRequired(ctx context.Context, clientID, scope string) (bool, error) {
	out, err := doJSON[struct {
		AuthorizationRequired bool `json:"authorizationRequired"`
	}](ctx, g.api, &apiclient.Request{
		Operation: OpIsAuthorizationRequired,
		Method:    http.MethodPost,
		Path:      "/oidc/authorization-required",
		JSON: struct {
			Scope    string `json:"scope"`
			ClientID string `json:"clientId"`
		}{Scope: scope, ClientID: clientID},
	})
	if err != nil {
		return false, err
	}
	return out.AuthorizationRequired, nil
}

// ListClients forwards opts as query parameters; a nil opts sends none.
// Filtering and ordering are decided by the server.
func (g *Gateway) ListClients(ctx context.Context, opts *pagination.Request) (*pagination.Paginated[ClientWithAllowedUserGroupsCount], error) {
	return doJSON[pagination.Paginated[ClientWithAllowedUserGroupsCount]](ctx, g.api, &apiclient.Request{
		Operation: OpListClients,
		Method:    http.MethodGet,
		Path:      "/oidc/clients",
		Query:     opts.Query(),
	})
}

func (g *Gateway) CreateClient(ctx context.Context, client ClientCreate) (*Client, error) {
	return doJSON[Client](ctx, g.api, &apiclient.Request{
		Operation: OpCreateClient,
		Method:    http.MethodPost,
		Path:      "/oidc/clients",
		JSON:      client,
	})
}

func (g *Gateway) RemoveClient(ctx context.Context, id string) error {
	_, err := g.api.Do(ctx, &apiclient.Request{
		Operation: OpRemoveClient,
		Method:    http.MethodDelete,
		Path:      apiclient.PathOf("oidc", "clients", id),
	})
	return err
}

// GetClient returns the full record including the allowed user groups.
func (g *Gateway) GetClient(ctx context.Context, id string) (*ClientWithAllowedUserGroups, error) {
	return doJSON[ClientWithAllowedUserGroups](ctx, g.api, &apiclient.Request{
		Operation: OpGetClient,
		Method:    http.MethodGet,
		Path:      apiclient.PathOf("oidc", "clients", id),
	})
}

// GetClientMetaData returns only the display fields of a client.
func (g *Gateway) GetClientMetaData(ctx context.Context, id string) (*ClientMetaData, error) {
	return doJSON[ClientMetaData](ctx, g.api, &apiclient.Request{
		Operation: OpGetClientMetaData,
		Method:    http.MethodGet,
		Path:      apiclient.PathOf("oidc", "clients", id, "meta"),
	})
}

func (g *Gateway) UpdateClient(ctx context.Context, id string, client ClientCreate) (*Client, error) {
	return doJSON[Client](ctx, g.api, &apiclient.Request{
		Operation: OpUpdateClient,
		Method:    http.MethodPut,
		Path:      apiclient.PathOf("oidc", "clients", id),
		JSON:      client,
	})
}

// UpdateClientLogo reconciles the logo of client with image. See
// DecideLogoAction for the rules; the no-op case sends nothing.
func (g *Gateway) UpdateClientLogo(ctx context.Context, client ClientMetaData, image *Image) error {
	switch DecideLogoAction(client.HasLogo, image) {
	case LogoRemove:
		return g.RemoveClientLogo(ctx, client.ID)
	case LogoUpload:
		_, err := g.api.Do(ctx, &apiclient.Request{
			Operation: OpUpdateClientLogo,
			Method:    http.MethodPost,
			Path:      apiclient.PathOf("oidc", "clients", client.ID, "logo"),
			File: &apiclient.File{
				Field:       "file",
				Name:        image.Filename,
				ContentType: image.ContentType,
				Content:     image.Content,
			},
		})
		return err
	default:
		return nil
	}
}

func (g *Gateway) RemoveClientLogo(ctx context.Context, id string) error {
	_, err := g.api.Do(ctx, &apiclient.Request{
		Operation: OpRemoveClientLogo,
		Method:    http.MethodDelete,
		Path:      apiclient.PathOf("oidc", "clients", id, "logo"),
	})
	return err
}

// CreateClientSecret generates a new secret for the client and returns it.
// The previous secret stops working; the value cannot be fetched again.
func (g *Gateway) CreateClientSecret(ctx context.Context, id string) (string, error) {
	out, err := doJSON[struct {
		Secret string `json:"secret"`
	}](ctx, g.api, &apiclient.Request{
		Operation: OpCreateClientSecret,
		Method:    http.MethodPost,
		Path:      apiclient.PathOf("oidc", "clients", id, "secret"),
	})
	if err != nil {
		return "", err
	}
	return out.Secret, nil
}

// UpdateAllowedUserGroups replaces the client's allowed groups with
// userGroupIDs, sent in the given order and without deduplication.
func (g *Gateway) UpdateAllowedUserGroups(ctx context.Context, id string, userGroupIDs []string) (*ClientWithAllowedUserGroups, error) {
	if userGroupIDs == nil {
		userGroupIDs = []string{}
	}
	return doJSON[ClientWithAllowedUserGroups](ctx, g.api, &apiclient.Request{
		Operation: OpUpdateAllowedUserGroups,
		Method:    http.MethodPut,
		Path:      apiclient.PathOf("oidc", "clients", id, "allowed-user-groups"),
		JSON: struct {
			UserGroupIDs []string `json:"userGroupIds"`
		}{UserGroupIDs: userGroupIDs},
	})
}

// VerifyDeviceCode approves the pending device authorization identified by
// the user-entered code and returns the raw response.
func (g *Gateway) VerifyDeviceCode(ctx context.Context, userCode string) (*apiclient.Response, error) {
	return g.api.Do(ctx, &apiclient.Request{
		Operation: OpVerifyDeviceCode,
		Method:    http.MethodPost,
		Path:      "/oidc/device/verify",
		Query:     url.Values{"code": {userCode}},
	})
}

// GetDeviceCodeInfo reads the state of a pending device authorization once.
// Polling is left to the caller.
func (g *Gateway) GetDeviceCodeInfo(ctx context.Context, userCode string) (*DeviceCodeInfo, error) {
	return doJSON[DeviceCodeInfo](ctx, g.api, &apiclient.Request{
		Operation: OpGetDeviceCodeInfo,
		Method:    http.MethodGet,
		Path:      "/oidc/device/info",
		Query:     url.Values{"code": {userCode}},
	})
}

// GetClientPreview returns, untouched, what the client would receive for
// userID with the given space-separated scopes.
func (g *Gateway) GetClientPreview(ctx context.Context, id, userID, scopes string) (json.RawMessage, error) {
	resp, err := g.api.Do(ctx, &apiclient.Request{
		Operation: OpGetClientPreview,
		Method:    http.MethodGet,
		Path:      apiclient.PathOf("oidc", "clients", id, "preview", userID),
		Query:     url.Values{"scopes": {scopes}},
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

func doJSON[T any](ctx context.Context, api Doer, req *apiclient.Request) (*T, error) {
	resp, err := api.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

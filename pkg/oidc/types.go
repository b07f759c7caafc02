package oidc

import (
	"errors"
	"io"
	"time"
)

// ErrPKCEIncomplete reports an authorization request that sets only one of
// codeChallenge and codeChallengeMethod.
var ErrPKCEIncomplete = errors.New("codeChallenge and codeChallengeMethod must be set together")

// AuthorizationRequest starts an authorization-code exchange. Nonce and the
// PKCE pair are optional; empty values are left out of the request body.
// An empty string means absent: an explicitly empty value cannot be sent.
type AuthorizationRequest struct {
	ClientID            string `json:"clientId" yaml:"clientId"`
	Scope               string `json:"scope" yaml:"scope"`
	CallbackURL         string `json:"callbackURL" yaml:"callbackURL"`
	Nonce               string `json:"nonce,omitempty" yaml:"nonce,omitempty"`
	CodeChallenge       string `json:"codeChallenge,omitempty" yaml:"codeChallenge,omitempty"`
	CodeChallengeMethod string `json:"codeChallengeMethod,omitempty" yaml:"codeChallengeMethod,omitempty"`
}

// UsesPKCE reports whether both PKCE parameters are present.
func (r AuthorizationRequest) UsesPKCE() bool {
	return r.CodeChallenge != "" && r.CodeChallengeMethod != ""
}

// CheckPKCE returns ErrPKCEIncomplete when exactly one PKCE parameter is set.
// Gateway.Authorize does not call it; the server is the authority on PKCE.
func (r AuthorizationRequest) CheckPKCE() error {
	if (r.CodeChallenge == "") != (r.CodeChallengeMethod == "") {
		return ErrPKCEIncomplete
	}
	return nil
}

// AuthorizeResponse is the server's answer to a completed authorization.
type AuthorizeResponse struct {
	Code        string `json:"code" yaml:"code"`
	CallbackURL string `json:"callbackURL" yaml:"callbackURL"`
	Issuer      string `json:"issuer" yaml:"issuer"`
}

// ClientMetaData is the display subset of a client registration.
type ClientMetaData struct {
	ID                       string `json:"id" yaml:"id"`
	Name                     string `json:"name" yaml:"name"`
	HasLogo                  bool   `json:"hasLogo" yaml:"hasLogo"`
	RequiresReauthentication bool   `json:"requiresReauthentication" yaml:"requiresReauthentication"`
	LaunchURL                string `json:"launchURL,omitempty" yaml:"launchURL,omitempty"`
}

// FederatedIdentity lets a workload authenticate as the client with a token
// from another issuer.
type FederatedIdentity struct {
	Issuer   string `json:"issuer" yaml:"issuer"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Audience string `json:"audience,omitempty" yaml:"audience,omitempty"`
	JWKS     string `json:"jwks,omitempty" yaml:"jwks,omitempty"`
}

type ClientCredentials struct {
	FederatedIdentities []FederatedIdentity `json:"federatedIdentities" yaml:"federatedIdentities"`
}

// Client is a registered relying party as returned by the server. The secret
// is never part of this shape; see Gateway.CreateClientSecret.
type Client struct {
	ClientMetaData     `yaml:",inline"`
	CallbackURLs       []string           `json:"callbackURLs" yaml:"callbackURLs"`
	LogoutCallbackURLs []string           `json:"logoutCallbackURLs" yaml:"logoutCallbackURLs"`
	IsPublic           bool               `json:"isPublic" yaml:"isPublic"`
	PKCEEnabled        bool               `json:"pkceEnabled" yaml:"pkceEnabled"`
	Credentials        *ClientCredentials `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// ClientCreate is the writable client definition used by create and update.
type ClientCreate struct {
	Name                     string             `json:"name" yaml:"name"`
	CallbackURLs             []string           `json:"callbackURLs" yaml:"callbackURLs"`
	LogoutCallbackURLs       []string           `json:"logoutCallbackURLs" yaml:"logoutCallbackURLs"`
	IsPublic                 bool               `json:"isPublic" yaml:"isPublic"`
	PKCEEnabled              bool               `json:"pkceEnabled" yaml:"pkceEnabled"`
	RequiresReauthentication bool               `json:"requiresReauthentication" yaml:"requiresReauthentication"`
	LaunchURL                string             `json:"launchURL,omitempty" yaml:"launchURL,omitempty"`
	Credentials              *ClientCredentials `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// UserGroup is the minimal group shape embedded in client responses.
type UserGroup struct {
	ID           string    `json:"id" yaml:"id"`
	FriendlyName string    `json:"friendlyName" yaml:"friendlyName"`
	Name         string    `json:"name" yaml:"name"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
}

// ClientWithAllowedUserGroups is a client with the groups allowed to use it.
type ClientWithAllowedUserGroups struct {
	Client            `yaml:",inline"`
	AllowedUserGroups []UserGroup `json:"allowedUserGroups" yaml:"allowedUserGroups"`
}

// ClientWithAllowedUserGroupsCount is the list projection: only the group count.
type ClientWithAllowedUserGroupsCount struct {
	Client                 `yaml:",inline"`
	AllowedUserGroupsCount int `json:"allowedUserGroupsCount" yaml:"allowedUserGroupsCount"`
}

// DeviceCodeInfo is the state of a pending device authorization.
type DeviceCodeInfo struct {
	Scope                 string         `json:"scope" yaml:"scope"`
	AuthorizationRequired bool           `json:"authorizationRequired" yaml:"authorizationRequired"`
	Client                ClientMetaData `json:"client" yaml:"client"`
}

// Image is a logo to upload.
type Image struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

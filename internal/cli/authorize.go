package cli

import (
	"github.com/spf13/cobra"

	"idpclient/pkg/oidc"
	"idpclient/pkg/platform/strings"
)

func newAuthorizeCommand(a *app) *cobra.Command {
	var (
		req    oidc.AuthorizationRequest
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Authorize a client for the current user and print the code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Scope = strings.JoinScopes(scopes)
			if err := req.CheckPKCE(); err != nil {
				return err
			}
			out, err := a.gateway.Authorize(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.render(out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ClientID, "client-id", "", "client to authorize")
	f.StringArrayVar(&scopes, "scope", []string{"openid"}, "requested scopes, repeatable or space/comma separated")
	f.StringVar(&req.CallbackURL, "callback-url", "", "redirect URI registered for the client")
	f.StringVar(&req.Nonce, "nonce", "", "nonce echoed in the ID token")
	f.StringVar(&req.CodeChallenge, "code-challenge", "", "PKCE code challenge")
	f.StringVar(&req.CodeChallengeMethod, "code-challenge-method", "", "PKCE method, e.g. S256")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("callback-url")
	return cmd
}

func newAuthorizationRequiredCommand(a *app) *cobra.Command {
	var (
		clientID string
		scopes   []string
	)

	cmd := &cobra.Command{
		Use:   "authorization-required",
		Short: "Report whether the user must grant consent before authorizing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			required, err := a.gateway.IsAuthorizationRequired(cmd.Context(), clientID, strings.JoinScopes(scopes))
			if err != nil {
				return err
			}
			return a.render(struct {
				AuthorizationRequired bool `json:"authorizationRequired" yaml:"authorizationRequired"`
			}{required})
		},
	}

	f := cmd.Flags()
	f.StringVar(&clientID, "client-id", "", "client to check")
	f.StringArrayVar(&scopes, "scope", []string{"openid"}, "requested scopes, repeatable or space/comma separated")
	_ = cmd.MarkFlagRequired("client-id")
	return cmd
}

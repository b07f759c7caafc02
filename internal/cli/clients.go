package cli

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"idpclient/pkg/oidc"
	"idpclient/pkg/pagination"
	"idpclient/pkg/platform/strings"
)

// maxConcurrentGets bounds parallel fetches of "clients get".
const maxConcurrentGets = 4

func newClientsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage OIDC client registrations",
	}
	cmd.AddCommand(
		newClientsListCommand(a),
		newClientsGetCommand(a),
		newClientsMetaCommand(a),
		newClientsCreateCommand(a),
		newClientsUpdateCommand(a),
		newClientsDeleteCommand(a),
		newClientsLogoCommand(a),
		newClientsRemoveLogoCommand(a),
		newClientsSecretCommand(a),
		newClientsGroupsCommand(a),
		newClientsPreviewCommand(a),
	)
	return cmd
}

func newClientsListCommand(a *app) *cobra.Command {
	var (
		search    string
		page      int
		limit     int
		column    string
		direction string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts *pagination.Request
			flags := cmd.Flags()
			if flags.Changed("search") || flags.Changed("page") || flags.Changed("limit") ||
				flags.Changed("sort") || flags.Changed("direction") {
				opts = &pagination.Request{Search: search}
				if flags.Changed("page") || flags.Changed("limit") {
					opts.Pagination = &pagination.Page{Page: page, Limit: limit}
				}
				if flags.Changed("sort") || flags.Changed("direction") {
					opts.Sort = &pagination.Sort{Column: column, Direction: direction}
				}
			}
			out, err := a.gateway.ListClients(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if out.HasNext() {
				a.notice("page %d of %d, use --page %d for more",
					out.Pagination.CurrentPage, out.Pagination.TotalPages, out.Pagination.CurrentPage+1)
			}
			return a.render(out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&search, "search", "", "free-text filter")
	f.IntVar(&page, "page", 0, "page number, starting at 1")
	f.IntVar(&limit, "limit", 0, "items per page")
	f.StringVar(&column, "sort", "", "column to sort by")
	f.StringVar(&direction, "direction", "", "sort direction: asc or desc")
	return cmd
}

func newClientsGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <client-id>...",
		Short: "Show clients with their allowed user groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clients := make([]*oidc.ClientWithAllowedUserGroups, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxConcurrentGets)
			for i, id := range args {
				i, id := i, id
				g.Go(func() error {
					c, err := a.gateway.GetClient(ctx, id)
					if err != nil {
						return fmt.Errorf("get client %s: %w", id, err)
					}
					clients[i] = c
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if len(clients) == 1 {
				return a.render(clients[0])
			}
			return a.render(clients)
		},
	}
}

func newClientsMetaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <client-id>",
		Short: "Show the public display fields of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.gateway.GetClientMetaData(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(out)
		},
	}
}

func newClientsCreateCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a client from a YAML or JSON definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var def oidc.ClientCreate
			if err := readDefinition(file, cmd.InOrStdin(), &def); err != nil {
				return err
			}
			out, err := a.gateway.CreateClient(cmd.Context(), def)
			if err != nil {
				return err
			}
			return a.render(out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "definition file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newClientsUpdateCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <client-id>",
		Short: "Replace a client's definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var def oidc.ClientCreate
			if err := readDefinition(file, cmd.InOrStdin(), &def); err != nil {
				return err
			}
			out, err := a.gateway.UpdateClient(cmd.Context(), args[0], def)
			if err != nil {
				return err
			}
			return a.render(out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "definition file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newClientsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.gateway.RemoveClient(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.notice("client %s deleted", args[0])
			return nil
		},
	}
}

func newClientsLogoCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "logo <client-id>",
		Short: "Set the client logo from --file, or remove it when --file is omitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadImage(file)
			if err != nil {
				return err
			}
			client, err := a.gateway.GetClientMetaData(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			action := oidc.DecideLogoAction(client.HasLogo, image)
			if err := a.gateway.UpdateClientLogo(cmd.Context(), *client, image); err != nil {
				return err
			}
			a.notice("logo of client %s: %s", client.ID, action)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "image to upload (png, jpeg or svg)")
	return cmd
}

func loadImage(path string) (*oidc.Image, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &oidc.Image{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Content:     bytes.NewReader(data),
	}, nil
}

func newClientsRemoveLogoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-logo <client-id>",
		Short: "Delete the client logo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.gateway.RemoveClientLogo(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.notice("logo of client %s removed", args[0])
			return nil
		},
	}
}

func newClientsSecretCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "secret <client-id>",
		Short: "Generate a new client secret, invalidating the previous one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := a.gateway.CreateClientSecret(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.notice("store this secret now, it cannot be displayed again")
			_, err = fmt.Fprintln(a.stdout, secret)
			return err
		},
	}
}

func newClientsGroupsCommand(a *app) *cobra.Command {
	var groups []string

	cmd := &cobra.Command{
		Use:   "groups <client-id>",
		Short: "Replace the user groups allowed to use a client",
		Long:  "Replace the user groups allowed to use a client. Omit --group to allow every user.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.gateway.UpdateAllowedUserGroups(cmd.Context(), args[0], strings.SplitAndTrim(groups))
			if err != nil {
				return err
			}
			return a.render(out)
		},
	}
	cmd.Flags().StringArrayVar(&groups, "group", nil, "allowed user group id, repeatable or comma separated")
	return cmd
}

func newClientsPreviewCommand(a *app) *cobra.Command {
	var scopes []string

	cmd := &cobra.Command{
		Use:   "preview <client-id> <user-id>",
		Short: "Show the tokens and claims a user would receive from a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.gateway.GetClientPreview(cmd.Context(), args[0], args[1], strings.JoinScopes(scopes))
			if err != nil {
				return err
			}
			return a.renderRaw(raw)
		},
	}
	cmd.Flags().StringArrayVar(&scopes, "scope", []string{"openid"}, "scopes to preview, repeatable or space/comma separated")
	return cmd
}

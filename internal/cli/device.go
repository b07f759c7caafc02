package cli

import (
	"github.com/spf13/cobra"
)

func newDeviceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Complete device authorization requests",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info <user-code>",
			Short: "Show which client and scopes a device code is waiting for",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				info, err := a.gateway.GetDeviceCodeInfo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.render(info)
			},
		},
		&cobra.Command{
			Use:   "verify <user-code>",
			Short: "Approve a pending device authorization as the current user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				resp, err := a.gateway.VerifyDeviceCode(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.notice("device code %s verified (status %d)", args[0], resp.StatusCode)
				return nil
			},
		},
	)
	return cmd
}

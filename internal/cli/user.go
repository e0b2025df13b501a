package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User directory commands",
	}

	cmd.AddCommand(newUserPutCmd())

	return cmd
}

func newUserPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <user-id> <username>",
		Short: "Register or rename a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UserResult

			body := map[string]string{"username": args[1]}
			if err := client.Put(fmt.Sprintf("/api/v1/users/%s", url.PathEscape(args[0])), body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/spf13/cobra"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage global roles",
}

// roleSetCmd writes the role directly. It is how the first admin is
// created, so it does not require an acting admin.
var roleSetCmd = &cobra.Command{
	Use:   "set <userId|email> <role>",
	Short: "Set the global role of a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := model.ParseRole(args[1])
		if !ok {
			return fmt.Errorf("unknown role %q, expected one of %v", args[1], model.Roles)
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		user, err := e.lookupUser(ctx, args[0])
		if err != nil {
			return err
		}
		if _, err := e.repos.User.UpdateGlobalRole(ctx, user.UserId, role); err != nil {
			return err
		}
		log.Infow("global role set from cli", "user", user.UserId, "from", user.GlobalRole, "to", role)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s -> %s\n", user.Email, user.UserId, user.GlobalRole, role)
		return err
	},
}

func init() {
	roleCmd.AddCommand(roleSetCmd)
}

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var nu user.NewUser
	var role string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user; the password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword("Enter password:")
			if err != nil {
				return err
			}
			confirm, err := cli.promptPassword("Confirm password:")
			if err != nil {
				return err
			}
			nu.Password, nu.PasswordConfirm = pwd, confirm
			nu.Roles = []string{role}

			usr, err := cli.addUser(cmd.Context(), nu)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "User %q created (%s)\n", usr.Name, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nu.Name, "name", "", "full name")
	cmd.Flags().StringVar(&nu.Username, "username", "", "username")
	cmd.Flags().StringVar(&nu.Email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", user.RoleAdminOwner, "role, one of "+strings.Join(user.AllRoles, " "))
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser) (user.User, error) {
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return user.User{}, cli.validationErr(err)
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// validationErr lists the field errors of err, one per line.
func (cli *commandLine) validationErr(err error) error {
	var fields map[string]string
	switch e := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fields = core.FieldErrors(e, cli.translator)
	case *core.ValidationError:
		fields = e.FieldMap()
	default:
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+fields[k])
	}
	return errors.New("invalid user:\n  " + strings.Join(lines, "\n  "))
}

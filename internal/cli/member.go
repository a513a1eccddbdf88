package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewMemberCommand creates the member command group.
func NewMemberCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage library members",
	}
	cmd.AddCommand(newMemberAddCommand(rootOpts))
	cmd.AddCommand(newMemberListCommand(rootOpts))
	return cmd
}

func newMemberAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Register a member",
		Long: `Register a member holding no books.

Adding an id that already exists replaces that member and forgets the
books they held.

Example:
  libris member add M1 Ada`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMemberAdd(opts, cmd, args[0], args[1])
		},
	}
}

func runMemberAdd(opts *RootOptions, cmd *cobra.Command, id, name string) error {
	svc, err := openLibrary(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLibrary(svc)

	member, err := svc.AddMember(commandContext(cmd), id, name)
	if err != nil {
		return persistenceError("add member", err)
	}
	return newFormatter(opts, cmd.OutOrStdout()).Success("✔ Member added successfully", member)
}

func newMemberListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every member with the books they hold",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMemberList(opts, cmd)
		},
	}
}

func runMemberList(opts *RootOptions, cmd *cobra.Command) error {
	svc, err := openLibrary(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLibrary(svc)

	members := svc.Members()
	var text strings.Builder
	for _, m := range members {
		held := "-"
		if len(m.Borrowed) > 0 {
			held = strings.Join(m.Borrowed, ", ")
		}
		fmt.Fprintf(&text, "%s\t%s\t%s\n", m.ID, m.Name, held)
	}
	if len(members) == 0 {
		text.WriteString("No members registered.\n")
	}

	return newFormatter(opts, cmd.OutOrStdout()).Success(strings.TrimSuffix(text.String(), "\n"), members)
}

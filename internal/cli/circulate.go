package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/libris/internal/circulation"
)

// NewBorrowCommand creates the borrow command.
func NewBorrowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <member-id> <book-id>",
		Short: "Lend a book to a member",
		Long: `Lend a book to a member.

Checks run in order: the member exists, the book exists, the book is
available. The first failing check is reported and nothing changes.

Exit codes:
  0 - Book lent
  1 - Refused (member not found, book not found, already borrowed)
  2 - Command error

Example:
  libris borrow M1 B1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCirculation(rootOpts, cmd, "borrow", args[0], args[1],
				func(ctx context.Context, svc *circulation.Service, m, b string) (circulation.Outcome, error) {
					return svc.Borrow(ctx, m, b)
				})
		},
	}
}

// NewReturnCommand creates the return command.
func NewReturnCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "return <member-id> <book-id>",
		Short: "Take a book back from a member",
		Long: `Take a book back from a member.

Checks run in order: the member exists, the book exists, the member
holds the book. Returns never change borrow counts.

Exit codes:
  0 - Book returned
  1 - Refused (member not found, book not found, not borrowed by member)
  2 - Command error

Example:
  libris return M1 B1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCirculation(rootOpts, cmd, "return", args[0], args[1],
				func(ctx context.Context, svc *circulation.Service, m, b string) (circulation.Outcome, error) {
					return svc.Return(ctx, m, b)
				})
		},
	}
}

type circulationOp func(ctx context.Context, svc *circulation.Service, memberID, bookID string) (circulation.Outcome, error)

func runCirculation(opts *RootOptions, cmd *cobra.Command, name, memberID, bookID string, op circulationOp) error {
	svc, err := openLibrary(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLibrary(svc)

	out, err := op(commandContext(cmd), svc, memberID, bookID)
	if err != nil {
		return persistenceError(name, err)
	}

	f := newFormatter(opts, cmd.OutOrStdout())
	if out.OK() {
		return f.Success(out.Message, out)
	}

	if err := f.Error(outcomeCode(out.Kind), out.Message, out); err != nil {
		return err
	}
	return NewExitError(ExitFailure, out.Message)
}

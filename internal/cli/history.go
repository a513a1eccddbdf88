package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/libris/internal/circulation"
	"github.com/roach88/libris/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Member string // optional - filter to one member
	Book   string // optional - filter to one book
	Kind   string // optional - "borrow" or "return"
}

// HistoryResult holds the complete history output.
type HistoryResult struct {
	Entries []journal.Entry `json:"entries"`
	Stats   HistoryStats    `json:"stats"`
}

// HistoryStats holds summary statistics for the listed entries.
type HistoryStats struct {
	Total     int `json:"total"`
	Borrows   int `json:"borrows"`
	Returns   int `json:"returns"`
	Succeeded int `json:"succeeded"`
	Refused   int `json:"refused"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled borrow and return attempts",
		Long: `List borrow and return attempts recorded in the circulation journal.

Refused attempts are journaled too, with the reason as their outcome.
Entries are listed in the order they happened.

Examples:
  libris history
  libris history --member M1
  libris history --book B1 --kind borrow --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Member, "member", "", "filter to a member id")
	cmd.Flags().StringVar(&opts.Book, "book", "", "filter to a book id")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to borrow or return")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	kind := journal.Kind(opts.Kind)
	if kind != "" && kind != journal.KindBorrow && kind != journal.KindReturn {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --kind %q: must be borrow or return", opts.Kind))
	}

	svc, err := openLibrary(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeLibrary(svc)

	entries, err := svc.History(commandContext(cmd), journal.Filter{
		MemberID: opts.Member,
		BookID:   opts.Book,
		Kind:     kind,
	})
	if errors.Is(err, circulation.ErrNoJournal) {
		f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
		if ferr := f.Error(CodeNoJournal, "The circulation journal is disabled.", nil); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitCommandError, "history unavailable", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := HistoryResult{Entries: entries, Stats: summarize(entries)}
	return newFormatter(opts.RootOptions, cmd.OutOrStdout()).Success(formatHistory(result), result)
}

func summarize(entries []journal.Entry) HistoryStats {
	stats := HistoryStats{Total: len(entries)}
	for _, e := range entries {
		switch e.Kind {
		case journal.KindBorrow:
			stats.Borrows++
		case journal.KindReturn:
			stats.Returns++
		}
		if e.Succeeded() {
			stats.Succeeded++
		} else {
			stats.Refused++
		}
	}
	return stats
}

func formatHistory(result HistoryResult) string {
	if len(result.Entries) == 0 {
		return "No circulation history."
	}

	var buf strings.Builder
	for _, e := range result.Entries {
		fmt.Fprintf(&buf, "[%d] %-6s member=%s book=%s -> %s\n", e.Seq, e.Kind, e.MemberID, e.BookID, e.Outcome)
	}
	s := result.Stats
	fmt.Fprintf(&buf, "\n%d entries: %d borrows, %d returns, %d succeeded, %d refused",
		s.Total, s.Borrows, s.Returns, s.Succeeded, s.Refused)
	return buf.String()
}

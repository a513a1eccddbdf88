package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/libris/internal/ledger"
	"github.com/roach88/libris/internal/model"
)

// TopOptions holds flags for the top command.
type TopOptions struct {
	*RootOptions
	All bool // list every ledger entry instead of the single winner
}

// TopResult is the JSON payload of the top command.
type TopResult struct {
	Book    *model.Book    `json:"book,omitempty"`
	Count   int            `json:"count"`
	Entries []ledger.Entry `json:"entries,omitempty"`
}

// NewTopCommand creates the top command.
func NewTopCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TopOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the most borrowed book",
		Long: `Show the book with the highest cumulative borrow count.

Ties go to the book the ledger saw first. With --all, every ledger
entry is listed in that same order.

Examples:
  libris top
  libris top --all --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTop(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "list every book's borrow count")

	return cmd
}

func runTop(opts *TopOptions, cmd *cobra.Command) error {
	svc, err := openLibrary(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeLibrary(svc)

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	book, count, ok := svc.MostBorrowed()

	var result TopResult
	var text strings.Builder
	if ok {
		result.Book, result.Count = &book, count
		fmt.Fprintf(&text, "📘 Most Borrowed Book: %s by %s", book.Title, book.Author)
	} else {
		text.WriteString("No books borrowed yet.")
	}

	if opts.All {
		result.Entries = svc.Ledger()
		for _, e := range result.Entries {
			fmt.Fprintf(&text, "\n%s\t%d", e.BookID, e.Count)
		}
	}

	return f.Success(text.String(), result)
}

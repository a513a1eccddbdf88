package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/libris/internal/circulation"
	"github.com/roach88/libris/internal/model"
)

// NewBookCommand creates the book command group.
func NewBookCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the book catalog",
	}
	cmd.AddCommand(newBookAddCommand(rootOpts))
	cmd.AddCommand(newBookListCommand(rootOpts))
	return cmd
}

func newBookAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <title> <author>",
		Short: "Add a book to the catalog",
		Long: `Add an available book to the catalog.

Adding an id that already exists replaces that book, including its
availability. Borrow counts for the id are kept.

Example:
  libris book add B1 Dune "Frank Herbert"`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBookAdd(opts, cmd, args[0], args[1], args[2])
		},
	}
}

func runBookAdd(opts *RootOptions, cmd *cobra.Command, id, title, author string) error {
	svc, err := openLibrary(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLibrary(svc)

	f := newFormatter(opts, cmd.OutOrStdout())
	book, err := svc.AddBook(commandContext(cmd), id, title, author)
	if errors.Is(err, circulation.ErrInvalidBookID) {
		if ferr := f.Error(CodeInvalidBookID, invalidBookIDMessage, map[string]string{"id": book.ID}); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, invalidBookIDMessage)
	}
	if err != nil {
		return persistenceError("add book", err)
	}
	return f.Success("✔ Book added successfully", book)
}

func newBookListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every book with its availability and borrow count",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBookList(opts, cmd)
		},
	}
}

// BookListing is one row of `book list`.
type BookListing struct {
	model.Book
	BorrowCount int `json:"borrow_count"`
}

func runBookList(opts *RootOptions, cmd *cobra.Command) error {
	svc, err := openLibrary(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLibrary(svc)

	books := svc.Books()
	listing := make([]BookListing, 0, len(books))
	var text strings.Builder
	for _, b := range books {
		count := svc.BorrowCount(b.ID)
		listing = append(listing, BookListing{Book: b, BorrowCount: count})

		status := "available"
		if !b.Available {
			status = "on loan"
		}
		fmt.Fprintf(&text, "%s\t%s by %s\t%s\tborrowed %d\n", b.ID, b.Title, b.Author, status, count)
	}
	if len(books) == 0 {
		text.WriteString("No books in the catalog.\n")
	}

	return newFormatter(opts, cmd.OutOrStdout()).Success(strings.TrimSuffix(text.String(), "\n"), listing)
}

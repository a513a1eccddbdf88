package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/libris/internal/circulation"
)

// NewShellCommand creates the interactive menu command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run the interactive library menu",
		Long: `Run the numbered library menu.

The menu reads one line per answer from stdin, so it can be scripted:

  printf '1\nB1\nDune\nHerbert\n6\n' | libris shell

Every change is saved before the next menu is shown. The shell ends on
choice 6 or at end of input.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, cmd)
		},
	}
}

func runShell(opts *RootOptions, cmd *cobra.Command) error {
	svc, err := openLibrary(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLibrary(svc)

	sh := &shell{
		svc: svc,
		in:  bufio.NewScanner(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}
	return sh.run(commandContext(cmd))
}

// shell is the menu loop. One shell serves one input stream.
type shell struct {
	svc *circulation.Service
	in  *bufio.Scanner
	out io.Writer
}

func (s *shell) menu() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "========== LIBRARY MANAGEMENT SYSTEM ==========")
	fmt.Fprintln(s.out, "1. Add Book")
	fmt.Fprintln(s.out, "2. Add Member")
	fmt.Fprintln(s.out, "3. Borrow Book")
	fmt.Fprintln(s.out, "4. Return Book")
	fmt.Fprintln(s.out, "5. Show Most Borrowed Book")
	fmt.Fprintln(s.out, "6. Exit")
}

// ask prints label and reads one line. ok is false at end of input.
func (s *shell) ask(label string) (answer string, ok bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

// askAll asks each label in turn, stopping at end of input.
func (s *shell) askAll(labels ...string) ([]string, bool) {
	answers := make([]string, 0, len(labels))
	for _, label := range labels {
		a, ok := s.ask(label)
		if !ok {
			return nil, false
		}
		answers = append(answers, a)
	}
	return answers, true
}

func (s *shell) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		s.menu()
		choice, ok := s.ask("Enter choice: ")
		if !ok {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}

		done, err := s.dispatch(ctx, choice)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// dispatch handles one menu choice. done is true when the shell should end.
func (s *shell) dispatch(ctx context.Context, choice string) (done bool, err error) {
	switch choice {
	case "1":
		a, ok := s.askAll("Enter Book ID: ", "Enter Title: ", "Enter Author: ")
		if !ok {
			return true, nil
		}
		_, err = s.svc.AddBook(ctx, a[0], a[1], a[2])
		if errors.Is(err, circulation.ErrInvalidBookID) {
			fmt.Fprintln(s.out, invalidBookIDMessage)
			return false, nil
		}
		if err != nil {
			return true, persistenceError("add book", err)
		}
		fmt.Fprintln(s.out, "✔ Book added successfully")

	case "2":
		a, ok := s.askAll("Enter Member ID: ", "Enter Member Name: ")
		if !ok {
			return true, nil
		}
		if _, err := s.svc.AddMember(ctx, a[0], a[1]); err != nil {
			return true, persistenceError("add member", err)
		}
		fmt.Fprintln(s.out, "✔ Member added successfully")

	case "3", "4":
		a, ok := s.askAll("Enter Member ID: ", "Enter Book ID: ")
		if !ok {
			return true, nil
		}
		op, name := s.svc.Borrow, "borrow"
		if choice == "4" {
			op, name = s.svc.Return, "return"
		}
		out, err := op(ctx, a[0], a[1])
		if err != nil {
			return true, persistenceError(name, err)
		}
		fmt.Fprintln(s.out, out.Message)

	case "5":
		if book, _, ok := s.svc.MostBorrowed(); ok {
			fmt.Fprintf(s.out, "📘 Most Borrowed Book: %s by %s\n", book.Title, book.Author)
		} else {
			fmt.Fprintln(s.out, "No books borrowed yet.")
		}

	case "6":
		fmt.Fprintln(s.out, "Exiting program...")
		return true, nil

	default:
		fmt.Fprintln(s.out, "Invalid choice! Try again.")
	}
	return false, nil
}

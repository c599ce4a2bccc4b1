package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rat/core/apperrors"
	"rat/core/history"
	"rat/nest"
	"rat/ui/term"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new rat nest",
	Long:  "Creates a new nest in the current directory with HEAD pointing at the default branch",
	Run: func(cmd *cobra.Command, args []string) {
		repo, err := nest.Initialize(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer repo.Close()

		fmt.Println("Initialized new rat nest.")
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the working directory to the nest",
	Long:  "Snapshots the full working directory as a new commit and advances HEAD",
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNest(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		repo, err := nest.Open(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer repo.Close()

		message, _ := cmd.Flags().GetString("message")
		if message == "" {
			message, err = repo.EditMessage()
			var cancelled apperrors.EmptyMessageError
			if errors.As(err, &cancelled) {
				fmt.Fprintln(os.Stderr, "Cancelled commit.")
				os.Exit(1)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		hash, err := repo.Commit(message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating commit: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Created commit %s.\n", hash)
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <commit>",
	Short: "Restore the working directory from a commit's snapshot",
	Long:  "Overwrites the working directory with a stored snapshot; accepts a full hash or a unique prefix",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNest(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		repo, err := nest.Open(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer repo.Close()

		hash, err := repo.Checkout(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking out: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Checked out commit %s.\n", hash)
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history",
	Long:  "Displays commits newest first, with the branch refs pointing at each one",
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNest(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		repo, err := nest.Open(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer repo.Close()

		entries, err := repo.Log()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting history: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			return
		}

		formatter := term.NewFormatter(repo.Config().ColorOrDefault())
		fmt.Println(renderLog(entries, formatter))
	},
}

var branchCmd = &cobra.Command{
	Use:   "branch <name> <commit>",
	Short: "Create a branch ref pointing at a commit",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNest(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		repo, err := nest.Open(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer repo.Close()

		if _, err := repo.CreateBranch(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating branch: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Created branch %s.\n", args[0])
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show working directory changes against HEAD",
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNest(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		repo, err := nest.Open(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer repo.Close()

		status, err := repo.Status()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
			os.Exit(1)
		}

		if status.Commit == "" {
			fmt.Println("No commits yet.")
		} else {
			fmt.Printf("HEAD: %s\n", status.Commit)
		}

		if len(status.Modified) > 0 {
			fmt.Println("\nModified:")
			for _, path := range status.Modified {
				fmt.Printf("  %s\n", path)
			}
		}
		if len(status.Deleted) > 0 {
			fmt.Println("\nDeleted:")
			for _, path := range status.Deleted {
				fmt.Printf("  %s\n", path)
			}
		}
		if len(status.Untracked) > 0 {
			fmt.Println("\nUntracked:")
			for _, path := range status.Untracked {
				fmt.Printf("  %s\n", path)
			}
		}

		if len(status.Modified) == 0 && len(status.Deleted) == 0 && len(status.Untracked) == 0 {
			fmt.Println("Working directory matches HEAD.")
		}
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the integrity of every commit in the nest",
	Long:  "Recomputes each commit's content hash from its stored metadata and snapshot and checks parent links",
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNest(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		repo, err := nest.Open(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer repo.Close()

		problems, err := repo.Verify()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error verifying nest: %v\n", err)
			os.Exit(1)
		}

		if len(problems) > 0 {
			for _, problem := range problems {
				fmt.Fprintf(os.Stderr, "corrupt: %s\n", problem)
			}
			os.Exit(1)
		}

		fmt.Println("Nest verified, no problems found.")
	},
}

// renderLog lays out history entries: a yellow bold "commit <hash>" header
// with green bold branch names in parentheses, then the message indented by
// four spaces, entries separated by a blank line.
func renderLog(entries []history.Entry, f *term.Formatter) string {
	var b strings.Builder

	for i, entry := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}

		b.WriteString(f.Apply("commit "+entry.Hash, term.Style{Color: term.ColorYellow, Bold: true}))

		if len(entry.Branches) > 0 {
			paren := term.Style{Color: term.ColorYellow}
			b.WriteString(f.Apply(" (", paren))
			for j, name := range entry.Branches {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(f.Apply(name, term.Style{Color: term.ColorGreen, Bold: true}))
			}
			b.WriteString(f.Apply(")", paren))
		}
		b.WriteString("\n")

		for j, line := range strings.Split(strings.TrimRight(entry.Message, "\n"), "\n") {
			if j > 0 {
				b.WriteString("\n")
			}
			b.WriteString("    " + line)
		}
	}

	return b.String()
}

func init() {
	commitCmd.Flags().StringP("message", "m", "", "Commit message")
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rat/nest"
)

var rootCmd = &cobra.Command{
	Use:   "rat",
	Short: "Rat - a content-addressable snapshot store",
	Long: `Rat records full-tree snapshots of a working directory as immutable
commits in a local nest, chained by parent pointers and addressed by a
hash of their content. Branch refs and a movable HEAD let you track and
switch between lines of history.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(verifyCmd)
}

func checkNest() error {
	if _, err := os.Stat(nest.DirName); os.IsNotExist(err) {
		return fmt.Errorf("not a rat nest (no %s directory found)", nest.DirName)
	}
	return nil
}

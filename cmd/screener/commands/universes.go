package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// universesCmd represents the universes command
var universesCmd = &cobra.Command{
	Use:   "universes",
	Short: "List the known stock universes",
	RunE:  runUniverses,
}

func init() {
	rootCmd.AddCommand(universesCmd)
}

func runUniverses(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	names, err := d.source.List(context.Background())
	if err != nil {
		return fmt.Errorf("list universes: %w", err)
	}

	if len(names) == 0 {
		fmt.Printf("No universes found in %s\n", d.cfg.UniverseDir)
		return nil
	}

	fmt.Println("Available universes:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}

	return nil
}

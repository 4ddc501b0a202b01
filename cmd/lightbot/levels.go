package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List all available levels",
	Long: `Shows the built-in campaign plus every level found under --dir
(or levels.dir in the config). A level file replaces a built-in level with
the same ID.`,
	Run: runLevels,
}

func runLevels(cmd *cobra.Command, args []string) {
	catalog, err := loadCatalog()
	if err != nil {
		exitf("loading levels: %v", err)
	}

	if len(catalog) == 0 {
		fmt.Println("No levels available.")
		return
	}

	fmt.Println("Available levels:")
	fmt.Println()

	// Calculate column widths
	maxIDLen, maxNameLen := 2, 4 // "ID", "Name" headers
	for _, l := range catalog {
		if len(l.ID) > maxIDLen {
			maxIDLen = len(l.ID)
		}
		if len(l.Name) > maxNameLen {
			maxNameLen = len(l.Name)
		}
	}

	fmt.Printf("  %-*s  %-*s  %-5s  %-5s  %s\n", maxIDLen, "ID", maxNameLen, "Name", "Size", "Goals", "Source")
	fmt.Printf("  %-*s  %-*s  %-5s  %-5s  %s\n", maxIDLen, "--", maxNameLen, "----", "----", "-----", "------")

	for _, l := range catalog {
		source := "built-in"
		if !l.Builtin {
			source = l.FilePath
		}
		size := fmt.Sprintf("%dx%d", l.Size, l.Size)
		fmt.Printf("  %-*s  %-*s  %-5s  %-5d  %s\n", maxIDLen, l.ID, maxNameLen, l.Name, size, len(l.Goals), source)
	}

	fmt.Println()
	fmt.Println("Run 'lightbot replay <id>' to watch a level's solution.")
}

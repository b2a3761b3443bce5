// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/governance-engine/internal/fuzzy"
	"github.com/pdiddy/governance-engine/internal/identity"
)

var fidCmd = &cobra.Command{
	Use:   "fid <name>",
	Short: "Print the occupant identifier for a name",
	Long: `Fid derives the identifier evaluate would assign to an occupant with
the given name in a village and device context. The name is folded and
reduced to its phonetic key first, so spelling variants print the same
identifier. Use it to reconcile records offline.

Village and device default to the configured context defaults. With --db
the registry is searched and every earlier record that carries the
identifier is listed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		village, _ := cmd.Flags().GetString("village")
		if village == "" {
			village = viper.GetString("engine.context.default_village")
		}
		device, _ := cmd.Flags().GetString("device")
		if device == "" {
			device = viper.GetString("engine.context.default_device")
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		name := strings.Join(args, " ")
		w := cmd.OutOrStdout()
		if err := printFID(w, name, village, device, verbose); err != nil {
			return err
		}

		if dbPath, _ := cmd.Flags().GetString("db"); dbPath == "" {
			return nil
		}
		store, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		sources, err := store.Sources(cmd.Context())
		if err != nil {
			return err
		}
		known := identity.NewRegistry()
		known.Seed(sources)
		_, _, id := deriveFID(name, village, device)
		return printSources(w, known.Sources(id))
	},
}

func deriveFID(name, village, device string) (folded, key, id string) {
	folded = fuzzy.FoldName(name)
	key = fuzzy.PhoneticKey(folded)
	return folded, key, identity.Generate(key, village, device)
}

func printFID(w io.Writer, name, village, device string, verbose bool) error {
	folded, key, id := deriveFID(name, village, device)
	if !verbose {
		_, err := fmt.Fprintln(w, id)
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n  folded:   %s\n  phonetic: %s\n  village:  %s\n  device:   %s\n",
		id, folded, key, orUnset(village), orUnset(device))
	return err
}

// printSources lists the registry records that carry an identifier.
func printSources(w io.Writer, sources []identity.Source) error {
	if len(sources) == 0 {
		_, err := fmt.Fprintln(w, "No registry records carry this identifier.")
		return err
	}
	fmt.Fprintf(w, "\n%-36s  %5s  %-10s  %s\n", "Run", "Row", "Khasra", "Owner")
	for _, src := range sources {
		fmt.Fprintf(w, "%-36s  %5d  %-10s  %s\n", src.RunID, src.Row, src.Khasra, src.Owner)
	}
	return nil
}

func orUnset(s string) string {
	if strings.TrimSpace(s) == "" {
		return identity.Unset
	}
	return s
}

func init() {
	fidCmd.Flags().String("village", "", "village code")
	fidCmd.Flags().String("device", "", "device ID")
	fidCmd.Flags().BoolP("verbose", "v", false, "show the folded name and phonetic key")
	fidCmd.Flags().String("db", "", "SQLite registry file to search for records carrying the identifier")

	rootCmd.AddCommand(fidCmd)
}

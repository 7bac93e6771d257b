package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeusync/xrig/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <rig>",
	Short: "Check a rig file for consistency",
	Long:  `Loads the rig file and reports unknown node references, duplicate names, bad collider types and out-of-range values.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rig, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if err = rig.Validate(); err != nil {
			return fmt.Errorf("validation failed:\n%w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d nodes, %d colliders, %d constraints, %d animations\n",
			args[0], len(rig.Nodes), len(rig.Colliders), len(rig.Constraints), len(rig.Animations))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

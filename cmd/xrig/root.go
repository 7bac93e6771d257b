package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeusync/xrig/internal/config"
	"github.com/zeusync/xrig/internal/injector"
	"github.com/zeusync/xrig/internal/sim"
)

var rootCmd = &cobra.Command{
	Use:           "xrig",
	Short:         "xrig runs procedural rig constraints at a fixed step",
	Long:          `xrig loads a rig description (nodes, colliders, constraints, animations) and resolves its constraints tick by tick, headless or behind an HTTP/websocket server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the rig file")
}

// loadEngine reads the rig at path, applies flag overrides and wires an engine.
func loadEngine(cmd *cobra.Command, path string) (*sim.Engine, *config.Rig, error) {
	rig, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		rig.Simulation.LogLevel = level
	}
	engine, err := injector.InitializeEngine(rig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init engine: %w", err)
	}
	return engine, rig, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spectra-g/engram/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .engram/config.yaml in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := ".engram/config.yaml"
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}

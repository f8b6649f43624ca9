package main

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"specforge/internal/sandbox"
)

var (
	exportProject string
	exportDir     string
	exportClean   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a project's workspace to a local directory",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportProject, "project", "p", "", "Project id")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Target directory")
	exportCmd.Flags().BoolVar(&exportClean, "clean", false, "Remove existing contents of the target first")
	_ = exportCmd.MarkFlagRequired("project")
	_ = exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ws, err := a.coordinator.GetWorkspace(ctx, exportProject)
	if err != nil {
		return err
	}

	stats, err := sandbox.NewExporter(osfs.New(exportDir), a.logger).Export(ctx, ws, exportClean)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d files, %d directories (%d bytes) to %s\n",
		stats.Files, stats.Directories, stats.Bytes, exportDir)
	return nil
}

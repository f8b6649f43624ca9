package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"specforge/internal/domain"
	"specforge/internal/domain/services"
)

var (
	provisionProject     string
	provisionTypes       []string
	provisionFile        string
	projectIntoWorkspace bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create version 1 of spec documents for a project",
	Long: `Create version 1 of one or more spec documents.

Content is read from --file ("-" for stdin); without it documents start empty.
Existing documents are left untouched.`,
	RunE: runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)
	provisionCmd.Flags().StringVarP(&provisionProject, "project", "p", "", "Project id")
	provisionCmd.Flags().StringSliceVarP(&provisionTypes, "type", "t", []string{"design", "requirements", "tasks"}, "Document types")
	provisionCmd.Flags().StringVarP(&provisionFile, "file", "f", "", "Initial content file, - for stdin")
	provisionCmd.Flags().BoolVar(&projectIntoWorkspace, "project-into-workspace", true, "Project the new documents into the workspace")
	_ = provisionCmd.MarkFlagRequired("project")
}

func runProvision(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	content, err := readContent(cmd, provisionFile)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, fileType := range provisionTypes {
		file, err := a.specs.Provision(ctx, &services.ProvisionSpecRequest{
			ProjectID: provisionProject,
			FileType:  fileType,
			Content:   content,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: already provisioned\n", fileType)
			continue
		}
		if err != nil {
			return err
		}

		if projectIntoWorkspace {
			if _, err := a.coordinator.Reproject(ctx, provisionProject, fileType); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: version %d (%s)\n", fileType, file.Version, file.ID)
	}
	return nil
}

func readContent(cmd *cobra.Command, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	}
}

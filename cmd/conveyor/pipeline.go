package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/calvora/conveyor/pkg/dsl"
)

// pipelineDoc is the on-disk shape of an activity graph: initial variable
// bindings plus the statement tree.
type pipelineDoc struct {
	Variables map[string]any `yaml:"variables"`
	Root      map[string]any `yaml:"root"`
}

func newPipelineCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Execute an activity graph from a YAML document",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read pipeline file: %w", err)
			}
			var doc pipelineDoc
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse pipeline file: %w", err)
			}
			root, err := dsl.Decode(doc.Root)
			if err != nil {
				return err
			}

			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			vars, err := a.core.RunGraph(cmd.Context(), root, doc.Variables)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(vars)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "pipeline YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

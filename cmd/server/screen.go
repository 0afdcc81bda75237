package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sagniknandigit/internship-management/internal/db"
	"github.com/sagniknandigit/internship-management/internal/repository/sqlite"
	"github.com/sagniknandigit/internship-management/internal/screening"
	"github.com/sagniknandigit/internship-management/pkg/ollama"
)

// newScreenCmd runs the screening job for one application in the
// foreground, which is handy when tuning the prompt template.
func newScreenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen <application-id>",
		Short: "Screen one application now and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			listModels, err := cmd.Flags().GetBool("models")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := db.New(ctx, cfg.DatabasePath, logger)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer d.Close()

			var gen screening.Generator
			if cfg.Screening.LLM {
				oc, err := ollama.NewDefaultClient(cfg.Ollama)
				if err != nil {
					return fmt.Errorf("ollama: %w", err)
				}
				defer oc.Close()
				if listModels {
					ms, err := oc.ListModels(ctx)
					if err != nil {
						return err
					}
					for _, m := range ms {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", m.Name, m.Size)
					}
				}
				gen = oc
			}

			repo := sqlite.New(d, logger).Repository()
			sc, err := screening.New(repo.Application, repo.Internship, gen, screeningConfig(cfg), logger).Screen(ctx, args[0])
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetTitle("Screening " + args[0])
			tw.AppendRows([]table.Row{
				{"Skill match", fmt.Sprintf("%.2f%%", sc.SkillMatch)},
				{"Matched", strings.Join(sc.MatchedSkills, ", ")},
				{"Missing", strings.Join(sc.MissingSkills, ", ")},
				{"Model", sc.Model},
				{"Summary", sc.Summary},
			})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().Bool("models", false, "List the models available on the Ollama server first")
	return cmd
}

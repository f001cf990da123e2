package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"github.com/spf13/cobra"
)

var (
	renderView string
	renderPNG  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one view (or the whole dashboard) once and print it as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		a.journal.Start()
		defer a.journal.Stop()

		ctx := cmd.Context()
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		// 1. Без --view — вся панель
		if renderView == "" {
			if renderPNG != "" {
				return fmt.Errorf("--png requires --view")
			}
			results, err := a.core.RenderAll(ctx)
			if err != nil {
				return err
			}
			return enc.Encode(results)
		}

		// 2. Одна вкладка
		view, err := domain.ParseView(renderView)
		if err != nil {
			return err
		}
		res, err := a.core.Render(ctx, view)
		if err != nil {
			return err
		}

		// 3. Картинка в файл, если попросили
		if renderPNG != "" {
			f, err := os.Create(renderPNG)
			if err != nil {
				return fmt.Errorf("create %s: %w", renderPNG, err)
			}
			if err := a.renderer.Render(f, res.Chart); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", renderPNG, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		return enc.Encode(res)
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderView, "view", "", "view to render: trends, advisories, location-risk, phishing")
	renderCmd.Flags().StringVar(&renderPNG, "png", "", "also write the chart as PNG to this file")
}

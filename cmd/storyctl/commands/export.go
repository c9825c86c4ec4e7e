package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ferdiebergado/storyboard/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a storyboard JSON file to PDF",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			b, err := os.ReadFile(filepath.Clean(in))
			if err != nil {
				return fmt.Errorf("read storyboard: %w", err)
			}

			var board export.Board
			if err := json.Unmarshal(b, &board); err != nil {
				return fmt.Errorf("decode storyboard %s: %w", in, err)
			}

			f, err := os.Create(filepath.Clean(out))
			if err != nil {
				return fmt.Errorf("create pdf: %w", err)
			}
			defer func() {
				err = errors.Join(err, f.Close())
			}()

			if err := export.PDF(f, board); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages to %s\n", len(board.Scenes), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "storyboard.json", "storyboard JSON file")
	cmd.Flags().StringVar(&out, "out", "board.pdf", "output PDF file")
	return cmd
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ferdiebergado/storyboard/internal/placement"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"
)

func tokenizeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tokenize <file>",
		Short: "Print the paragraphs and sentences of a story with byte offsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("read story: %w", err)
			}

			// offsets match what the server stores after import
			doc := placement.Tokenize(norm.NFC.String(string(b)))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Paragraphs []placement.Paragraph `json:"paragraphs"`
					Sentences  []placement.Sentence  `json:"sentences"`
				}{doc.Paragraphs, doc.Sentences})
			}
			return printDocument(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printDocument(w io.Writer, doc *placement.Document) error {
	for _, p := range doc.Paragraphs {
		if _, err := fmt.Fprintf(w, "¶%d [%d,%d)\n", p.Index, p.Start, p.End); err != nil {
			return err
		}
		for _, s := range doc.Sentences[p.First:p.Last] {
			if _, err := fmt.Fprintf(w, "  %d [%d,%d) %s\n", s.Index, s.Start, s.End, doc.SentenceText(s.Index)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d paragraphs, %d sentences\n", len(doc.Paragraphs), doc.Len())
	return err
}

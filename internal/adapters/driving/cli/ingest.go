package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/logger"
)

var (
	ingestChunkSize    int
	ingestChunkOverlap int
	ingestJSON         bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|dir>...",
	Short: "Add documents to the index",
	Long: `Splits each document into overlapping chunks, embeds them and appends
them to the index. Directories are walked for .txt, .md, .csv and .pdf files.

Ingesting the same file twice adds its chunks twice; use 'voxqa clear' to
start over.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "maximum chunk length in characters (default from settings)")
	ingestCmd.Flags().IntVar(&ingestChunkOverlap, "chunk-overlap", 0, "overlap between chunks in characters (default from settings)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// ingestResult is the outcome for one file.
type ingestResult struct {
	Source string              `json:"source"`
	Chunks int                 `json:"chunks"`
	Error  *domain.ErrorResult `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	pipeline, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.Defaults().IngestOptions()
	if cmd.Flags().Changed("chunk-size") {
		opts.ChunkSize = ingestChunkSize
	}
	if cmd.Flags().Changed("chunk-overlap") {
		opts.ChunkOverlap = ingestChunkOverlap
	}
	if err := opts.Validate(); err != nil {
		return hint(err)
	}

	results := make([]ingestResult, 0, len(paths))
	var errs []error
	for _, path := range paths {
		n, err := ingestFile(cmd, path, opts)
		result := ingestResult{Source: path, Chunks: n}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			er := domain.NewErrorResult(err)
			result.Error = &er
		}
		results = append(results, result)
		if !ingestJSON {
			printIngestResult(cmd, result)
		}
	}

	if ingestJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
	}

	return errors.Join(errs...)
}

func ingestFile(cmd *cobra.Command, path string, opts domain.IngestOptions) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	pipeline, err := requirePipeline(cmd)
	if err != nil {
		return 0, err
	}

	logger.Debug("ingest: %s (%d bytes)", path, len(content))
	return pipeline.Ingest(cmd.Context(), domain.RawDocument{
		URI:     path,
		Content: content,
	}, opts)
}

func printIngestResult(cmd *cobra.Command, r ingestResult) {
	switch {
	case r.Error != nil:
		cmd.Printf("%s %s: %s\n", style.Error.Render("✗"), r.Source, r.Error.Message)
	case r.Chunks == 0:
		cmd.Printf("%s %s: no text found\n", style.Warning.Render("-"), r.Source)
	default:
		cmd.Printf("%s %s: %d chunks\n", style.Success.Render("✓"), r.Source, r.Chunks)
	}
}

// expandPaths walks directories for supported files; explicit files are kept as given.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if domain.DetectMIMEType(path) != "" {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no supported documents found", domain.ErrUnsupportedDocument)
	}
	return paths, nil
}

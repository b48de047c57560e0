package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"deckpress/internal/export"
	"deckpress/internal/models"
	"deckpress/internal/persist"
	"deckpress/internal/raster"
	"deckpress/internal/templates"
)

// now is replaced in tests.
var now = time.Now

// pipeline builds the export pipeline with the bitmap formats enabled.
func pipeline(opts *RootOptions, cmd *cobra.Command) (*export.Pipeline, error) {
	logger := opts.logger(cmd.ErrOrStderr())
	r, err := raster.New(1280, 720)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "init rasterizer", err)
	}
	return export.NewPipeline(export.DefaultRegistry(r, logger), logger), nil
}

// NewFormatsCommand lists the registered export formats.
func NewFormatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "formats",
		Short:        "List export formats",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline(opts, cmd)
			if err != nil {
				return err
			}
			formats := p.Registry().Formats()
			names := make([]string, len(formats))
			for i, f := range formats {
				names[i] = string(f)
			}
			return printer{opts.Format, cmd.OutOrStdout()}.ok(formats, strings.Join(names, "\n"))
		},
	}
}

// NewNewCommand creates a presentation from a template.
func NewNewCommand(opts *RootOptions) *cobra.Command {
	var title, template, author string
	cmd := &cobra.Command{
		Use:          "new",
		Short:        "Create a presentation from a template",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := templates.Load()
			if err != nil {
				return WrapExitError(ExitFailure, "load templates", err)
			}
			tpl, ok := catalog.Get(template)
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown template %q", template))
			}
			doc := tpl.Document(title, author, now())
			return saveNew(cmd, opts, doc)
		},
	}
	cmd.Flags().StringVar(&title, "title", "Untitled presentation", "presentation title")
	cmd.Flags().StringVar(&template, "template", "blank", "template id")
	cmd.Flags().StringVar(&author, "author", "", "author shown in metadata")
	return cmd
}

// NewImportCommand stores a .json or .pptx file as a new presentation.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "import <file>",
		Short:        "Import a .json or .pptx presentation",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := importFile(args[0])
			if err != nil {
				return err
			}
			return saveNew(cmd, opts, doc)
		},
	}
}

func importFile(path string) (models.Document, error) {
	var (
		doc models.Document
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, ferr := os.Open(path)
		if ferr != nil {
			return doc, WrapExitError(ExitCommandError, "open "+path, ferr)
		}
		defer f.Close()
		doc, err = export.ImportJSON(f)
	case ".pptx":
		doc, err = export.ImportPPTX(path)
	default:
		return doc, NewExitError(ExitCommandError, "only .json and .pptx files can be imported")
	}
	if err != nil {
		return doc, WrapExitError(ExitFailure, "import "+path, err)
	}
	t := now().UTC()
	if doc.Meta.CreatedAt.IsZero() {
		doc.Meta.CreatedAt = t
	}
	doc.Meta.UpdatedAt = t
	return doc, nil
}

type savedDoc struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slides int    `json:"slides"`
}

func saveNew(cmd *cobra.Command, opts *RootOptions, doc models.Document) error {
	repo, closeRepo, err := opts.openRepo()
	if err != nil {
		return err
	}
	defer closeRepo()

	id := uuid.NewString()
	if err := repo.SaveDocument(cmd.Context(), id, doc); err != nil {
		return WrapExitError(ExitFailure, "save presentation", err)
	}
	opts.logger(cmd.ErrOrStderr()).Debug("presentation saved", "id", id, "db", opts.DB)
	out := savedDoc{ID: id, Title: doc.Meta.Title, Slides: len(doc.Slides)}
	return printer{opts.Format, cmd.OutOrStdout()}.ok(out, id)
}

// NewListCommand lists stored presentations.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List stored presentations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := opts.openRepo()
			if err != nil {
				return err
			}
			defer closeRepo()

			ids, err := repo.ListDocuments(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "list presentations", err)
			}
			items := make([]savedDoc, 0, len(ids))
			var text strings.Builder
			for _, id := range ids {
				doc, err := repo.LoadDocument(cmd.Context(), id)
				if err != nil {
					return WrapExitError(ExitFailure, "load "+id, err)
				}
				items = append(items, savedDoc{ID: id, Title: doc.Meta.Title, Slides: len(doc.Slides)})
				fmt.Fprintf(&text, "%s\t%d\t%s\n", id, len(doc.Slides), doc.Meta.Title)
			}
			return printer{opts.Format, cmd.OutOrStdout()}.ok(items, strings.TrimSuffix(text.String(), "\n"))
		},
	}
}

type exportResult struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Bytes    int    `json:"bytes"`
	Pages    int    `json:"pages,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// NewExportCommand writes a stored presentation in the requested format.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var outDir, filename string
	cmd := &cobra.Command{
		Use:          "export <id> <format>",
		Short:        "Export a stored presentation to a file",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := opts.openRepo()
			if err != nil {
				return err
			}
			defer closeRepo()

			doc, err := repo.LoadDocument(cmd.Context(), args[0])
			if errors.Is(err, persist.ErrNotFound) {
				return NewExitError(ExitCommandError, fmt.Sprintf("presentation %s not found", args[0]))
			}
			if err != nil {
				return WrapExitError(ExitFailure, "load presentation", err)
			}

			p, err := pipeline(opts, cmd)
			if err != nil {
				return err
			}
			format := export.ParseFormat(args[1])
			if _, ok := p.Registry().Lookup(format); !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unsupported format %q", args[1]))
			}
			art, err := p.Export(cmd.Context(), doc, filename, format)
			if err != nil {
				return WrapExitError(ExitFailure, "export", err)
			}
			path, err := export.WriteFile(outDir, art)
			if err != nil {
				return WrapExitError(ExitFailure, "write artifact", err)
			}

			res := exportResult{Path: path, Format: string(art.Format), Bytes: len(art.Data), Pages: art.Pages}
			if art.FallbackFrom != "" {
				res.Fallback = string(art.FallbackFrom)
				opts.logger(cmd.ErrOrStderr()).Warn("export fell back to json", "requested", art.FallbackFrom)
			}
			return printer{opts.Format, cmd.OutOrStdout()}.ok(res, path)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&filename, "filename", "", "artifact base name (defaults to the title)")
	return cmd
}

package producer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"inkwell/internal/model"
	yamlutil "inkwell/internal/yaml"
	"inkwell/templates"
)

var pageTemplate = template.Must(template.ParseFS(templates.FS, "page.html.tmpl"))

var formatExtensions = map[string]string{
	"markdown": "md",
	"html":     "html",
	"text":     "txt",
}

// Formatter renders a draft into its final file. Files are written atomically
// under the configured output directory.
type Formatter struct {
	outputDir string
	logger    *log.Logger
}

func NewFormatter(outputDir string, logger *log.Logger) *Formatter {
	return &Formatter{outputDir: outputDir, logger: logger}
}

// Supports reports whether the formatter can render the named format.
func (p *Formatter) Supports(format string) bool {
	_, ok := formatExtensions[format]
	return ok
}

// Formats lists the supported output formats in sorted order.
func (p *Formatter) Formats() []string {
	formats := make([]string, 0, len(formatExtensions))
	for f := range formatExtensions {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

func (p *Formatter) Invoke(ctx context.Context, in Input) (model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Draft == nil {
		return nil, errors.New("draft content required")
	}

	format := in.Format
	if format == "" {
		format = "markdown"
	}
	ext, ok := formatExtensions[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q (supported: %s)",
			format, strings.Join(p.Formats(), ", "))
	}

	rendered, err := p.render(format, in)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	name := fmt.Sprintf("%s-%s.%s", slugify(in.Request.Topic), in.ContentType, ext)
	path := filepath.Join(p.outputDir, name)
	if err := yamlutil.AtomicWriteRaw(path, rendered); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	logf(p.logger, "INFO", "format", "output_written path=%s format=%s bytes=%d", path, format, len(rendered))
	return &model.ProductionOutput{
		Path:        path,
		Format:      format,
		ContentType: in.ContentType,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (p *Formatter) render(format string, in Input) ([]byte, error) {
	switch format {
	case "markdown":
		return []byte(in.Draft.Text), nil
	case "text":
		return []byte(stripHeadingMarkers(in.Draft.Text)), nil
	case "html":
		return renderHTML(in.Request.Topic, in.Draft.Text)
	default:
		return nil, fmt.Errorf("no renderer for %q", format)
	}
}

type htmlBlock struct {
	Kind string
	Text string
}

func renderHTML(title, markdown string) ([]byte, error) {
	var blocks []htmlBlock
	for _, para := range strings.Split(markdown, "\n\n") {
		para = strings.TrimSpace(para)
		switch {
		case para == "":
		case strings.HasPrefix(para, "## "):
			blocks = append(blocks, htmlBlock{Kind: "h2", Text: strings.TrimPrefix(para, "## ")})
		case strings.HasPrefix(para, "# "):
			blocks = append(blocks, htmlBlock{Kind: "h1", Text: strings.TrimPrefix(para, "# ")})
		default:
			blocks = append(blocks, htmlBlock{Kind: "p", Text: para})
		}
	}

	var b strings.Builder
	err := pageTemplate.Execute(&b, struct {
		Title  string
		Blocks []htmlBlock
	}{Title: title, Blocks: blocks})
	if err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func stripHeadingMarkers(markdown string) string {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, "# ")
	}
	return strings.Join(lines, "\n")
}

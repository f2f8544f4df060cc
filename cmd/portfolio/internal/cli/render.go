package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const (
	formatHTML     = "html"
	formatTerminal = "terminal"
	formatAuto     = "auto"

	defaultWrap = 80
)

func newRenderCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a Markdown description to HTML (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch resolveFormat(format, out) {
			case formatTerminal:
				return renderTerminal(out, source)
			case formatHTML:
				cfg, err := getConfig(cmd)
				if err != nil {
					return err
				}
				svc, err := markdown.NewService(markdown.Config{
					Engine:   cfg.Markdown.Engine,
					Sanitize: cfg.Markdown.Sanitize,
					Parser: interfaces.ParseOptions{
						Extensions: cfg.Markdown.Extensions,
						HardWraps:  cfg.Markdown.HardWraps,
					},
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, svc.Render(cmd.Context(), source))
				return err
			default:
				return fmt.Errorf("unknown format %q (want html, terminal or auto)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatHTML, "output format: html, terminal or auto")
	return cmd
}

func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// resolveFormat maps "auto" to terminal output when out is a TTY.
func resolveFormat(format string, out io.Writer) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != formatAuto {
		return format
	}
	if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return formatTerminal
	}
	return formatHTML
}

func renderTerminal(out io.Writer, source string) error {
	width := defaultWrap
	if file, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(file.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	rendered, err := r.Render(source)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}

package di

import (
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

func markdownConfig(cfg runtimeconfig.MarkdownConfig) markdown.Config {
	return markdown.Config{
		Engine:   cfg.Engine,
		Sanitize: cfg.Sanitize,
		Parser: interfaces.ParseOptions{
			Extensions: append([]string(nil), cfg.Extensions...),
			HardWraps:  cfg.HardWraps,
			SafeMode:   cfg.Sanitize,
		},
	}
}

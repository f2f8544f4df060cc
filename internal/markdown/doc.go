// Package markdown renders project descriptions. Render implements the small
// dialect used by the site (headers, bullet lists, bold, italic, inline code
// and line breaks); Service selects between it and goldmark and optionally
// sanitizes the result. The package also imports projects from Markdown files
// with front matter.
package markdown

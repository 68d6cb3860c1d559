package tui

import (
	"strings"
	"time"

	"github.com/AbdelazizMoustafa10m/plotline/internal/hierarchy"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// TreeOptions controls RenderTree.
type TreeOptions struct {
	// DateFormat is the Go layout used for bucket labels. Empty means
	// "2006-01-02".
	DateFormat string
	// ShowIDs appends a short task id after each title.
	ShowIDs bool
}

// shortIDLen is the number of id characters shown with ShowIDs.
const shortIDLen = 8

// RenderTree draws the hierarchy forest with box-drawing guides, one node per
// line.
func RenderTree(root hierarchy.Node, theme Theme, opts TreeOptions) string {
	return strings.Join(TreeLines(root, theme, opts), "\n")
}

// TreeLines is RenderTree split into lines.
func TreeLines(root hierarchy.Node, theme Theme, opts TreeOptions) []string {
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02"
	}
	lines := []string{label(root, theme, opts)}
	for i, child := range root.Children {
		lines = appendBranch(lines, child, "", i == len(root.Children)-1, theme, opts)
	}
	return lines
}

func appendBranch(lines []string, n hierarchy.Node, prefix string, last bool, theme Theme, opts TreeOptions) []string {
	connector, next := "├── ", "│   "
	if last {
		connector, next = "└── ", "    "
	}
	lines = append(lines, theme.Guide.Render(prefix+connector)+label(n, theme, opts))
	for i, child := range n.Children {
		lines = appendBranch(lines, child, prefix+next, i == len(n.Children)-1, theme, opts)
	}
	return lines
}

func label(n hierarchy.Node, theme Theme, opts TreeOptions) string {
	switch n.Kind {
	case hierarchy.KindAll:
		return theme.Root.Render(n.Title)
	case hierarchy.KindDay:
		d, err := task.ParseDate(n.Date)
		if err != nil {
			return theme.Bucket.Render(n.Title)
		}
		return theme.Bucket.Render(d.In(time.UTC).Format(opts.DateFormat))
	default:
		s := theme.Status(n.Status).Render(StatusIcon(n.Status) + " " + n.Title)
		if opts.ShowIDs {
			id := n.ID
			if len(id) > shortIDLen {
				id = id[:shortIDLen]
			}
			s += " " + theme.ID.Render("("+id+")")
		}
		return s
	}
}

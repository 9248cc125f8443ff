package export

import (
	"linkscout/internal/checker"
	"linkscout/internal/linktree"
)

type TreeExporter interface {
	// Export writes an artifact derived from the crawl tree to the named file.
	Export(root *linktree.Node, filename string) error
}

type ReportExporter interface {
	// Export writes the broken-link records to the named file.
	Export(records []checker.BrokenLink, filename string) error
}

package export

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/gocarina/gocsv"

	"linkscout/internal/checker"
	"linkscout/internal/linktree"
)

// UniqueLinksCSVExporter writes the deduplicated (URL, Title) listing of
// every page in a crawl tree, in depth-first order.
type UniqueLinksCSVExporter struct{}

func NewUniqueLinksCSVExporter() TreeExporter {
	return &UniqueLinksCSVExporter{}
}

func (e *UniqueLinksCSVExporter) Export(root *linktree.Node, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		log.Error("creating file", "file", filename, "err", err)
		return err
	}
	defer file.Close()

	rows := linktree.Flatten(root)
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		log.Error("exporting unique links", "file", filename, "err", err)
		return err
	}
	return nil
}

// BrokenLinksCSVExporter writes scan records as a flat report.
type BrokenLinksCSVExporter struct{}

func NewBrokenLinksCSVExporter() ReportExporter {
	return &BrokenLinksCSVExporter{}
}

func (e *BrokenLinksCSVExporter) Export(records []checker.BrokenLink, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		log.Error("creating file", "file", filename, "err", err)
		return err
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&records, file); err != nil {
		log.Error("exporting broken links", "file", filename, "err", err)
		return err
	}
	return nil
}

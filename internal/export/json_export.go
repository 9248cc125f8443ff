package export

import (
	"encoding/json"
	"os"

	"github.com/charmbracelet/log"

	"linkscout/internal/linktree"
)

type TreeJSONExporter struct{}

func NewTreeJSONExporter() TreeExporter {
	return &TreeJSONExporter{}
}

// Export writes the full tree, nested children included, as indented JSON.
func (e *TreeJSONExporter) Export(root *linktree.Node, filename string) error {
	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		log.Error("marshalling link tree", "err", err)
		return err
	}

	if err := os.WriteFile(filename, out, 0o644); err != nil {
		log.Error("writing link tree", "file", filename, "err", err)
		return err
	}
	return nil
}

package notebook

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// maxNotebookBytes guards against pathologically large uploads. Oversized
// notebooks are an input error for that submission, not a crash.
const maxNotebookBytes = 32 << 20

// Load reads a notebook document from disk.
func Load(path string) (*model.Notebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "notebook: open file")
	}
	defer f.Close()
	nb, err := Read(f)
	if err != nil {
		return nil, eris.Wrapf(err, "notebook: load %s", path)
	}
	return nb, nil
}

// Read parses a notebook document from a reader.
func Read(r io.Reader) (*model.Notebook, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxNotebookBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "notebook: read")
	}
	if len(data) > maxNotebookBytes {
		return nil, eris.New("notebook: document exceeds size limit")
	}

	var nb model.Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, eris.Wrap(err, "notebook: parse json")
	}
	if len(nb.Cells) == 0 {
		return nil, eris.New("notebook: document has no cells")
	}
	return &nb, nil
}

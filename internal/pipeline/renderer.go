package pipeline

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/perturbia/perturbia/internal/model"
)

// Render encodes results as a JSON array. pretty indents with four spaces
// to match the layout downstream consumers diff against.
func Render(results []model.StatementResult, pretty bool) ([]byte, error) {
	if results == nil {
		results = []model.StatementResult{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(results, "", "    ")
	} else {
		data, err = json.Marshal(results)
	}
	if err != nil {
		return nil, errors.Wrap(err, "encode results")
	}

	return append(data, '\n'), nil
}

// WriteFile renders results and writes them to path
func WriteFile(path string, results []model.StatementResult, pretty bool) error {
	data, err := Render(results, pretty)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

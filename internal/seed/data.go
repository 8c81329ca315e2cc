package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/survey"
)

// LoadData reads a generated data file. Individual records are not validated
// here; invalid surveys are rejected per record when they are mapped.
func LoadData(path string) (survey.Data, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return survey.Data{}, fmt.Errorf("%w: %s", internal.ErrDataNotFound, path)
		}
		return survey.Data{}, fmt.Errorf("read data file %s: %w", path, err)
	}

	var data survey.Data
	err = json.Unmarshal(content, &data)
	if err != nil {
		return survey.Data{}, fmt.Errorf("%w: %s: %w", internal.ErrDataMalformed, path, err)
	}

	return data, nil
}

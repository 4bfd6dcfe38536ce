package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

const utf8BOM = "\ufeff"

func (l *Loader) loadCSV(role, path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("opening csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Width is checked by dataset.NewTable so the error names the row.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, &dataset.MalformedInputError{Table: role, Reason: "file has no header row"}
	}
	if err != nil {
		return nil, csvError(role, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	records, err := r.ReadAll()
	if err != nil {
		return nil, csvError(role, err)
	}
	return l.rowsToTable(role, header, records)
}

func csvError(role string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &dataset.MalformedInputError{Table: role, Reason: perr.Error()}
	}
	return fmt.Errorf("reading csv %s: %w", role, err)
}

package seed

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
)

// Fixtures maps tenant names to seed data overrides.
type Fixtures map[string]Data

// LoadFixtures reads a JSON fixtures file. Files ending in ".gz" are
// decompressed transparently.
func LoadFixtures(path string) (Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return DecodeFixtures(r)
}

// DecodeFixtures parses fixtures from r and validates every tenant's data.
func DecodeFixtures(r io.Reader) (Fixtures, error) {
	var fx Fixtures
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return nil, errors.Wrap(err, "decode fixtures")
	}
	for tenant, data := range fx {
		if err := data.Validate(); err != nil {
			return nil, errors.Wrapf(err, "fixtures for %s", tenant)
		}
	}
	return fx, nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage/sqlite"
)

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("import takes exactly one FILE argument")
	}
	residences, err := readResidences(c.Args().First())
	if err != nil {
		return err
	}

	app, err := concierge.New(c.Context, c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer app.Close()

	pipeline, err := app.NewIngestionPipeline()
	if err != nil {
		return err
	}
	if err := pipeline.Ingest(c.Context, residences); err != nil {
		pipeline.Release()
		return fmt.Errorf("import failed: %w", err)
	}
	pipeline.Release()

	if path := c.String("sqlite"); path != "" {
		catalog, err := sqlite.OpenCatalog(path)
		if err != nil {
			return err
		}
		defer catalog.Close()
		if err := catalog.PutResidences(c.Context, residences...); err != nil {
			return fmt.Errorf("sqlite import failed: %w", err)
		}
	}

	fmt.Fprintf(c.App.Writer, "Imported %d residences\n", len(residences))
	return nil
}

// readResidences decodes a JSON array of residences and validates each one.
func readResidences(path string) ([]*core.Residence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var residences []*core.Residence
	if err := json.Unmarshal(data, &residences); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, r := range residences {
		if err := core.ValidateResidence(r); err != nil {
			return nil, fmt.Errorf("%s: residence %d: %w", path, i, err)
		}
	}
	return residences, nil
}

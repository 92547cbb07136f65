package cmd

import (
	"time"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/processor"
	"github.com/urfave/cli"
)

// Compute local-frame incidence coordinates and angles on the reference
// surface and export them as CSV.
func ExportLocalCoordinates(ctx *cli.Context) error {
	setupLogging(ctx)

	center, err := parseVec3(ctx.String("center"))
	if err != nil {
		return err
	}
	normal, err := parseVec3(ctx.String("normal"))
	if err != nil {
		return err
	}

	srv, err := openServer(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()

	proc := processor.NewLocalFrame(srv.ReferenceSurfaceID(), center, normal)

	start := time.Now()
	results, err := processor.Run[processor.LocalSample](srv, proc, runOptions(ctx))
	if err != nil {
		return err
	}
	logger.Noticef("computed %d local-frame samples in %s", len(results), time.Since(start))

	rows := make([][]string, len(results))
	for i, sample := range results {
		rows[i] = []string{
			formatFloat(sample.Point[0]), formatFloat(sample.Point[1]), formatFloat(sample.Point[2]),
			formatFloat(sample.Length),
			formatFloat(sample.Azimuth), formatFloat(sample.Zenith),
		}
	}

	out := ctx.String("out")
	if err = writeCSV(out, []string{"x", "y", "z", "length", "azimuth", "zenith"}, rows); err != nil {
		return err
	}
	logger.Noticef("wrote %s", out)
	return nil
}

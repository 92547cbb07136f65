package cmd

import (
	"time"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/processor"
	"github.com/urfave/cli"
)

// Compute incidence directions on the reference surface and export them
// as CSV.
func ExportDirections(ctx *cli.Context) error {
	setupLogging(ctx)

	srv, err := openServer(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()

	start := time.Now()
	results, err := processor.Run[processor.Incidence](srv, processor.NewDirections(srv.ReferenceSurfaceID()), runOptions(ctx))
	if err != nil {
		return err
	}
	logger.Noticef("computed %d incidence directions in %s", len(results), time.Since(start))

	rows := make([][]string, len(results))
	for i, inc := range results {
		rows[i] = []string{
			formatFloat(inc.Point[0]), formatFloat(inc.Point[1]), formatFloat(inc.Point[2]),
			formatFloat(inc.Direction[0]), formatFloat(inc.Direction[1]), formatFloat(inc.Direction[2]),
			formatFloat(inc.Length),
		}
	}

	out := ctx.String("out")
	if err = writeCSV(out, []string{"x", "y", "z", "dx", "dy", "dz", "length"}, rows); err != nil {
		return err
	}
	logger.Noticef("wrote %s", out)
	return nil
}

package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/processor"
	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/trace"
	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/types"
	"github.com/urfave/cli"
)

// Open the trace named by the command argument against the selected
// reference surface.
func openServer(ctx *cli.Context) (*trace.Server, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing trace directory argument")
	}

	surface := ctx.String("surface")
	if surface == "" {
		return nil, errors.New("missing required --surface flag")
	}

	srv, err := trace.Open(ctx.Args().First(), surface)
	if err != nil {
		return nil, err
	}

	logger.Noticef("surface %q resolved to id %d", surface, srv.ReferenceSurfaceID())
	return srv, nil
}

func runOptions(ctx *cli.Context) processor.Options {
	return processor.Options{
		NumWorkers: ctx.Int("workers"),
		BatchSize:  ctx.Int("batch"),
	}
}

// Parse a comma separated "x,y,z" vector flag.
func parseVec3(arg string) (types.Vec3, error) {
	fields := strings.Split(arg, ",")
	if len(fields) != 3 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for %q; expected 3 comma separated values", arg)
	}

	var v types.Vec3
	for i, field := range fields {
		val, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return types.Vec3{}, fmt.Errorf("unsupported syntax for %q; %v", arg, err)
		}
		v[i] = val
	}
	return v, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(header); err != nil {
		return err
	}
	if err = w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

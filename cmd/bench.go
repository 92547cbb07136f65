package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Drain the trace without processing and report serving throughput.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)

	srv, err := openServer(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()

	batchSize := ctx.Int("batch")
	if batchSize <= 0 {
		batchSize = 10000
	}

	var (
		rayPaths, photons    int
		extentMin, extentMax types.Vec3
	)
	start := time.Now()
	for {
		batch, err := srv.ServeRayPaths(batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}
		rayPaths += len(batch)
		for _, path := range batch {
			for i := range path.Photons {
				pos := path.Photons[i].Position()
				if photons == 0 {
					extentMin, extentMax = pos, pos
				} else {
					extentMin = types.MinVec3(extentMin, pos)
					extentMax = types.MaxVec3(extentMax, pos)
				}
				photons++
			}
		}
	}
	elapsed := time.Since(start)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Ray paths", "Photons", "Batch size", "Elapsed", "Paths/sec"})
	table.Append([]string{
		fmt.Sprintf("%d", rayPaths),
		fmt.Sprintf("%d", photons),
		fmt.Sprintf("%d", batchSize),
		fmt.Sprintf("%s", elapsed),
		fmt.Sprintf("%.0f", float64(rayPaths)/elapsed.Seconds()),
	})
	table.Render()
	logger.Noticef("serving statistics\n%s", buf.String())
	if photons > 0 {
		logger.Noticef("photon extent: min %v max %v", extentMin, extentMax)
	}

	return nil
}

package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/trace"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display the surface catalog and metadata of a trace directory.
func TraceInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing trace directory argument")
	}

	md, err := trace.ReadMetadata(ctx.Args().First())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Surface ID", "Path"})
	for _, entry := range md.Surfaces {
		table.Append([]string{fmt.Sprintf("%d", entry.ID), entry.Path})
	}
	table.Render()
	logger.Noticef("surfaces declared in %s\n%s", md.File, buf.String())

	if md.PhotonPower > 0 {
		logger.Noticef("photon power: %g", md.PhotonPower)
	}

	if surface := ctx.String("surface"); surface != "" {
		id, ok := md.Resolve(surface)
		if !ok {
			return fmt.Errorf("%w: %q", trace.ErrSurfaceNotFound, surface)
		}
		logger.Noticef("surface %q resolves to id %d", surface, id)
	}

	return nil
}

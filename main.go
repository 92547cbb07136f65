package main

import (
	"os"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	surfaceFlag := cli.StringFlag{
		Name:  "surface, s",
		Usage: "path of the reference surface to analyse",
	}
	workersFlag := cli.IntFlag{
		Name:  "workers, w",
		Usage: "number of worker threads (defaults to the number of CPUs)",
	}
	batchFlag := cli.IntFlag{
		Name:  "batch, b",
		Usage: "number of ray paths per batch",
	}

	app := cli.NewApp()
	app.Name = "angular-distribution"
	app.Usage = "analyse angular ray distributions from TonatiuhXX photon traces"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "info",
			Usage: "show the surface catalog and metadata of a trace directory",
			Flags: []cli.Flag{
				surfaceFlag,
			},
			ArgsUsage: "trace_dir",
			Action:    cmd.TraceInfo,
		},
		{
			Name:  "directions",
			Usage: "compute incidence directions on the reference surface",
			Description: `
Reconstruct every ray path that reaches the reference surface and export
the incidence point, incoming unit direction and final segment length as
CSV records for angular-distribution analysis.`,
			Flags: []cli.Flag{
				surfaceFlag,
				workersFlag,
				batchFlag,
				cli.StringFlag{
					Name:  "out, o",
					Value: "directions.csv",
					Usage: "output CSV filename",
				},
			},
			ArgsUsage: "trace_dir",
			Action:    cmd.ExportDirections,
		},
		{
			Name:  "local-coords",
			Usage: "compute local-frame incidence coordinates and angles",
			Description: `
Like the directions command but expressed in the local frame of the
reference surface: incidence point relative to the surface center plus
azimuth and zenith angles of the incoming direction.`,
			Flags: []cli.Flag{
				surfaceFlag,
				workersFlag,
				batchFlag,
				cli.StringFlag{
					Name:  "center",
					Value: "0,0,0",
					Usage: "surface center as x,y,z",
				},
				cli.StringFlag{
					Name:  "normal",
					Value: "0,0,1",
					Usage: "surface normal as x,y,z",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "local_coords.csv",
					Usage: "output CSV filename",
				},
			},
			ArgsUsage: "trace_dir",
			Action:    cmd.ExportLocalCoordinates,
		},
		{
			Name:  "bench",
			Usage: "drain a trace without processing and report throughput",
			Flags: []cli.Flag{
				surfaceFlag,
				batchFlag,
			},
			ArgsUsage: "trace_dir",
			Action:    cmd.Bench,
		},
	}

	app.Run(os.Args)
}

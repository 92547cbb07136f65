package cmd

import (
	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/log"
	"github.com/urfave/cli"
)

var logger = log.New("angdist")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

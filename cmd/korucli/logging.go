package main

import (
	"github.com/devblok/korugl/core"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var logger = core.Component("korucli")

func setupLogging(ctx *cli.Context) {
	log.SetLevel(log.WarnLevel)
	if ctx.GlobalBool("v") {
		log.SetLevel(log.InfoLevel)
	}
	if ctx.GlobalBool("vv") {
		log.SetLevel(log.DebugLevel)
	}
}

package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "korucli"
	app.Usage = "bake and package koru scenes"
	app.Version = "0.2.0"
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
			Name:  "bake",
			Usage: "bake scenes against a headless device and report resource counts",
			Description: `
Load each glTF or Collada file, bake it into a renderer backed by the headless
device and print how many resources of every kind were created.`,
			ArgsUsage: "scene1.gltf scene2.dae ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "archive, a",
					Usage: "read scenes from this kar archive instead of the file system",
				},
			},
			Action: bakeScenes,
		},
		{
			Name:      "pack",
			Usage:     "pack files into a kar archive",
			ArgsUsage: "archive.kar file1 file2 ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "author",
					Usage: "author recorded in the archive header",
				},
			},
			Action: packArchive,
		},
		{
			Name:      "list",
			Usage:     "list the contents of a kar archive",
			ArgsUsage: "archive.kar",
			Action:    listArchive,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

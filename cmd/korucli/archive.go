package main

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/devblok/korugl/utility/kar"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func addFile(b *kar.Builder, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Add(filepath.ToSlash(path), f)
}

func packArchive(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() < 2 {
		return cli.NewExitError("expected an archive name and at least one file", 1)
	}

	b, err := kar.NewBuilder(kar.Header{
		Author:  ctx.String("author"),
		Version: 1,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	for _, path := range ctx.Args().Tail() {
		if err := addFile(b, path); err != nil {
			return err
		}
		logger.WithField("file", path).Debug("added")
	}

	out, err := os.Create(ctx.Args().First())
	if err != nil {
		return err
	}
	written, err := b.WriteTo(out)
	if err != nil {
		out.Close()
		return err
	}
	logger.WithField("files", b.Len()).WithField("bytes", written).Info("archive written")
	return out.Close()
}

func listArchive(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() != 1 {
		return cli.NewExitError("expected exactly one archive", 1)
	}

	f, err := kar.OpenFile(ctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	header := f.Header()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Name", "Size", "Compressed"})

	var size, compressed int64
	for _, name := range f.Names() {
		e, _ := header.Find(name)
		table.Append([]string{name, strconv.FormatInt(e.Size, 10), strconv.FormatInt(e.CompressedSize, 10)})
		size += e.Size
		compressed += e.CompressedSize
	}
	table.SetFooter([]string{"Total", strconv.FormatInt(size, 10), strconv.FormatInt(compressed, 10)})
	table.SetCaption(true, header.Author+" "+time.Unix(header.DateCreated, 0).UTC().Format(time.RFC3339))
	table.Render()
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/devblok/korugl/device/headless"
	"github.com/devblok/korugl/model"
	"github.com/devblok/korugl/renderer"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/utility/kar"
	"github.com/olekukonko/tablewriter"
	"github.com/qmuntal/gltf"
	"github.com/urfave/cli"
)

func loadDocument(ar *kar.Archive, name string) (*gltf.Document, error) {
	if ar != nil {
		return model.LoadArchivedGLTF(ar, name)
	}
	return model.LoadGLTF(name)
}

func readFile(ar *kar.Archive, name string) ([]byte, error) {
	if ar != nil {
		return ar.ReadAll(name)
	}
	return os.ReadFile(name)
}

func bakeScene(r *renderer.Renderer, ar *kar.Archive, name string) error {
	if strings.EqualFold(filepath.Ext(name), ".dae") {
		data, err := readFile(ar, name)
		if err != nil {
			return err
		}
		material, err := r.InsertMaterial(renderer.NewPbrMaterial(renderer.DefaultPbrConfig()))
		if err != nil {
			return err
		}
		mesh, err := model.ImportCollada(data, r, material)
		if err != nil {
			return err
		}
		node := scene.NewNode()
		node.Name = filepath.Base(name)
		node.Mesh = mesh
		r.InsertNode(node)
		return nil
	}

	doc, err := loadDocument(ar, name)
	if err != nil {
		return err
	}
	_, err = model.BakeGLTF(doc, r)
	return err
}

func bakeScenes(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() == 0 {
		return cli.NewExitError("no scenes given", 1)
	}

	var ar *kar.Archive
	if path := ctx.String("archive"); path != "" {
		f, err := kar.OpenFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		ar = f.Archive
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Scene", "Meshes", "Nodes", "Materials", "Shaders", "Accessors", "Buffers", "Textures"})

	for _, name := range ctx.Args() {
		r := renderer.New(headless.New(), renderer.WithLogger(logger.WithField("scene", name)))
		if err := bakeScene(r, ar, name); err != nil {
			return fmt.Errorf("bake %s: %w", name, err)
		}
		s := r.Stats()
		table.Append([]string{
			name,
			strconv.Itoa(s.Meshes),
			strconv.Itoa(s.Nodes),
			strconv.Itoa(s.Materials),
			strconv.Itoa(s.Shaders),
			strconv.Itoa(s.Accessors),
			strconv.Itoa(s.Buffers),
			strconv.Itoa(s.Textures),
		})
	}
	table.Render()
	return nil
}

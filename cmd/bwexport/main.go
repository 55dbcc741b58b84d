package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bigworld-tools/bwexport/bw"
	"github.com/bigworld-tools/bwexport/converter"
	"github.com/bigworld-tools/bwexport/exporter"
	"github.com/qmuntal/gltf"
)

func loadAsset(input string, fps int) (*bw.SceneAsset, error) {
	ext := strings.ToLower(filepath.Ext(input))
	if ext != ".glb" && ext != ".gltf" {
		return nil, fmt.Errorf("unsupported input type: %v", ext)
	}
	doc, err := gltf.Open(input)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(input)
	name = name[0 : len(name)-len(ext)]
	conv := converter.NewGLTFToBWConverter(&converter.GLTFToBWOption{FPS: fps})
	return conv.Convert(doc, name)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.glb [input2.glb ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	configFile := flag.String("config", "", "export settings file (YAML)")
	outDir := flag.String("out", "", "output directory")
	rootPath := flag.String("root", "", "resource root directory")
	scale := flag.Float64("scale", 0, "unit scale (0: from settings)")
	fps := flag.Int("fps", 0, "animation frame rate (0: from settings)")
	flipWinding := flag.Bool("flipwinding", false, "flip triangle winding")
	binSections := flag.Bool("binsections", false, "write packed binary sections instead of text")
	auditFile := flag.String("audit", "", "audit log file")
	prefabName := flag.String("prefab", "", "also write a prefab grouping all inputs")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	settings := exporter.DefaultSettings()
	if *configFile != "" {
		var err error
		settings, err = exporter.LoadSettings(*configFile)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *rootPath != "" {
		settings.RootPath = *rootPath
	}
	if *outDir != "" {
		settings.OutputDir = *outDir
	}
	if settings.OutputDir == "" {
		settings.OutputDir = "."
	}
	if *scale != 0 {
		settings.UnitScale = float32(*scale)
	}
	if *fps != 0 {
		settings.FPS = *fps
	}
	if *flipWinding {
		settings.FlipWinding = true
	}
	if *binSections {
		settings.BinarySections = true
	}
	if *auditFile != "" {
		settings.Logging.AuditFile = *auditFile
	}

	var assets []*bw.SceneAsset
	for _, input := range flag.Args() {
		asset, err := loadAsset(input, settings.FPS)
		if err != nil {
			log.Fatal(err)
		}
		assets = append(assets, asset)
	}

	audit := exporter.NewAuditLog(settings.Logging, true)
	defer audit.Sync()

	batch := exporter.NewBatch(settings, audit)
	if *prefabName != "" {
		group := &bw.PrefabGroup{Name: *prefabName}
		for _, asset := range assets {
			group.Instances = append(group.Instances, &bw.PrefabInstance{
				Role:    asset.Name,
				Visible: true,
			})
		}
		batch.PrefabName = *prefabName
		batch.Prefab = []*bw.PrefabGroup{group}
	}

	result, err := batch.Run(assets)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("exported %d/%d objects (%d failed), %d files\n",
		result.Succeeded, result.Attempted, result.Failed, len(result.Written))
	for name, err := range result.Errors {
		fmt.Printf("  %s: %v\n", name, err)
	}
	if result.Failed > 0 {
		os.Exit(1)
	}
}

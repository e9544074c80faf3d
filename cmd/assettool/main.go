// assettool is a CLI utility for inspecting meshview asset files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/formats"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	formats.SetLogger(logger.Log)

	manager := assets.NewManager()
	defer manager.Close()
	for _, path := range cfg.Assets.SearchPaths {
		// Configured paths may not all exist on this machine.
		if err := manager.AddSearchPath(path); err != nil {
			logger.Sugar.Debugf("skipping search path: %v", err)
		}
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(manager, args)
	case "dump":
		cmdDump(manager, args)
	case "validate", "check":
		cmdValidate(manager, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`assettool - meshview asset inspection utility

Usage:
  assettool [options] <command> [files]

Commands:
  info <file>        Show model or texture summary
  dump <file>        Dump mesh arrays / decoded pixels
  validate <file..>  Parse files and report errors

Supported formats: .obj (Wavefront geometry), .tga (Truevision image)

Examples:
  assettool info models/chair.obj
  assettool -assets ./data info textures/wood.tga
  assettool validate models/*.obj`)
}

func cmdInfo(m *assets.Manager, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assettool info <file>")
		os.Exit(1)
	}
	path := args[0]

	switch ext(path) {
	case ".obj":
		models, err := m.LoadModel(path)
		if err != nil {
			fatalf("loading %s: %v", path, err)
		}
		fmt.Printf("%s: %d model(s)\n", path, len(models))
		for _, model := range models {
			mesh := model.Mesh
			fmt.Printf("  %-24s %6d vertices %6d triangles  normals=%v texcoords=%v\n",
				model.Name, mesh.VertexCount(), mesh.TriangleCount(),
				mesh.HasNormals(), mesh.HasTexCoords())
		}

	case ".tga":
		tga, err := m.LoadTexture(path)
		if err != nil {
			fatalf("loading %s: %v", path, err)
		}
		h := tga.Header()
		fmt.Printf("%s: %dx%d %s %s\n", path, h.Width, h.Height, h.DataType, h.PixelDepth)
		fmt.Printf("  origin      %s (x=%d y=%d)\n", h.ImageOrigin, h.XOrigin, h.YOrigin)
		fmt.Printf("  alpha depth %d bits\n", h.AlphaDepth)
		fmt.Printf("  color map   %v (%d entries, %s)\n", h.HasColorMap, h.ColorMapLen, h.ColorMapDepth)
		fmt.Printf("  pixel bytes %d, footer %v\n", len(tga.RawPixelData()), tga.HasFooter())

	default:
		fatalf("unsupported file type: %s", path)
	}
}

func cmdDump(m *assets.Manager, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assettool dump <file>")
		os.Exit(1)
	}
	path := args[0]

	switch ext(path) {
	case ".obj":
		models, err := m.LoadModel(path)
		if err != nil {
			fatalf("loading %s: %v", path, err)
		}
		for _, model := range models {
			mesh := model.Mesh
			fmt.Printf("model %q\n", model.Name)
			for v := 0; v < mesh.VertexCount(); v++ {
				fmt.Printf("  v%-5d % .4f % .4f % .4f", v,
					mesh.Positions[v*3], mesh.Positions[v*3+1], mesh.Positions[v*3+2])
				if mesh.HasTexCoords() {
					fmt.Printf("  uv % .4f % .4f", mesh.TexCoords[v*2], mesh.TexCoords[v*2+1])
				}
				if mesh.HasNormals() {
					fmt.Printf("  n % .4f % .4f % .4f",
						mesh.Normals[v*3], mesh.Normals[v*3+1], mesh.Normals[v*3+2])
				}
				fmt.Println()
			}
			for i := 0; i+2 < len(mesh.Indices); i += 3 {
				fmt.Printf("  tri %d %d %d\n", mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2])
			}
		}

	case ".tga":
		tga, err := m.LoadTexture(path)
		if err != nil {
			fatalf("loading %s: %v", path, err)
		}
		r := tga.Pixels()
		for r.Next() {
			p := r.Pixel()
			fmt.Printf("(%3d,%3d) 0x%08x\n", p.Position.X, p.Position.Y, p.Color)
		}
		if err := r.Err(); err != nil {
			fatalf("decoding %s: %v", path, err)
		}

	default:
		fatalf("unsupported file type: %s", path)
	}
}

func cmdValidate(m *assets.Manager, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assettool validate <file...>")
		os.Exit(1)
	}

	failed := 0
	for _, path := range args {
		var err error
		switch ext(path) {
		case ".obj":
			_, err = m.LoadModel(path)
		case ".tga":
			_, err = m.LoadTexture(path)
		default:
			err = fmt.Errorf("unsupported file type")
		}

		if err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
		} else {
			fmt.Printf("ok   %s\n", path)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

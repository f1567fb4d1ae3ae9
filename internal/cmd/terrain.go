package cmd

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/MeKo-Tech/noisegen/internal/clock"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/MeKo-Tech/noisegen/internal/terrain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var terrainCmd = &cobra.Command{
	Use:   "terrain",
	Short: "Build a terrain mesh and write it as Wavefront OBJ",
	Long: `Build a height-displaced grid mesh from fractal noise and write it as OBJ.

With --frames the terrain scrolls through noise space and every rebuilt mesh
is written; include %d in --output to number the files.`,
	RunE: runTerrain,
}

func init() {
	rootCmd.AddCommand(terrainCmd)

	def := terrain.DefaultConfig()
	flags := terrainCmd.Flags()
	flags.StringP("output", "o", "terrain.obj", "Output OBJ file")
	flags.Int("frames", 0, "Number of scroll steps to simulate")
	flags.Bool("randomize", false, "Randomize the noise offset from the seed")
	addNoiseFlags(flags, "terrain", def.Family, def.Dimensions, def.Fractal)
	addGradientFlags(flags, "terrain", "")
	addTerrainFlags(flags, "terrain")

	bindFlags(flags, []flagBinding{
		{"terrain.output", "output"},
		{"terrain.frames", "frames"},
		{"terrain.randomize", "randomize"},
	})
}

func runTerrain(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	cfg, err := readTerrainConfig("terrain")
	if err != nil {
		return err
	}
	output := viper.GetString("terrain.output")
	frames := viper.GetInt("terrain.frames")
	if frames < 0 {
		return fmt.Errorf("frames must not be negative")
	}
	if frames > 0 {
		cfg.Scroll.Enabled = true
		if !strings.Contains(output, "%d") {
			logger.Warn("Output has no %d placeholder, each frame overwrites the last", "output", output)
		}
	}

	surface := &numberedOBJ{pattern: output}
	synth, err := terrain.New(cfg, noise.NewTable(viper.GetInt64("terrain.seed")), surface, logger)
	if err != nil {
		return err
	}
	if viper.GetBool("terrain.randomize") {
		synth.RandomizeOffsets(rand.New(rand.NewSource(viper.GetInt64("terrain.seed"))))
	}
	if err := synth.Create(); err != nil {
		return err
	}
	defer synth.Destroy()

	if frames > 0 {
		// the first scroll step is due right after Create
		if err := synth.Tick(0); err != nil {
			return err
		}
		if err := clock.Simulate(frames-1, cfg.Scroll.Interval, synth); err != nil {
			return err
		}
	}

	xs, zs := synth.Size()
	mesh := synth.Mesh()
	logger.Info("Terrain written",
		"output", output,
		"files", surface.written,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"size_x", xs,
		"size_z", zs,
		"bounds_min", formatVec3(mesh.Bounds.Min),
		"bounds_max", formatVec3(mesh.Bounds.Max),
	)
	return nil
}

// numberedOBJ writes each mesh to pattern, formatting %d with a frame number.
type numberedOBJ struct {
	pattern string
	written int
}

func (n *numberedOBJ) ReceiveMesh(m *terrain.Mesh) error {
	path := n.pattern
	if strings.Contains(path, "%d") {
		path = fmt.Sprintf(path, n.written)
	}
	if err := (&terrain.OBJSurface{Path: path}).ReceiveMesh(m); err != nil {
		return err
	}
	n.written++
	return nil
}

package commands

import (
	"log"

	"github.com/spf13/cobra"
)

var cpus int

func Execute() error {
	root := &cobra.Command{
		Use:   "godens",
		Short: "Synthesize, compare and transform 3D density maps",
		Long: `godens rasterizes atomic coordinates into volumetric density maps,
compares maps by normalized cross-correlation or Fourier shell correlation,
and applies auxiliary grid operations (threshold, crop, pad, blur).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVar(&cpus, "cpus", 0, "goroutines per frame (default: all logical CPUs)")
	root.AddCommand(genCmd(), thresholdCmd(), corrCmd(), resolutionCmd(),
		stdevCmd(), matchCmd(), cropCmd(), blurCmd())
	return root.Execute()
}

// logReporter prints splatting progress through the standard logger, one line
// per frame, with any auxiliary values appended.
type logReporter struct{}

func (logReporter) Update(done, total int, aux ...float64) {
	if total > 0 {
		if len(aux) > 0 {
			log.Printf("frame %d/%d %v", done, total, aux)
			return
		}
		log.Printf("frame %d/%d", done, total)
		return
	}
	if len(aux) > 0 {
		log.Printf("frame %d %v", done, aux)
		return
	}
	log.Printf("frame %d", done)
}

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	dens "github.com/rmera/godens"
	"github.com/rmera/godens/mrc"
	"github.com/rmera/godens/traj/xyz"
)

func genCmd() *cobra.Command {
	var sigma, cutoff, shift float64
	var nowater, center, backbone bool
	var refname, savedir, corrout, atoms string
	cmd := &cobra.Command{
		Use:   "gen trajectory.xyz out.mrc",
		Short: "Rasterize a trajectory into a density map",
		Long: `gen reads a multi-frame XYZ trajectory and splats every frame onto a
grid, writing the map of the last frame to out.mrc. Without a reference map
the grid is a cube sized to the first frame; with --ref the grid copies the
reference's geometry and every frame is correlated against it as it finishes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := xyz.ReadAll(args[0])
			if err != nil {
				return err
			}
			if atoms != "" {
				first, last, err := parseRange(atoms)
				if err != nil {
					return err
				}
				if seq, err = seq.Filter(dens.KeepRange(first, last)); err != nil {
					return err
				}
			}
			if backbone {
				if seq, err = seq.Filter(dens.KeepBackbone); err != nil {
					return err
				}
			}
			o := dens.DefaultOptions()
			o.Sigma(sigma)
			o.Cutoff(cutoff)
			o.NoWater(nowater)
			o.Center(center)
			o.Cpus(cpus)
			o.Frames(seq.Frames())
			o.Reporter(logReporter{})
			if savedir != "" {
				o.SaveEach(savedir, mrc.IO{})
			}
			var ax *dens.Axes
			var ref *dens.Map
			if refname != "" {
				ref, err = mrc.Read(refname)
				if err != nil {
					return err
				}
				ax, err = dens.RefAxes(ref, shift)
			} else {
				first := mat.NewDense(seq.Len(), 3, nil)
				if err := seq.Next(first); err != nil {
					return err
				}
				seq.Reset()
				ax, err = dens.NewAxes(first, o.Sigma(), center)
			}
			if err != nil {
				return err
			}
			corr := make(map[string]float64)
			if ref != nil {
				//the running correlation travels to the reporter as the
				//frame's auxiliary metric
				o.Observer(func(frame int, m *dens.Map) ([]float64, error) {
					cc, err := dens.Corr(ref, m)
					if err != nil {
						return nil, err
					}
					corr[fmt.Sprintf("step_%d", frame)] = cc
					return []float64{cc}, nil
				})
			}
			m, err := dens.Splat(seq, seq.Names(), ax, o)
			if err != nil {
				return err
			}
			if err := dens.WriteMap(mrc.IO{}, args[1], m, dens.Clobber); err != nil {
				return err
			}
			if corrout != "" && len(corr) > 0 {
				return dens.SaveCorr(corrout, corr)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&sigma, "sigma", 2.0, "Gaussian kernel width")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 6.0, "kernel truncation radius")
	cmd.Flags().BoolVar(&nowater, "nowater", false, "exclude water residues (SOL, WAT, HOH)")
	cmd.Flags().BoolVar(&center, "center", false, "de-mean each frame before splatting")
	cmd.Flags().StringVar(&refname, "ref", "", "reference map: grid geometry and per-frame correlation")
	cmd.Flags().Float64Var(&shift, "shift", 0, "voxel widths subtracted from the reference origin")
	cmd.Flags().StringVar(&savedir, "save-each", "", "directory for per-frame step_N.mrc files")
	cmd.Flags().StringVar(&corrout, "corr-out", "", "file for the per-frame correlations (zstd JSON)")
	cmd.Flags().StringVar(&atoms, "atoms", "", "atom index range to keep, first-last (from 0)")
	cmd.Flags().BoolVar(&backbone, "backbone", false, "keep only backbone atoms (N, CA, C, O)")
	return cmd
}

//parseRange parses a "first-last" atom range.
func parseRange(s string) (int, int, error) {
	fields := strings.SplitN(s, "-", 2)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("an atom range looks like first-last, got %q", s)
	}
	first, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, err
	}
	last, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, err
	}
	if first < 0 || last < first {
		return 0, 0, fmt.Errorf("invalid atom range %q", s)
	}
	return first, last, nil
}

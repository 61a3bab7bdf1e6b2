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

func thresholdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "threshold map.mrc value",
		Short: "Zero every voxel at or below the value, in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			thr, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}
			return mrc.Threshold(args[0], thr)
		},
	}
}

func matchCmd() *cobra.Command {
	var shape, refname string
	cmd := &cobra.Command{
		Use:   "match in.mrc out.mrc",
		Short: "Zero-pad a map into a cube, a reference's shape, or an explicit shape",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mrc.Read(args[0])
			if err != nil {
				return err
			}
			var ret *dens.Map
			switch {
			case refname != "":
				ref, err2 := mrc.Read(refname)
				if err2 != nil {
					return err2
				}
				ret, err = dens.MatchTo(m, ref.Shape)
			case shape == "":
				ret, err = dens.MatchCube(m)
			default:
				var s [3]int
				fields := strings.Split(shape, ",")
				if len(fields) != 3 {
					return fmt.Errorf("--shape takes 3 comma-separated integers")
				}
				for i, f := range fields {
					s[i], err = strconv.Atoi(strings.TrimSpace(f))
					if err != nil {
						return err
					}
				}
				ret, err = dens.MatchTo(m, s)
			}
			if err != nil {
				return err
			}
			return dens.WriteMap(mrc.IO{}, args[1], ret, dens.Clobber)
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "", "target storage shape, nz,ny,nx (default: cube)")
	cmd.Flags().StringVar(&refname, "ref", "", "reference map whose shape is the target")
	return cmd
}

func cropCmd() *cobra.Command {
	var margin int
	cmd := &cobra.Command{
		Use:   "crop map.mrc coords.xyz out.mrc",
		Short: "Crop a map to the box covering the given coordinates",
		Long: `crop extracts the part of the map covering the coordinates of the first
frame of coords.xyz, plus a margin of voxels per side. It refuses to replace
an existing output file.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mrc.Read(args[0])
			if err != nil {
				return err
			}
			seq, err := xyz.ReadAll(args[1])
			if err != nil {
				return err
			}
			coord := mat.NewDense(seq.Len(), 3, nil)
			if err := seq.Next(coord); err != nil {
				return err
			}
			ret, err := dens.Crop(m, coord, margin)
			if err != nil {
				return err
			}
			return dens.WriteMap(mrc.IO{}, args[2], ret, dens.Refuse)
		},
	}
	cmd.Flags().IntVar(&margin, "margin", 0, "extra voxels per side")
	return cmd
}

func blurCmd() *cobra.Command {
	var min, max float64
	var n int
	var dir string
	cmd := &cobra.Command{
		Use:   "blur in.mrc base",
		Short: "Gaussian-blur a map over one width, or a sweep of widths",
		Long: `blur smooths the map with isotropic Gaussians and writes one file per
width, named base_blur_<width>.mrc. Giving only --min (or only --max) blurs
at that single width; giving both expands an ascending range into --n evenly
spaced widths; giving neither blurs at one voxel width.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mrc.Read(args[0])
			if err != nil {
				return err
			}
			vals, err := dens.BlurValues(min, max, n, m.Dx[0])
			if err != nil {
				return err
			}
			return dens.BlurSweep(m, vals, dir, args[1], mrc.IO{})
		},
	}
	cmd.Flags().Float64Var(&min, "min", 0, "smallest blur width")
	cmd.Flags().Float64Var(&max, "max", 0, "largest blur width")
	cmd.Flags().IntVar(&n, "n", 5, "number of widths in a sweep")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}

func stdevCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdev dir out.mrc",
		Short: "Per-voxel standard deviation over all the maps in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := dens.StdDevDir(args[0], mrc.IO{})
			if err != nil {
				return err
			}
			return dens.WriteMap(mrc.IO{}, args[1], m, dens.Clobber)
		},
	}
}

package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	dens "github.com/rmera/godens"
	"github.com/rmera/godens/densplot"
	"github.com/rmera/godens/fsc"
	"github.com/rmera/godens/mrc"
)

func corrCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "corr ref.mrc candidate",
		Short: "Normalized cross-correlation of a reference against candidates",
		Long: `corr correlates the reference against the candidate, which can be a
single map file or a directory of maps. Each coefficient is printed with its
candidate label; --out additionally saves the whole batch as compressed JSON.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := mrc.Read(args[0])
			if err != nil {
				return err
			}
			in := dens.Input{Kind: dens.SingleFile, Path: args[1]}
			if fi, err := os.Stat(args[1]); err == nil && fi.IsDir() {
				in.Kind = dens.Directory
			}
			corr, err := dens.CorrMany(ref, in, mrc.IO{})
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(corr))
			for k := range corr {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s %.4f\n", k, corr[k])
			}
			if out != "" {
				return dens.SaveCorr(out, corr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "file for the coefficients (zstd JSON)")
	return cmd
}

func resolutionCmd() *cobra.Command {
	var plotname string
	cmd := &cobra.Command{
		Use:   "resolution a.mrc b.mrc",
		Short: "FSC resolution estimate between two half-maps",
		Long: `resolution computes the Fourier shell correlation curve between two maps
of equal cubic shape and prints the resolutions at the 0.5 and 0.143
thresholds. --plot additionally renders the curve as a PNG file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := mrc.Read(args[0])
			if err != nil {
				return err
			}
			b, err := mrc.Read(args[1])
			if err != nil {
				return err
			}
			c, rhalf, rgold, err := fsc.Estimate(a, b)
			if err != nil {
				return err
			}
			fmt.Printf("resolution at FSC=0.5:   %.2f\n", rhalf)
			fmt.Printf("resolution at FSC=0.143: %.2f\n", rgold)
			if plotname != "" {
				return densplot.FSCPlot(c, "Fourier shell correlation", plotname)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&plotname, "plot", "", "render the FSC curve to this PNG file")
	return cmd
}

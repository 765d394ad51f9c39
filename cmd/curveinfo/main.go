// Command curveinfo prints the static transfer curve of the look-ahead
// compressor for a given parameter set.
//
// Usage:
//
//	curveinfo [flags]
//
// Examples:
//
//	curveinfo
//	curveinfo -threshold -18 -ratio 4 -knee 6
//	curveinfo -from -80 -to 0 -step 2.5
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-dynamics/dsp/core"
	"github.com/cwbudde/algo-dynamics/dsp/dynamics"
)

func main() {
	threshold := flag.Float64("threshold", -24, "compression threshold in dB")
	ratio := flag.Float64("ratio", 12, "compression ratio")
	knee := flag.Float64("knee", 30, "soft-knee width in dB")
	postGain := flag.Float64("postgain", 0, "output trim in dB")
	from := flag.Float64("from", -60, "first input level in dB")
	to := flag.Float64("to", 0, "last input level in dB")
	step := flag.Float64("step", 5, "input level step in dB")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: curveinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the static transfer curve of the look-ahead compressor.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  curveinfo -threshold -18 -ratio 4 -knee 6\n")
		fmt.Fprintf(os.Stderr, "  curveinfo -from -80 -to 0 -step 2.5\n")
	}
	flag.Parse()

	if *step <= 0 || *from > *to {
		fmt.Fprintf(os.Stderr, "error: need step > 0 and from <= to\n")
		os.Exit(1)
	}

	c, err := dynamics.NewLookaheadCompressor(48000, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, err := range []error{
		c.SetThreshold(*threshold),
		c.SetRatio(*ratio),
		c.SetKnee(*knee),
		c.SetPostGain(*postGain),
	} {
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	makeupDB := core.LinearToDB(c.MakeupGain())

	fmt.Printf("threshold %.1f dB, ratio %.1f:1, knee %.1f dB\n", *threshold, *ratio, *knee)
	fmt.Printf("auto makeup gain: %+.2f dB\n\n", makeupDB)

	printCurve(c, *from, *to, *step, *postGain+makeupDB)
}

func printCurve(c *dynamics.LookaheadCompressor, from, to, step, totalGainDB float64) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Input [dB]\tCurve Out [dB]\tReduction [dB]\tOutput [dB]\n")
	fmt.Fprintf(tw, "----------\t--------------\t--------------\t-----------\n")

	for inDB := from; inDB <= to+1e-9; inDB += step {
		outLevel := c.CurveOutputLevel(core.DBToLinear(inDB))
		outDB := core.LinearToDB(outLevel)

		fmt.Fprintf(tw, "%+.2f\t%+.2f\t%+.2f\t%+.2f\n",
			inDB, outDB, outDB-inDB, outDB+totalGainDB)
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

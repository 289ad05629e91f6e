// Command vgminfo prints a VGM file's header fields, declared chip
// clocks, and GD3 metadata.
//
// Flag handling follows atest.go's pflag style (shorthand flags, a custom
// Usage func, positional file arguments via pflag.Args()) rather than the
// standard library's flag package, which the rest of the pack never uses
// once pflag is available.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/intuitionamiga/vgmstream"
)

func main() {
	showGD3 := pflag.BoolP("gd3", "g", false, "print GD3 metadata")
	showChips := pflag.BoolP("chips", "c", true, "print declared chip clocks")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: vgminfo [flags] file.vgm\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if len(pflag.Args()) != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(pflag.Args()[0], *showGD3, *showChips); err != nil {
		fmt.Fprintln(os.Stderr, "vgminfo:", err)
		os.Exit(1)
	}
}

func run(path string, showGD3, showChips bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := vgm.ParseDocument(data)
	if err != nil {
		return err
	}

	fmt.Printf("version:       0x%08X\n", doc.Header.Version)
	fmt.Printf("total samples: %d\n", doc.Header.TotalSamples)
	fmt.Printf("loop samples:  %d\n", doc.Header.LoopSamples)
	fmt.Printf("commands:      %d\n", len(doc.Commands))
	dataBlocks := 0
	for _, c := range doc.Commands {
		if c.Kind == vgm.KindDataBlock {
			dataBlocks++
		}
	}
	fmt.Printf("data blocks:   %d (%d bytes)\n", dataBlocks, doc.Blocks.TotalSize())

	if showChips {
		fmt.Println("chips:")
		for _, c := range doc.Header.ChipInstances() {
			fmt.Printf("  %-12s %-10s %.0f Hz\n", c.Chip, c.Instance, c.ClockHz)
		}
	}

	if showGD3 && doc.GD3 != nil {
		fmt.Println("gd3:")
		fmt.Printf("  track:  %s\n", doc.GD3.TrackNameEn)
		fmt.Printf("  game:   %s\n", doc.GD3.GameNameEn)
		fmt.Printf("  system: %s\n", doc.GD3.SystemNameEn)
		fmt.Printf("  author: %s\n", doc.GD3.AuthorEn)
	}

	return nil
}

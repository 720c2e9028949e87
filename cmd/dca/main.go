// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command dca creates, extracts and lists 'dumb cat archive' (DCA) files.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/riannucci/dcarchive/dca"
)

var (
	compress   bool
	decompress bool
	list       bool
	sortByName bool
	sortBySize bool
	output     string
)

func main() {
	cmd := &cobra.Command{
		Use:   "dca [flags] <files>...",
		Short: "Dumb cat archive compressor/decompressor",
		Long: "dca creates, extracts and lists DCA archives.\n\n" +
			"When decompressing or listing, <files> must be only the name of the\n" +
			"archive. When compressing, <files> is the list of files to add.\n" +
			"Without a mode flag, a single argument with a .dca extension selects\n" +
			"decompression and anything else selects compression.",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		RunE:          run,
	}

	fl := cmd.Flags()
	fl.BoolVarP(&compress, "compress", "c", false, "create an archive from the given files")
	fl.BoolVarP(&decompress, "decompress", "d", false, "extract the given archive")
	fl.BoolVarP(&list, "list", "l", false, "list the archive's contents")
	fl.BoolVar(&sortByName, "sort-by-name", false, "sort listing by name")
	fl.BoolVar(&sortBySize, "sort-by-size", false, "sort listing by file size")
	fl.StringVarP(&output, "output", "o", "",
		"name of the archive when compressing, output directory when decompressing")
	cmd.MarkFlagsMutuallyExclusive("compress", "decompress", "list")
	cmd.MarkFlagsMutuallyExclusive("sort-by-name", "sort-by-size")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := gologger.StdConfig.Use(context.Background())

	switch {
	case compress:
		return runCompress(ctx, args)
	case decompress:
		return runDecompress(ctx, args)
	case list:
		return runList(ctx, args)
	}

	// Mode auto detection: a lone argument with the .dca extension means
	// extraction, anything else means archive creation.
	if len(args) == 1 && filepath.Ext(args[0]) == ".dca" {
		return runDecompress(ctx, args)
	}
	return runCompress(ctx, args)
}

// archiveName picks the output archive path: an explicit name (given the
// .dca extension if it has none), the single input's name plus .dca, or the
// fallback dca.dca.
func archiveName(files []string) string {
	switch {
	case output == "" && len(files) == 1:
		return filepath.Base(files[0]) + ".dca"
	case output == "":
		return "dca.dca"
	case filepath.Ext(output) == "":
		return output + ".dca"
	}
	return output
}

func runCompress(ctx context.Context, files []string) error {
	name := archiveName(files)
	if err := dca.CreateArchive(ctx, name, files...); err != nil {
		return errors.Annotate(err, "compression into archive %q failed", name).Err()
	}
	return nil
}

func runDecompress(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.Reason("decompression takes exactly one archive name").Err()
	}
	dir := output
	if dir == "" {
		dir = "."
	}
	if err := dca.ExtractArchive(ctx, args[0], dir); err != nil {
		return errors.Annotate(err, "decompression of archive %q failed", args[0]).Err()
	}
	return nil
}

func runList(ctx context.Context, args []string) error {
	if len(args) != 1 || output != "" {
		return errors.Reason("listing takes exactly one archive name and no --output").Err()
	}

	order := dca.Unsorted
	switch {
	case sortByName:
		order = dca.ByName
	case sortBySize:
		order = dca.BySize
	}

	f, err := os.Open(args[0])
	if err != nil {
		return errors.Annotate(err, "opening archive").Err()
	}
	defer f.Close()

	infos, err := dca.Entries(f, order, dca.NewSkipHandler(ctx, args[0]))
	if err != nil {
		return errors.Annotate(err, "listing of archive %q failed", args[0]).Err()
	}
	for _, e := range infos {
		fmt.Printf("%s (%s)\n", e.Name, humanize.Bytes(e.Size))
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/eringen/toolkit"
	"github.com/eringen/toolkit/catalog"
	"github.com/eringen/toolkit/content"
	"github.com/eringen/toolkit/logging"
	"github.com/eringen/toolkit/sheet"
)

func runFetch(args []string) error {
	fset := flag.NewFlagSet("fetch", flag.ContinueOnError)
	tree := fset.Bool("tree", false, "print the folder tree")
	asJSON := fset.Bool("json", false, "print the normalized items as JSON")
	url := fset.String("url", toolkit.EnvOr("SHEET_CSV_URL", toolkit.DefaultSheetURL), "published CSV URL")
	timeout := fset.Duration("timeout", 15*time.Second, "request timeout")
	if err := fset.Parse(args); err != nil {
		return err
	}

	logger, err := logging.New(toolkit.EnvOr("LOG_LEVEL", "warn"), "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	f := sheet.NewFetcher(*url,
		sheet.WithClient(&http.Client{Timeout: *timeout}),
		sheet.WithLogger(logger),
	)
	cat := catalog.New(f, catalog.WithLogger(logger), catalog.WithRefreshInterval(0))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()
	snap, err := cat.Load(ctx, true)
	if err != nil {
		return err
	}

	switch {
	case *asJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Items)
	case *tree:
		printTree(os.Stdout, snap.Tree, 0)
		return nil
	}
	return printSummary(os.Stdout, snap)
}

func printTree(w io.Writer, f *content.Folder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s/ (%d)\n", indent, f.Name, f.Count())
	for _, child := range f.Children {
		printTree(w, child, depth+1)
	}
	for _, it := range f.Items {
		fmt.Fprintf(w, "%s  %s\n", indent, it.FileName())
	}
}

func printSummary(w io.Writer, snap *catalog.Snapshot) error {
	fmt.Fprintf(w, "%d items, %d categories (skipped rows: %d, rewritten ids: %d)\n\n",
		snap.Len(), len(snap.Categories), snap.Skipped, snap.Duplicates)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tITEMS\tTYPES\tSUBCATEGORIES")
	for _, name := range snap.Categories {
		node := snap.Hierarchy[name]
		types := make([]string, 0, len(node.ContentTypes))
		for _, t := range node.ContentTypes.Sorted() {
			types = append(types, string(t))
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, node.Count,
			strings.Join(types, ","), strings.Join(node.SubcategoryNames(), ", "))
	}
	return tw.Flush()
}

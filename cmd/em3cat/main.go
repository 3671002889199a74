// Command em3cat converts and searches EM3-series multibeam
// datagram acquisitions: a small urfave/cli/v2 front end over a pond
// worker pool for trawling many files at once.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	em3 "github.com/oceanbeam/em3gram"
	"github.com/oceanbeam/em3gram/search"
	"github.com/oceanbeam/em3gram/store"
)

// convertOne decodes one acquisition end to end: every ping is assembled,
// georeferenced and flattened into BeamRecord rows, then written to a
// sparse TileDB array alongside a JSON quality-assurance summary.
func convertOne(uri, configURI, outdirURI string, ignoreSnippets, sensorDepthOnly bool) error {
	log.Println("Processing:", uri)

	f, err := os.Open(uri)
	if err != nil {
		return errors.Join(errors.New("em3cat: opening "+uri), err)
	}
	defer f.Close()

	dir, file := filepath.Split(uri)
	if outdirURI == "" {
		outdirURI = dir
	}

	h := em3.Open(f, em3.Options{IgnoreSnippets: ignoreSnippets, SensorDepthOnly: sensorDepthOnly})

	var (
		pings   []*em3.Ping
		rows    []store.BeamRecord
		skipped uint64
	)
	now := time.Now()
	for {
		p, err := h.ReadPing()
		if err != nil {
			if errors.Is(err, em3.ErrEndOfStream) {
				break
			}
			return errors.Join(errors.New("em3cat: reading "+uri), err)
		}
		pings = append(pings, p)
		geo := h.Extract(p)
		rows = append(rows, store.ToBeamRecords(p, geo, now)...)
	}
	skipped = h.Framer().Skipped()

	log.Println("Computing quality-assurance summary")
	qs := em3.Summarize(pings, skipped)
	summaryURI := filepath.Join(outdirURI, file+"-summary.json")
	if err := writeJSON(summaryURI, qs); err != nil {
		return err
	}

	var config *tiledb.Config
	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return errors.Join(errors.New("em3cat: loading TileDB config"), err)
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return errors.Join(errors.New("em3cat: creating TileDB context"), err)
	}
	defer ctx.Free()

	arrayURI := filepath.Join(outdirURI, file+"-beams.tiledb")
	schema, err := store.NewBeamArraySchema(ctx)
	if err != nil {
		return err
	}
	defer schema.Free()

	if err := tiledb.CreateArray(ctx, arrayURI, schema); err != nil {
		return errors.Join(errors.New("em3cat: creating beam array"), err)
	}

	log.Println("Writing", len(rows), "beam rows to", arrayURI)
	if err := store.WriteBeamRecords(ctx, arrayURI, rows); err != nil {
		return err
	}

	log.Println("Finished:", uri)
	return nil
}

// convertTrawl fans a directory of acquisitions out across a bounded pond
// worker pool.
func convertTrawl(uri, configURI, outdirURI string, ignoreSnippets, sensorDepthOnly bool) error {
	log.Println("Searching:", uri)
	items := search.FindDatagramFiles(uri, configURI)
	log.Println("Files to process:", len(items))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	var mu sync.Mutex
	var firstErr error
	for _, name := range items {
		itemURI := name
		pool.Submit(func() {
			if err := convertOne(itemURI, configURI, outdirURI, ignoreSnippets, sensorDepthOnly); err != nil {
				log.Println("em3cat: failed:", itemURI, err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}

	pool.StopAndWait()
	return firstErr
}

func writeJSON(uri string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(uri, b, 0o644)
}

func main() {
	app := &cli.App{
		Name:  "em3cat",
		Usage: "convert and search Kongsberg-Simrad multibeam datagram acquisitions",
		Commands: []*cli.Command{
			{
				Name: "convert",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a datagram file."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.BoolFlag{Name: "ignore-snippets", Usage: "Assemble pings without waiting for sidescan snippets."},
					&cli.BoolFlag{Name: "sensor-depth-only", Usage: "Prefer a dedicated depth sensor's height over geometry-derived depth."},
				},
				Action: func(c *cli.Context) error {
					return convertOne(c.String("uri"), c.String("config-uri"), c.String("outdir-uri"),
						c.Bool("ignore-snippets"), c.Bool("sensor-depth-only"))
				},
			},
			{
				Name: "convert-trawl",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory of datagram files."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.BoolFlag{Name: "ignore-snippets"},
					&cli.BoolFlag{Name: "sensor-depth-only"},
				},
				Action: func(c *cli.Context) error {
					return convertTrawl(c.String("uri"), c.String("config-uri"), c.String("outdir-uri"),
						c.Bool("ignore-snippets"), c.Bool("sensor-depth-only"))
				},
			},
			{
				Name: "find",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to search."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
				},
				Action: func(c *cli.Context) error {
					for _, item := range search.FindDatagramFiles(c.String("uri"), c.String("config-uri")) {
						log.Println(item)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

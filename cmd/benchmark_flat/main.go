package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/flatsignals/flat"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

type benchmarkTestConfig struct {
	name       string // friendly name for the test, should be unique
	width      int    // keys per object
	depth      int    // levels of nested objects
	listLength int    // length of the array hung off every leaf object
	iterations int64
}

func main() {
	log.Print("Starting codec benchmark, please wait...")
	defer log.Print("Finished codec benchmark")

	perfTestCfgs := []benchmarkTestConfig{
		{name: "small form", width: 5, depth: 1, listLength: 2, iterations: 100_000},
		{name: "settings tree", width: 4, depth: 4, listLength: 0, iterations: 5_000},
		{name: "wide record", width: 500, depth: 1, listLength: 0, iterations: 2_000},
		{name: "deep nesting", width: 1, depth: 64, listLength: 4, iterations: 10_000},
		{name: "table of rows", width: 20, depth: 2, listLength: 10, iterations: 500},
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "keys", "json size", "nTimes", "flatten", "unflatten", "flatten/s", "unflatten/s",
	})

	testRepeats := 5
	for _, cfg := range perfTestCfgs {
		log.Printf("Running '%s' config", cfg.name)
		doc := makeDocument(cfg.width, cfg.depth, cfg.listLength)
		m := flat.Flatten(doc, "", ".")
		encoded, err := json.Marshal(doc)
		if err != nil {
			log.Fatal(err)
		}

		c := &flat.Codec{}
		bestFlatten, bestUnflatten := time.Hour, time.Hour
		for i := 0; i < testRepeats; i++ {
			start := time.Now()
			for j := int64(0); j < cfg.iterations; j++ {
				if _, err := c.Flatten(doc, ""); err != nil {
					log.Fatal(err)
				}
			}
			bestFlatten = min(bestFlatten, time.Since(start))

			start = time.Now()
			for j := int64(0); j < cfg.iterations; j++ {
				if _, err := c.Unflatten(m); err != nil {
					log.Fatal(err)
				}
			}
			bestUnflatten = min(bestUnflatten, time.Since(start))
		}

		table.Append([]string{
			cfg.name,
			humanize.Comma(int64(len(m))),
			humanize.Bytes(uint64(len(encoded))),
			humanize.Comma(cfg.iterations),
			fmt.Sprint(bestFlatten),
			fmt.Sprint(bestUnflatten),
			humanize.Comma(rate(cfg.iterations, bestFlatten)),
			humanize.Comma(rate(cfg.iterations, bestUnflatten)),
		})
	}
	table.Render()
}

func rate(n int64, d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(float64(n) / d.Seconds())
}

func makeDocument(width, depth, listLength int) map[string]any {
	doc := map[string]any{}
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("k%d", i)
		if depth > 1 {
			doc[key] = makeDocument(width, depth-1, listLength)
			continue
		}
		leaf := map[string]any{"id": i, "name": key, "ok": i%2 == 0}
		if listLength > 0 {
			list := make([]any, listLength)
			for j := range list {
				list[j] = j
			}
			leaf["list"] = list
		}
		doc[key] = leaf
	}
	return doc
}

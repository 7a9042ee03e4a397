package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/flatsignals/reactive"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100, 1_000}
	iters = 100
)

func main() {
	profile := flag.String("cpuprofile", "", "write a CPU profile to this file")
	flag.Parse()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagate(false)
	benchmarkPropagate(true)
	benchmarkObjectMerge(true)
}

func addOne(prev *reactive.WriteableSignal) func() any {
	return func() any {
		return prev.Value().(int) + 1
	}
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, calc *tachymeter.Metrics) {
	tbl.AppendRows([]table.Row{
		{
			name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		},
	})
}

// benchmarkPropagate builds w chains of h computed signals hanging off one
// source and times a single source write.
func benchmarkPropagate(shouldRender bool) {
	tbl := newTable("Propagation")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
				log.Panic(err)
			})
			src := reactive.Signal(rs, 1)
			for i := 0; i < w; i++ {
				last := src
				for j := 0; j < h; j++ {
					c, ok := reactive.Computed(rs, addOne(last))
					if !ok {
						log.Panic("computed rejected its getter")
					}
					last = c
				}

				tail := last
				if err := reactive.Effect(rs, func() error {
					tail.Value()
					return nil
				}); err != nil {
					log.Panic(err)
				}
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetValue(src.Value().(int) + 1)
				tach.AddTime(time.Since(start))
			}

			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach.Calc())
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkObjectMerge times partial merges into object signals of growing
// width, each observed by one effect.
func benchmarkObjectMerge(shouldRender bool) {
	tbl := newTable("Object merge")

	for _, w := range ww {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
			log.Panic(err)
		})
		doc := map[string]any{}
		for i := 0; i < w; i++ {
			doc[fmt.Sprintf("field%d", i)] = map[string]any{"n": i, "tags": []any{"a", "b"}}
		}
		s := reactive.Signal(rs, doc)
		if err := reactive.Effect(rs, func() error {
			s.Value()
			return nil
		}); err != nil {
			log.Panic(err)
		}

		for i := 0; i < iters; i++ {
			start := time.Now()
			if err := s.Set(reactive.Merge{"field0": map[string]any{"n": i}}); err != nil {
				log.Panic(err)
			}
			tach.AddTime(time.Since(start))
		}

		appendCalc(tbl, fmt.Sprintf("merge: %d fields", w), tach.Calc())
	}

	if shouldRender {
		tbl.Render()
	}
}

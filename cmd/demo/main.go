// Package main is a small command-line demo exercising the asynciter
// engine end to end: a producer feeds a transform pipeline, an optional
// clone walks the same sequence independently, and metrics/logging are
// wired exactly the way a host program would use them.
/*
 * Copyright (c) 2024, asynciter authors.
 */
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/asynciter/asynciter"
	"github.com/asynciter/asynciter/cmn/nlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var flags struct {
	count       int
	take        int
	clone       bool
	metricsAddr string
	logLevel    string
}

const helpMsg = `Build:
	go install ./cmd/demo

Examples:
	demo -count=20 -take=5           - range(0,count) through a filter+map pipeline, first "take" items
	demo -count=20 -clone            - instead of the pipeline, two independent clones read range(0,count)
	demo -metrics=:9090               - also serve Prometheus metrics at :9090/metrics
`

func main() {
	flag.IntVar(&flags.count, "count", 10, "generate the integers 0 through count, inclusive")
	flag.IntVar(&flags.take, "take", 5, "how many transformed items to print")
	flag.BoolVar(&flags.clone, "clone", false, "print two independent clone readers of the range instead of the pipeline")
	flag.StringVar(&flags.metricsAddr, "metrics", "", "if set, serve Prometheus metrics at this address")
	flag.StringVar(&flags.logLevel, "log", "info", "log severity: info, warning, or error")
	flag.Usage = func() { fmt.Fprint(os.Stderr, helpMsg); flag.PrintDefaults() }
	flag.Parse()

	nlog.SetLevel(flags.logLevel)

	if flags.metricsAddr != "" {
		if err := asynciter.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			nlog.Errorf("register metrics: %v", err)
			os.Exit(1)
		}
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			nlog.Infof("serving metrics on %s/metrics", flags.metricsAddr)
			if err := http.ListenAndServe(flags.metricsAddr, nil); err != nil {
				nlog.Errorf("metrics server: %v", err)
			}
		}()
	}

	pipeline := buildPipeline(flags.count)
	nlog.Infof("pipeline %s built over range(0, %d)", pipeline.ID(), flags.count)

	if flags.clone {
		runWithClone(flags.count)
		return
	}
	printTaken(pipeline, flags.take)
}

// buildPipeline is the demo payload: evens only, stringified with a prefix.
func buildPipeline(count int) asynciter.Iterator[string] {
	src := asynciter.IntegerRange(0, count, 1)
	evens := asynciter.Filter(src, func(n int) bool { return n%2 == 0 })
	return asynciter.Map(evens, func(n int) string { return "item-" + strconv.Itoa(n) })
}

func printTaken(it asynciter.Iterator[string], n int) {
	taken := asynciter.Take(it, n)
	done := make(chan struct{})
	taken.OnEvent("data", func(args ...any) { fmt.Println(args[0].(string)) })
	taken.OnEvent("end", func(args ...any) { close(done) })
	<-done
}

// runWithClone demonstrates History/Clone: two independent readers walk the
// same underlying sequence, each printing with its own label.
func runWithClone(count int) {
	src := asynciter.IntegerRange(0, count, 1)
	h := asynciter.NewHistory[int](src)
	a := h.Clone()
	b := h.Clone()

	doneA := make(chan struct{})
	doneB := make(chan struct{})
	a.OnEvent("data", func(args ...any) { fmt.Printf("clone-a: %d\n", args[0].(int)) })
	a.OnEvent("end", func(args ...any) { close(doneA) })
	b.OnEvent("data", func(args ...any) { fmt.Printf("clone-b: %d\n", args[0].(int)) })
	b.OnEvent("end", func(args ...any) { close(doneB) })
	<-doneA
	<-doneB
}

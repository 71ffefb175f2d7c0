package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	arg "github.com/alexflint/go-arg"
	humanize "github.com/dustin/go-humanize"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstatic"
	"github.com/kiteco/pyabsint/kite-golib/kitectx"
	"github.com/kiteco/pyabsint/kite-golib/kitelog"
	"github.com/kr/pretty"
)

func loadProgram(path string) *pythonir.Program {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	prog, err := pythonir.DecodeProgram(f)
	if err != nil {
		log.Fatalln("error decoding program:", err)
	}
	return prog
}

func loadOptions(path string) pythonstatic.Options {
	if path == "" {
		return pythonstatic.DefaultOptions
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	opts, err := pythonstatic.LoadOptions(f)
	if err != nil {
		log.Fatal(err)
	}
	return opts
}

func analyze(analyzer *pythonstatic.Analyzer, timeout time.Duration) (*pythonstatic.Result, error) {
	if timeout <= 0 {
		return analyzer.Analyze(kitectx.Background())
	}
	var res *pythonstatic.Result
	err := kitectx.Background().WithTimeout(timeout, func(ctx kitectx.Context) error {
		var err error
		res, err = analyzer.Analyze(ctx)
		return err
	})
	return res, err
}

func printVariables(res *pythonstatic.Result) {
	tw := tabwriter.NewWriter(os.Stdout, 4, 4, 2, ' ', 0)
	defer tw.Flush()

	for _, frame := range res.State.FrameKeys() {
		fmt.Fprintf(tw, "\n%s %s\n", frame.Scope, frame.Context)
		vars := res.State.Variables(frame.Scope, frame.Context)
		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
				continue
			}
			fmt.Fprintf(tw, "  %s\t:= %v\n", name, vars[name])
		}
	}
}

func printCallGraph(g *pythonstate.CallGraph) {
	fmt.Println("\nCall graph:")
	for _, e := range g.Edges() {
		fmt.Println(" ", e)
	}
}

func printHierarchy(h *pythonstate.ClassHierarchy) {
	fmt.Println("\nClasses:")
	for _, c := range h.Classes() {
		fmt.Printf("  %s  mro: %s\n", c, strings.Join(h.MRO(c), ", "))
	}
}

func main() {
	var args struct {
		Program         string        `arg:"required" help:"YAML file holding the lowered program"`
		Options         string        `help:"YAML file holding analysis options"`
		Policy          string        `help:"context policy: insensitive, callsite, object, hybrid or kcfa"`
		K               int           `help:"context depth"`
		FlowInsensitive bool          `help:"analyze function bodies by repeated in-order passes"`
		MaxIterations   int           `help:"statements interpreted per analysis of a body"`
		MaxRecursion    int           `help:"occurrences of one function on the call stack"`
		Timeout         time.Duration `help:"abort the analysis after this long (0 means no limit)"`
		Trace           bool          `help:"print the analysis trace"`
		Verbose         bool          `help:"dump the full result"`
	}
	args.K = -1
	arg.MustParse(&args)

	logger, err := kitelog.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	opts := loadOptions(args.Options)
	if args.Policy != "" {
		opts.Context = pythonstate.Policy(args.Policy)
	}
	if args.K >= 0 {
		opts.ContextDepth = args.K
	}
	if args.FlowInsensitive {
		opts.FlowSensitive = false
	}
	if args.MaxIterations > 0 {
		opts.MaxIterations = args.MaxIterations
	}
	if args.MaxRecursion > 0 {
		opts.MaxRecursionDepth = args.MaxRecursion
	}

	prog := loadProgram(args.Program)
	analyzer := pythonstatic.NewAnalyzer(pythonstatic.AnalyzerInputs{
		Options: opts,
		Logger:  logger,
	})
	if err := analyzer.AddProgram(prog); err != nil {
		log.Fatal(err)
	}

	var trace bytes.Buffer
	if args.Trace {
		analyzer.SetTrace(&trace)
	}

	var memBefore, memAfter runtime.MemStats
	runtime.ReadMemStats(&memBefore)
	start := time.Now()
	res, err := analyze(analyzer, args.Timeout)
	if kitectx.IsDeadlineExceeded(err) {
		log.Fatalf("analysis did not finish within %v", args.Timeout)
	}
	if err != nil {
		log.Fatal(err)
	}
	took := time.Since(start)
	runtime.ReadMemStats(&memAfter)

	if args.Trace {
		fmt.Println(trace.String())
	}

	printVariables(res)
	printCallGraph(res.CallGraph)
	printHierarchy(res.Hierarchy)

	if args.Verbose {
		fmt.Printf("\n%# v\n", pretty.Formatter(res.Options))
		fmt.Printf("%# v\n", pretty.Formatter(res.Stats))
	}

	res.Durations.Flush(logger)
	fmt.Printf("\nAnalyzed %s scopes: %s statements, %s call edges (%s skipped), %s allocated in %v\n",
		humanize.Comma(int64(len(prog.Scopes))),
		humanize.Comma(int64(res.Stats.Statements)),
		humanize.Comma(int64(res.CallGraph.Len())),
		humanize.Comma(int64(res.Stats.EdgesSkipped)),
		humanize.Bytes(memAfter.TotalAlloc-memBefore.TotalAlloc),
		took)
	if !res.Complete() {
		fmt.Printf("Incomplete: %d iteration cutoffs, %d recursion cutoffs\n",
			res.Stats.IterationCapHit, res.Stats.RecursionCutoffs)
	}
	if res.OracleFailures != nil {
		fmt.Printf("%d oracle failures\n", res.OracleFailures.Len())
	}
}

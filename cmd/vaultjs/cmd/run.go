package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaultjs/vaultjs/internal/parser"
	"github.com/vaultjs/vaultjs/pkg/vaultjs"
)

var (
	runEvalExpr string
	runDumpAST  bool
	runTrace    bool
	runModule   bool
	runResult   string
	presets     []string
	features    []string

	timeoutMs      int
	maxCallDepth   int
	maxLoopIters   int64
	maxEvaluations int64
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script or module",
	Long: `Execute a script from a file or inline expression.

Examples:
  # Run a script file
  vaultjs run script.js

  # Evaluate inline code
  vaultjs run -e "console.log('hello')" --preset ES2024 --preset console

  # Run as an ES module, resolving imports relative to its own directory
  vaultjs run --module app.js

  # Run with a resource budget and report counters afterward
  vaultjs run --trace --max-evaluations 100000 script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&runDumpAST, "dump-ast", false, "dump the parsed AST before running (for debugging)")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print resource counters after the run")
	runCmd.Flags().BoolVar(&runModule, "module", false, "evaluate as an ES module (enables import/export)")
	runCmd.Flags().StringVar(&runResult, "result", "value", `result mode: "value" or "full" (value plus counters)`)
	runCmd.Flags().StringArrayVar(&presets, "preset", nil, "era/add-on preset to enable (repeatable, default ES2024 and console)")
	runCmd.Flags().StringArrayVar(&features, "feature", nil, "individual feature tag to enable on top of the presets (repeatable)")

	runCmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "wall-clock budget in milliseconds (0 = unbounded; implies an async run)")
	runCmd.Flags().IntVar(&maxCallDepth, "max-call-depth", 0, "call stack depth limit (0 = unbounded)")
	runCmd.Flags().Int64Var(&maxLoopIters, "max-loop-iterations", 0, "loop iteration budget (0 = unbounded)")
	runCmd.Flags().Int64Var(&maxEvaluations, "max-evaluations", 0, "node evaluation budget (0 = unbounded)")
}

func readSource(evalExpr string, args []string) (source, path string, err error) {
	if evalExpr != "" {
		return evalExpr, "", nil
	}
	if len(args) != 1 {
		return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(content), args[0], nil
}

func runScript(_ *cobra.Command, args []string) error {
	source, path, err := readSource(runEvalExpr, args)
	if err != nil {
		return err
	}

	if runDumpAST {
		p := parser.New(source, parser.Options{Module: runModule})
		prog := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e.Error())
			}
			return fmt.Errorf("parsing failed with %d error(s)", len(errs))
		}
		fmt.Printf("%#v\n", prog)
		fmt.Println()
	}

	presetNames := presets
	if len(presetNames) == 0 {
		presetNames = []string{"ES2024", "console"}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "presets: %v\n", presetNames)
		if len(features) > 0 {
			fmt.Fprintf(os.Stderr, "features: %v\n", features)
		}
	}

	opts := []vaultjs.Option{
		vaultjs.WithPresets(presetNames...),
		vaultjs.WithConsole(os.Stdout),
	}
	if runModule && path != "" {
		opts = append(opts, vaultjs.WithModuleResolver(vaultjs.FileResolver{Root: filepath.Dir(path)}))
	}

	engine, err := vaultjs.New(opts...)
	if err != nil {
		return fmt.Errorf("constructing engine: %w", err)
	}

	runOpts := vaultjs.RunOptions{
		Full: runResult == "full" || runTrace,
		Limits: vaultjs.Limits{
			MaxCallDepth:      maxCallDepth,
			MaxLoopIterations: maxLoopIters,
			MaxEvaluations:    maxEvaluations,
		},
		TimeoutMs: timeoutMs,
	}
	if len(features) > 0 {
		runOpts.FeatureTags = features
	}

	ctx := context.Background()

	var out any
	if runModule {
		if path == "" {
			return fmt.Errorf("--module requires a file path, not -e")
		}
		ns, merr := engine.EvalModule(ctx, path, runOpts)
		if merr != nil {
			return reportRunError(merr)
		}
		out = ns
	} else if timeoutMs > 0 {
		v, everr := engine.EvalAsync(ctx, source, runOpts)
		if everr != nil {
			return reportRunError(everr)
		}
		out = v
	} else {
		v, everr := engine.Eval(ctx, source, runOpts)
		if everr != nil {
			return reportRunError(everr)
		}
		out = v
	}

	printResult(out)
	return nil
}

func reportRunError(err error) error {
	fmt.Fprintf(os.Stderr, "Runtime error: %s\n", err.Error())
	return fmt.Errorf("execution failed")
}

func printResult(out any) {
	res, ok := out.(*vaultjs.RunResult)
	if !ok {
		fmt.Printf("%v\n", out)
		return
	}
	fmt.Printf("%v\n", res.Value)
	if runTrace {
		fmt.Fprintf(os.Stderr, "[calls=%d loops=%d evals=%d]\n",
			res.Counters.CallDepth, res.Counters.LoopIterations, res.Counters.Evaluations)
	}
}

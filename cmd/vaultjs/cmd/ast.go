package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaultjs/vaultjs/internal/parser"
)

var astEvalExpr string

var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Parse a script and dump its syntax tree",
	Long: `Parse a script or module without evaluating it and print the
resulting syntax tree, mirroring the teacher's --dump-ast debug output.

Examples:
  vaultjs ast script.js
  vaultjs ast -e "const x = 1 + 2;"`,
	Args: cobra.MaximumNArgs(1),
	RunE: dumpAST,
}

func init() {
	rootCmd.AddCommand(astCmd)
	astCmd.Flags().StringVarP(&astEvalExpr, "eval", "e", "", "parse inline code instead of reading from file")
}

func dumpAST(_ *cobra.Command, args []string) error {
	source, _, err := readSource(astEvalExpr, args)
	if err != nil {
		return err
	}

	p := parser.New(source, parser.Options{})
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	fmt.Printf("%#v\n", prog)
	return nil
}

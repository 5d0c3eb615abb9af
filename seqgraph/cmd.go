package seqgraph

import (
	"fmt"
	"time"

	"github.com/jwaldrip/odin/cli"

	"github.com/sdwfrost/GraphAligner/utils"
)

// Construct is the odin entry point of the index subcommand: parse a GFA
// file, finalize the graph and store it under the output prefix.
func Construct(c cli.Command) {
	t0 := time.Now()
	opt, _ := utils.CheckGlobalArgs(c)
	gfn := c.Flag("g").String()
	g := ReadGFA(gfn)
	g.Finalize()
	fmt.Printf("[Construct] finalized graph: %d nodes, %d bp, %d feedback nodes\n", len(g.NodeStart), g.SizeInBP(), g.FirstInOrder)
	g.Save(opt.Prefix)
	if dotfn := c.Flag("dot").String(); dotfn != "" {
		g.Graphviz(dotfn)
	}
	fmt.Printf("[Construct] finished in %v\n", time.Since(t0))
}

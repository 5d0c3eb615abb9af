package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/jwaldrip/odin/cli"

	"github.com/sdwfrost/GraphAligner/mapgraph"
	"github.com/sdwfrost/GraphAligner/seqgraph"
)

var app = cli.New("1.0.0", "bit-parallel aligner for reads against sequence graphs", func(c cli.Command) {})

func init() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6092", nil))
	}()
	app.DefineStringFlag("p", "graph", "prefix of the graph files")
	app.DefineStringFlag("cpuprofile", "", "write cpu profile to file")
	app.DefineIntFlag("t", 1, "number of CPU used")
	index := app.DefineSubCommand("index", "parse a GFA graph and precompute the cycle cuts", seqgraph.Construct)
	{
		index.DefineStringFlag("g", "", "input GFA file")
		index.DefineStringFlag("dot", "", "also write the graph as graphviz dot")
	}
	mp := app.DefineSubCommand("map", "map reads to the indexed graph", mapgraph.Map)
	{
		mp.DefineStringFlag("f", "", "reads file, fasta or fastq")
		mp.DefineStringFlag("o", "", "output alignment file")
		mp.DefineIntFlag("W", 64, "dynamic band radius in characters")
		mp.DefineIntFlag("R", 64, "rows aligned with the full band before dynamic banding, multiple of 64")
		mp.DefineIntFlag("B", 64, "seed extension radius in characters")
		mp.DefineIntFlag("k", 19, "seed kmer length, 0 disables seeding")
		mp.DefineIntFlag("maxSeeds", 10, "max number of seed hits tried per read")
	}
}

func main() {
	app.Start()
}

package mapgraph

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/jwaldrip/odin/cli"

	"github.com/sdwfrost/GraphAligner/align"
	"github.com/sdwfrost/GraphAligner/seedindex"
	"github.com/sdwfrost/GraphAligner/seqgraph"
	"github.com/sdwfrost/GraphAligner/utils"
)

const ReadBufSize = 100

type Options struct {
	utils.ArgsOpt
	ReadsFn         string
	OutFn           string
	DynamicWidth    int
	DynamicRowStart int
	StartBandwidth  int
	SeedLen         int
	MaxSeeds        int
}

type Read struct {
	ID  string
	Seq []byte
}

func checkArgs(c cli.Command) (opt Options) {
	gopt, _ := utils.CheckGlobalArgs(c)
	opt.ArgsOpt = gopt
	opt.ReadsFn = c.Flag("f").String()
	if opt.ReadsFn == "" {
		log.Fatalf("[checkArgs] args 'f' not set\n")
	}
	opt.OutFn = c.Flag("o").String()
	if opt.OutFn == "" {
		log.Fatalf("[checkArgs] args 'o' not set\n")
	}
	var ok bool
	opt.DynamicWidth, ok = c.Flag("W").Get().(int)
	if !ok || opt.DynamicWidth < 1 {
		log.Fatalf("[checkArgs] args 'W': %v set error\n", c.Flag("W").String())
	}
	opt.DynamicRowStart, ok = c.Flag("R").Get().(int)
	if !ok || opt.DynamicRowStart < 64 || opt.DynamicRowStart%64 != 0 {
		log.Fatalf("[checkArgs] args 'R': %v must be a positive multiple of 64\n", c.Flag("R").String())
	}
	opt.StartBandwidth, ok = c.Flag("B").Get().(int)
	if !ok || opt.StartBandwidth < 1 {
		log.Fatalf("[checkArgs] args 'B': %v set error\n", c.Flag("B").String())
	}
	opt.SeedLen, ok = c.Flag("k").Get().(int)
	if !ok || opt.SeedLen < 0 {
		log.Fatalf("[checkArgs] args 'k': %v set error\n", c.Flag("k").String())
	}
	opt.MaxSeeds, ok = c.Flag("maxSeeds").Get().(int)
	if !ok {
		log.Fatalf("[checkArgs] args 'maxSeeds': %v set error\n", c.Flag("maxSeeds").String())
	}
	return opt
}

// GetReads streams the reads of a fasta or fastq file into rc.
func GetReads(fn string, rc chan<- Read) {
	infile, err := os.Open(fn)
	if err != nil {
		log.Fatalf("[GetReads] open file %s failed, err: %v\n", fn, err)
	}
	defer infile.Close()
	defer close(rc)
	if strings.HasSuffix(fn, ".fq") || strings.HasSuffix(fn, ".fastq") {
		fqfp := fastq.NewReader(infile, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
		for {
			s, err := fqfp.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				log.Fatalf("[GetReads] read file: %s error: %v\n", fn, err)
			}
			l := s.(*linear.QSeq)
			var read Read
			read.ID = l.ID
			read.Seq = make([]byte, len(l.Seq))
			for j, v := range l.Seq {
				read.Seq[j] = byte(v.L)
			}
			rc <- read
		}
	} else {
		fafp := fasta.NewReader(infile, linear.NewSeq("", nil, alphabet.DNA))
		for {
			s, err := fafp.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				log.Fatalf("[GetReads] read file: %s error: %v\n", fn, err)
			}
			l := s.(*linear.Seq)
			var read Read
			read.ID = l.ID
			read.Seq = make([]byte, len(l.Seq))
			for j, v := range l.Seq {
				read.Seq[j] = byte(v)
			}
			rc <- read
		}
	}
}

func paraAlignReads(aligner *align.Aligner, idx *seedindex.Index, opt Options, rc <-chan Read, wc chan<- align.Alignment, wg *sync.WaitGroup) {
	defer wg.Done()
	for read := range rc {
		var result align.Alignment
		var seeds []align.Seed
		if idx != nil {
			seeds = idx.FindSeeds(read.Seq, opt.MaxSeeds)
		}
		if len(seeds) > 0 {
			result = aligner.AlignOneWaySeeded(read.ID, read.Seq, opt.DynamicWidth, opt.DynamicRowStart, seeds, opt.StartBandwidth)
		} else {
			result = aligner.AlignOneWay(read.ID, read.Seq, opt.DynamicWidth, opt.DynamicRowStart)
		}
		wc <- result
	}
}

// WriteAlignments writes one tab separated record per alignment: read id,
// score, cigar, cells, elapsed time and the node path. A failed alignment
// has * in the score, cigar and path columns.
func WriteAlignments(fn string, wc <-chan align.Alignment, fc chan<- int) {
	outfp, err := os.Create(fn)
	if err != nil {
		log.Fatalf("[WriteAlignments] file %s create error, err: %v\n", fn, err)
	}
	defer outfp.Close()
	buffp := bufio.NewWriterSize(outfp, 1<<16)
	defer buffp.Flush()
	num := 0
	failed := 0
	for result := range wc {
		num++
		if result.Failed {
			failed++
			fmt.Fprintf(buffp, "%s\t*\t*\t%d\t%d\t*\n", result.ReadID, result.CellsProcessed, result.ElapsedMs)
			continue
		}
		var path strings.Builder
		for i, mapping := range result.Path {
			if i > 0 {
				path.WriteByte('>')
			}
			if mapping.IsReverse {
				fmt.Fprintf(&path, "%d-:%d", mapping.NodeID, mapping.Offset)
			} else {
				fmt.Fprintf(&path, "%d+:%d", mapping.NodeID, mapping.Offset)
			}
		}
		fmt.Fprintf(buffp, "%s\t%d\t%s\t%d\t%d\t%s\n", result.ReadID, result.Score, result.Cigar().String(), result.CellsProcessed, result.ElapsedMs, path.String())
	}
	fmt.Printf("[WriteAlignments] wrote %d alignments, %d failed\n", num, failed)
	fc <- num
}

// Map is the odin entry point of the map subcommand: load the graph, build
// the seed index and align every read in the input file.
func Map(c cli.Command) {
	t0 := time.Now()
	opt := checkArgs(c)
	g := seqgraph.Load(opt.Prefix)
	fmt.Printf("[Map] loaded graph: %d nodes, %d bp\n", len(g.NodeStart), g.SizeInBP())
	aligner := align.New(g)
	var idx *seedindex.Index
	if opt.SeedLen > 0 {
		idx = seedindex.New(g, opt.SeedLen)
	}
	rc := make(chan Read, ReadBufSize)
	wc := make(chan align.Alignment, ReadBufSize)
	fc := make(chan int, 1)
	go GetReads(opt.ReadsFn, rc)
	go WriteAlignments(opt.OutFn, wc, fc)
	var wg sync.WaitGroup
	for i := 0; i < opt.NumCPU; i++ {
		wg.Add(1)
		go paraAlignReads(aligner, idx, opt, rc, wc, &wg)
	}
	wg.Wait()
	close(wc)
	num := <-fc
	fmt.Printf("[Map] aligned %d reads in %v\n", num, time.Since(t0))
}

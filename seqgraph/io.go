package seqgraph

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/klauspost/compress/zstd"
)

// Save writes the finalized graph to prefix.sg.zst as zstd compressed gob.
func (g *Graph) Save(prefix string) {
	if !g.Finalized {
		log.Fatalf("[Save] graph not finalized\n")
	}
	fn := prefix + ".sg.zst"
	fp, err := os.Create(fn)
	if err != nil {
		log.Fatalf("[Save] file %s create error, err: %v\n", fn, err)
	}
	defer fp.Close()
	zfp, err := zstd.NewWriter(fp, zstd.WithEncoderCRC(false), zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(1))
	if err != nil {
		log.Fatalf("[Save] zstd writer error: %v\n", err)
	}
	defer zfp.Close()
	enc := gob.NewEncoder(zfp)
	if err := enc.Encode(g); err != nil {
		log.Fatalf("[Save] encode err: %v\n", err)
	}
}

// Load reads a graph written by Save.
func Load(prefix string) *Graph {
	fn := prefix + ".sg.zst"
	fp, err := os.Open(fn)
	if err != nil {
		log.Fatalf("[Load] open file %s failed, err: %v\n", fn, err)
	}
	defer fp.Close()
	zfp, err := zstd.NewReader(fp)
	if err != nil {
		log.Fatalf("[Load] zstd reader error: %v\n", err)
	}
	defer zfp.Close()
	dec := gob.NewDecoder(zfp)
	var g Graph
	if err := dec.Decode(&g); err != nil {
		log.Fatalf("[Load] decode failed, err: %v\n", err)
	}
	if !g.Finalized {
		log.Fatalf("[Load] file %s holds an unfinalized graph\n", fn)
	}
	return &g
}

// Graphviz writes the forward strand of the graph as a dot file.
func (g *Graph) Graphviz(graphfn string) {
	gv := gographviz.NewGraph()
	gv.SetName("G")
	gv.SetDir(true)
	gv.SetStrict(false)
	for i := range g.NodeStart {
		if i == g.DummyNodeStart || i == g.DummyNodeEnd || g.Reverse[i] {
			continue
		}
		attr := make(map[string]string)
		attr["shape"] = "record"
		attr["label"] = "\"ID:" + strconv.Itoa(g.NodeIDs[i]) + " len:" + strconv.Itoa(g.NodeEnd[i]-g.NodeStart[i]) + "\""
		gv.AddNode("G", strconv.Itoa(g.NodeIDs[i]), attr)
	}
	for i := range g.NodeStart {
		if i == g.DummyNodeStart || i == g.DummyNodeEnd || g.Reverse[i] {
			continue
		}
		for _, t := range g.OutNeighbors[i] {
			if t == g.DummyNodeStart || t == g.DummyNodeEnd || g.Reverse[t] {
				continue
			}
			gv.AddEdge(strconv.Itoa(g.NodeIDs[i]), strconv.Itoa(g.NodeIDs[t]), true, nil)
		}
	}
	gfp, err := os.Create(graphfn)
	if err != nil {
		log.Fatalf("[Graphviz] file %s create error: %v\n", graphfn, err)
	}
	defer gfp.Close()
	fmt.Fprint(gfp, gv.String())
}

// ReadGFA builds an unfinalized graph from the S and L lines of a GFA file.
// Segment names must be integers and links must be overlap free.
func ReadGFA(fn string) *Graph {
	fp, err := os.Open(fn)
	if err != nil {
		log.Fatalf("[ReadGFA] open file %s failed, err: %v\n", fn, err)
	}
	defer fp.Close()
	g := New()
	type link struct {
		from, to       int
		fromRev, toRev bool
	}
	var links []link
	scanner := bufio.NewScanner(fp)
	scanner.Buffer(make([]byte, 1<<20), 1<<26)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "S":
			if len(fields) < 3 {
				log.Fatalf("[ReadGFA] %s:%d truncated S line\n", fn, lineNum)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				log.Fatalf("[ReadGFA] %s:%d segment name %s is not an integer\n", fn, lineNum, fields[1])
			}
			g.AddNode(id, []byte(fields[2]))
		case "L":
			if len(fields) < 5 {
				log.Fatalf("[ReadGFA] %s:%d truncated L line\n", fn, lineNum)
			}
			from, err := strconv.Atoi(fields[1])
			if err != nil {
				log.Fatalf("[ReadGFA] %s:%d segment name %s is not an integer\n", fn, lineNum, fields[1])
			}
			to, err := strconv.Atoi(fields[3])
			if err != nil {
				log.Fatalf("[ReadGFA] %s:%d segment name %s is not an integer\n", fn, lineNum, fields[3])
			}
			if len(fields) >= 6 && fields[5] != "0M" && fields[5] != "*" {
				log.Fatalf("[ReadGFA] %s:%d overlapped link %s not supported\n", fn, lineNum, fields[5])
			}
			links = append(links, link{from, to, fields[2] == "-", fields[4] == "-"})
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("[ReadGFA] read file %s error: %v\n", fn, err)
	}
	for _, l := range links {
		g.AddEdgeOriented(l.from, l.fromRev, l.to, l.toRev)
	}
	return g
}

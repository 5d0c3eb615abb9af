package mapgraph

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdwfrost/GraphAligner/align"
)

func TestGetReadsFasta(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "reads.fa")
	content := ">read1 some description\nACGTACGT\n>read2\nTTTTGGGG\nCCCC\n"
	if err := os.WriteFile(fn, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	rc := make(chan Read, 10)
	go GetReads(fn, rc)
	var reads []Read
	for read := range rc {
		reads = append(reads, read)
	}
	if len(reads) != 2 {
		t.Fatalf("got %d reads", len(reads))
	}
	if reads[0].ID != "read1" || string(reads[0].Seq) != "ACGTACGT" {
		t.Errorf("read1 parsed as %s %s", reads[0].ID, reads[0].Seq)
	}
	if reads[1].ID != "read2" || string(reads[1].Seq) != "TTTTGGGGCCCC" {
		t.Errorf("read2 parsed as %s %s", reads[1].ID, reads[1].Seq)
	}
}

func TestGetReadsFastq(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "reads.fq")
	content := "@read1\nACGTACGT\n+\nIIIIIIII\n"
	if err := os.WriteFile(fn, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	rc := make(chan Read, 10)
	go GetReads(fn, rc)
	var reads []Read
	for read := range rc {
		reads = append(reads, read)
	}
	if len(reads) != 1 {
		t.Fatalf("got %d reads", len(reads))
	}
	if reads[0].ID != "read1" || string(reads[0].Seq) != "ACGTACGT" {
		t.Errorf("read parsed as %s %s", reads[0].ID, reads[0].Seq)
	}
}

func TestWriteAlignments(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out.tsv")
	wc := make(chan align.Alignment, 2)
	fc := make(chan int, 1)
	wc <- align.Alignment{
		ReadID: "ok",
		Score:  3,
		Path: []align.Mapping{
			{NodeID: 7, Offset: 2, Edits: []align.Edit{{FromLen: 10, ToLen: 10}}},
			{NodeID: 8, IsReverse: true, Edits: []align.Edit{{FromLen: 5, ToLen: 5}}},
		},
	}
	wc <- align.Alignment{ReadID: "bad", Score: math.MaxInt, Failed: true}
	close(wc)
	WriteAlignments(fn, wc, fc)
	if num := <-fc; num != 2 {
		t.Errorf("wrote %d records", num)
	}
	content, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ok\t3\t") || !strings.Contains(lines[0], "7+:2>8-:0") {
		t.Errorf("alignment line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "bad\t*\t*") {
		t.Errorf("failed line %q", lines[1])
	}
}

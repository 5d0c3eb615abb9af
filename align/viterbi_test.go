package align

import "testing"

func TestViterbiAllCorrect(t *testing.T) {
	labels := estimateCorrectAlignmentViterbi([]int{0, 0, 1, 3, 4})
	if len(labels) != 4 {
		t.Fatalf("got %d labels", len(labels))
	}
	for i, l := range labels {
		if !l {
			t.Errorf("slice %d labelled false", i)
		}
	}
}

func TestViterbiAllFalse(t *testing.T) {
	labels := estimateCorrectAlignmentViterbi([]int{0, 30, 60, 90})
	for i, l := range labels {
		if l {
			t.Errorf("slice %d labelled correct", i)
		}
	}
}

func TestViterbiMixed(t *testing.T) {
	// low increments, a burst of errors, then low again
	labels := estimateCorrectAlignmentViterbi([]int{0, 1, 2, 35, 68, 69, 70, 71})
	want := []bool{true, true, false, false, true, true, true}
	if len(labels) != len(want) {
		t.Fatalf("got %d labels want %d", len(labels), len(want))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("slice %d: got %v want %v", i, labels[i], want[i])
		}
	}
}

func TestGetLargestContiguousBlock(t *testing.T) {
	tests := []struct {
		vec        []bool
		start, end int
	}{
		{[]bool{true, true, true}, 0, 2},
		{[]bool{false, true, true, false}, 1, 2},
		{[]bool{true, false, true, true, true, false}, 2, 4},
		{[]bool{false, false}, 0, 0},
		{[]bool{true}, 0, 0},
	}
	for i, tc := range tests {
		start, end := getLargestContiguousBlock(tc.vec)
		if start != tc.start || end != tc.end {
			t.Errorf("case %d: got (%d,%d) want (%d,%d)", i, start, end, tc.start, tc.end)
		}
	}
}

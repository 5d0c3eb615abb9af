package align

import "github.com/biogo/hts/sam"

// Edit is one block of an alignment path: fromLen graph characters aligned
// against toLen read characters.
type Edit struct {
	FromLen  int
	ToLen    int
	Sequence string
}

// Mapping places a stretch of the read on one graph node.
type Mapping struct {
	NodeID    int
	IsReverse bool
	Offset    int
	Rank      int
	Edits     []Edit
}

// Alignment is the outcome of one read. A failed alignment has Score set to
// the int maximum and an empty path.
type Alignment struct {
	ReadID         string
	Score          int
	Failed         bool
	CellsProcessed int
	ElapsedMs      int64
	Path           []Mapping
}

// Seed anchors a read offset on an external graph node for the split
// aligner. ReadOffset must be strictly inside the read.
type Seed struct {
	NodeID     int
	ReadOffset int
}

// Cigar renders the path edits as a SAM cigar. Blocks with equal lengths
// become matches, a surplus of read characters an insertion and a surplus
// of graph characters a deletion.
func (a *Alignment) Cigar() sam.Cigar {
	cigar := sam.Cigar{}
	for _, mapping := range a.Path {
		for _, edit := range mapping.Edits {
			switch {
			case edit.FromLen == edit.ToLen:
				if edit.FromLen > 0 {
					cigar = append(cigar, sam.NewCigarOp(sam.CigarMatch, edit.FromLen))
				}
			case edit.FromLen < edit.ToLen:
				if edit.FromLen > 0 {
					cigar = append(cigar, sam.NewCigarOp(sam.CigarMatch, edit.FromLen))
				}
				cigar = append(cigar, sam.NewCigarOp(sam.CigarInsertion, edit.ToLen-edit.FromLen))
			default:
				if edit.ToLen > 0 {
					cigar = append(cigar, sam.NewCigarOp(sam.CigarMatch, edit.ToLen))
				}
				cigar = append(cigar, sam.NewCigarOp(sam.CigarDeletion, edit.FromLen-edit.ToLen))
			}
		}
	}
	return cigar
}

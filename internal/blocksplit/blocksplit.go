// Package blocksplit partitions a panel's content blocks into groups along
// existing block boundaries. It never edits, reorders or drops a block, and a
// bullet list always stays with the paragraph that introduces it.
package blocksplit

import (
	"github.com/alnah/go-panelsplit/internal/module"
)

// Split partitions blocks into groups of block indexes.
//
// When every block is a paragraph, each becomes its own group. Otherwise
// paragraphs accumulate up to maxParagraphs per group; a bullet block joins
// the paragraph immediately before it, peeling earlier paragraphs off into a
// finished group first. A paragraph that follows bullets starts a new group.
// Unknown blocks stay in the current group. Split is total.
func Split(blocks []module.Block, maxParagraphs int) [][]int {
	if len(blocks) == 0 {
		return nil
	}
	if maxParagraphs < 1 {
		maxParagraphs = 1
	}

	if allParagraphs(blocks) {
		groups := make([][]int, len(blocks))
		for i := range blocks {
			groups[i] = []int{i}
		}
		return groups
	}

	var (
		groups     [][]int
		cur        []int
		paragraphs int
		hasBullets bool
	)
	flush := func() {
		if len(cur) > 0 {
			groups = append(groups, cur)
		}
		cur, paragraphs, hasBullets = nil, 0, false
	}

	for i, b := range blocks {
		switch b.Kind {
		case module.KindParagraph:
			if hasBullets || paragraphs >= maxParagraphs {
				flush()
			}
			cur = append(cur, i)
			paragraphs++
		case module.KindBullets:
			if paragraphs > 1 {
				owner := lastParagraph(blocks, cur)
				groups = append(groups, cur[:owner])
				cur = append([]int(nil), cur[owner:]...)
				paragraphs = 1
			}
			cur = append(cur, i)
			hasBullets = true
		default:
			cur = append(cur, i)
		}
	}
	flush()
	return groups
}

// Groups resolves index groups to the blocks they name.
func Groups(blocks []module.Block, groups [][]int) [][]module.Block {
	out := make([][]module.Block, len(groups))
	for i, g := range groups {
		out[i] = make([]module.Block, len(g))
		for j, idx := range g {
			out[i][j] = blocks[idx]
		}
	}
	return out
}

// Panel is one proposed slide of a block split.
type Panel struct {
	Header string         `json:"header"`
	Blocks []module.Block `json:"content"`
}

// BuildProposal assigns headers to groups: the first keeps header, the rest
// get the continuation header.
func BuildProposal(header string, groups [][]module.Block) []Panel {
	out := make([]Panel, len(groups))
	for i, g := range groups {
		out[i] = Panel{Header: module.ContinuationHeader(header, i), Blocks: g}
	}
	return out
}

func allParagraphs(blocks []module.Block) bool {
	for _, b := range blocks {
		if !b.IsParagraph() {
			return false
		}
	}
	return true
}

// lastParagraph returns the position in cur of the last paragraph block.
func lastParagraph(blocks []module.Block, cur []int) int {
	for j := len(cur) - 1; j >= 0; j-- {
		if blocks[cur[j]].IsParagraph() {
			return j
		}
	}
	return 0
}

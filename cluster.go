package minimaptext

// Cluster is a group of pairs assumed to share one foreground color.
type Cluster []PixelPair

// BuildClusters partitions pairs greedily in the given order. A pair pulls in
// every existing cluster holding at least one compatible member; the merged
// cluster starts with the pair and goes to the end of the list. Finding the
// best partition into compatible groups is a clique cover problem, so this
// accepts whatever grouping the order produces.
func BuildClusters(pairs []PixelPair, o *Oracle) []Cluster {
	var clusters []Cluster
	for _, pair := range pairs {
		kept := make([]Cluster, 0, len(clusters)+1)
		merged := Cluster{pair}
		for _, cl := range clusters {
			if touches(cl, pair, o) {
				merged = append(merged, cl...)
			} else {
				kept = append(kept, cl)
			}
		}
		clusters = append(kept, merged)
	}
	return clusters
}

func touches(cl Cluster, pair PixelPair, o *Oracle) bool {
	for _, member := range cl {
		if o.Compatible(member, pair) {
			return true
		}
	}
	return false
}

// IsolateComments moves line-comment text into a cluster of its own.
//
// The marker is taken from the first line that starts with a non-blank cell
// followed by a blank one, reaches past column 2, and lies entirely in one
// cluster. From the first marker on each line to the end of that line every
// non-blank pair is pulled out of its cluster. The boolean is false when no
// line qualifies and clusters are returned unchanged.
func IsolateComments(b *Buffer, bg Color, clusters []Cluster) ([]Cluster, bool) {
	blank := Blank(bg)
	index := make(map[PixelPair]int)
	for i, cl := range clusters {
		for _, p := range cl {
			index[p] = i
		}
	}

	marker, found := commentMarker(b, blank, index)
	if !found {
		return clusters, false
	}

	moved := make(map[PixelPair]struct{})
	var comment Cluster
	for line := range b.Lines() {
		start := -1
		for x := range b.W {
			if b.Pair(x, line) == marker {
				start = x
				break
			}
		}
		if start < 0 {
			continue
		}
		for x := start; x < b.W; x++ {
			p := b.Pair(x, line)
			if p == blank {
				continue
			}
			if _, ok := moved[p]; ok {
				continue
			}
			moved[p] = struct{}{}
			comment = append(comment, p)
		}
	}

	out := make([]Cluster, 0, len(clusters)+1)
	for _, cl := range clusters {
		rest := make(Cluster, 0, len(cl))
		for _, p := range cl {
			if _, ok := moved[p]; !ok {
				rest = append(rest, p)
			}
		}
		if len(rest) > 0 {
			out = append(out, rest)
		}
	}
	return append(out, comment), true
}

func commentMarker(b *Buffer, blank PixelPair, index map[PixelPair]int) (PixelPair, bool) {
lines:
	for line := range b.Lines() {
		if b.W < 2 || b.Pair(0, line) == blank || b.Pair(1, line) != blank {
			continue
		}
		cluster, last := -1, 0
		for x := range b.W {
			p := b.Pair(x, line)
			if p == blank {
				continue
			}
			last = x
			i, ok := index[p]
			if !ok {
				continue lines
			}
			if cluster < 0 {
				cluster = i
			} else if i != cluster {
				continue lines
			}
		}
		if last > 2 {
			return b.Pair(0, line), true
		}
	}
	return PixelPair{}, false
}

package document

// Entry is one record in preorder position. Parent is the position of the
// parent entry within the same sequence, or NoParent.
type Entry struct {
	Index  int
	Record *Record
	Parent int
}

// Flatten walks the forest in preorder. Every entry's parent appears at a
// smaller position than the entry itself.
func Flatten(doc *Document) []Entry {
	seq := make([]Entry, 0, doc.Len())

	var visit func(idx, parent int)
	visit = func(idx, parent int) {
		pos := len(seq)
		seq = append(seq, Entry{
			Index:  idx,
			Record: &doc.Records[idx],
			Parent: parent,
		})

		for _, child := range doc.Records[idx].Children {
			visit(child, pos)
		}
	}

	for _, root := range doc.Roots {
		visit(root, NoParent)
	}

	return seq
}

/*
Package lmfile decodes the word-prediction trie stored in a dynamic.lm
language model container.

The container header carries a short section tag ("\x06dmap"). The trie data
starts a fixed distance after the start of that tag and is a flat, pre-order
stream of little-endian u16 records:

	index(2) frequency(2) reserved(2)   a node, followed by its children
	index(2) == 0                       sentinel, ends a sibling list

There are no offsets or lengths: the only way to know where a subtree ends is
to consume its sentinels recursively.

Locate the trie, then walk it:

	off, err := lmfile.Locate(data, lmfile.DefaultMarker, lmfile.DefaultTrieOffset)
	dec := lmfile.NewDecoder(data, off, vocabIndex)
	_, err = dec.Walk(func(path string) error {
		fmt.Println(path)
		return nil
	})

Every leaf of the tree produces one line, e.g. "root -> hello(12) -> world(3)".
*/
package lmfile

package onlinedawg

import "unsafe"

const defaultIndexSize = 1 << 10

// hashTable holds the interned nodes of a graph and finds them by their
// structural hash. Buckets are chained through nodeRecord.hashNext, so the
// table itself is only one slice of bucket heads.
type hashTable struct {
	nodes     *nodeList
	buckets   []nodeIndex
	mask      uint32
	threshold int
	count     int
}

func newHashTable(nodes *nodeList, size int) hashTable {
	buckets := 1
	for buckets < size {
		buckets <<= 1
	}
	return hashTable{
		nodes:     nodes,
		buckets:   make([]nodeIndex, buckets),
		mask:      uint32(buckets - 1),
		threshold: buckets * 3,
	}
}

// add links n into the bucket for its current hash. No check is made for
// duplicates; adding a node twice corrupts the table.
func (t *hashTable) add(n nodeIndex) {
	rec := t.nodes.at(n)
	bucket := rec.hash & t.mask
	rec.hashNext = t.buckets[bucket]
	t.buckets[bucket] = n
	t.count++
	if t.count > t.threshold {
		t.grow()
	}
}

// remove unlinks n from the bucket for its current hash. It returns false
// when n was not in the table.
func (t *hashTable) remove(n nodeIndex) bool {
	rec := t.nodes.at(n)
	bucket := rec.hash & t.mask

	if t.buckets[bucket] == n {
		t.buckets[bucket] = rec.hashNext
		rec.hashNext = nullNode
		t.count--
		return true
	}

	for cur := t.buckets[bucket]; cur != nullNode; {
		curRec := t.nodes.at(cur)
		if curRec.hashNext == n {
			curRec.hashNext = rec.hashNext
			rec.hashNext = nullNode
			t.count--
			return true
		}
		cur = curRec.hashNext
	}

	return false
}

// grow doubles the number of buckets and redistributes every node.
func (t *hashTable) grow() {
	old := t.buckets
	t.buckets = make([]nodeIndex, len(old)*2)
	t.mask = uint32(len(t.buckets) - 1)
	t.threshold *= 2

	for _, head := range old {
		for n := head; n != nullNode; {
			rec := t.nodes.at(n)
			next := rec.hashNext
			bucket := rec.hash & t.mask
			rec.hashNext = t.buckets[bucket]
			t.buckets[bucket] = n
			n = next
		}
	}
}

// first returns the head of the bucket that hash falls into. The bucket may
// hold nodes with other hashes; callers compare hashes themselves.
func (t *hashTable) first(hash uint32) nodeIndex {
	return t.buckets[hash&t.mask]
}

func (t *hashTable) next(n nodeIndex) nodeIndex {
	return t.nodes.at(n).hashNext
}

// contains reports whether n is linked into the bucket for its hash.
func (t *hashTable) contains(n nodeIndex) bool {
	for cur := t.first(t.nodes.at(n).hash); cur != nullNode; cur = t.next(cur) {
		if cur == n {
			return true
		}
	}
	return false
}

// each calls fn for every node in the table, bucket by bucket.
func (t *hashTable) each(fn func(n nodeIndex)) {
	for _, head := range t.buckets {
		for n := head; n != nullNode; n = t.next(n) {
			fn(n)
		}
	}
}

func (t *hashTable) memoryUsage() int64 {
	return int64(unsafe.Sizeof(*t)) + int64(len(t.buckets))*int64(unsafe.Sizeof(nullNode))
}

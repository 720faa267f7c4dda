package onlinedawg

const (
	fnvOffset uint32 = 2166136261
	fnvPrime  uint32 = 16777619
)

// suffixHash implements the FNV-1a hash over the characters of word starting
// at from. The hash of a node is the XOR of suffixHash over every string
// accepted from that node, so adding a string to a node only needs one XOR.
func suffixHash(word []rune, from int) uint32 {
	hash := fnvOffset

	// Use the FNV algorithm from http://isthe.com/chongo/tech/comp/fnv/
	for _, c := range word[from:] {
		hash = (hash ^ uint32(c)) * fnvPrime
	}

	return hash
}

// StringHash returns the FNV-1a hash that a node accepting only str would
// carry.
func StringHash(str string) uint32 {
	return suffixHash([]rune(str), 0)
}

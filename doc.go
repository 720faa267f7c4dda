/*
Package onlinedawg is an implementation of a Directed Acyclic Word Graph that
is minimized while it is being built.

A DAWG stores a set of strings as an automaton in which shared prefixes and
shared suffixes are stored only once. Most builders add every word to a trie
and minimize it at the end, or keep a list of unchecked nodes that is
minimized as words arrive in order. This one keeps the graph minimal after
every single Add: each node carries a hash of all the suffixes it accepts,
and before a node is changed the graph looks for an existing node that
already looks like the result. If one exists, the edge is pointed at it
instead. Nodes are reference counted, shared nodes are copied before they
are changed, and nodes that lose their last reference are released.

Nodes and edges are kept in chunked arrays rather than as individual Go
objects, which keeps the memory use low and the garbage collector idle even
for graphs with millions of nodes.

In general, to use it you first create a graph using New(). You can then
add words to it. Words must not be repeated, and they should be added in
increasing alphabetical order; WithOrderCheck() makes Add enforce the
order. The graph can be queried at any time with Contains, and its words
listed with Iterator, Words or Enumerate.

A graph can be written with Write or Save in the DAWG.1 format. Two
structures read it back: Read returns a Graph that can be queried but not
added to, and ReadReadonly returns a compact Readonly structure. The DAWG.2
format written by WriteStreamed adds a seek index, so that OpenStreamed can
answer queries from a memory mapped file without loading the nodes.
*/
package onlinedawg

// Package queryir defines the intermediate representation consumed by the
// query compilers in internal/querysql.
//
// Three families of values live here:
//
//   - Condition trees (Node): Group, FlatMap and Leaf.
//   - Join specifications (Join): a single JoinSpec or an ordered JoinList.
//   - Selections (Selection): RawSelect, ColumnList and SelectObject, the
//     latter optionally carrying a relevance Boost.
//
// SEALED INTERFACES:
//
// Node, Join and Selection are sealed with marker methods. The shape of a
// condition is decided when the tree is built (by hand or by ParseFilter),
// never inferred by probing fields at compile time. Backends switch
// exhaustively on the concrete types:
//
//	switch n := node.(type) {
//	case Group:
//	    // (child) AND|OR (child) ...
//	case FlatMap:
//	    // column = value AND column = value ...
//	case Leaf:
//	    // column <op> <placeholder>
//	}
//
// All IR values are plain data. They carry no SQL and no bound parameters;
// compilation happens in internal/querysql against a fresh parameter cache.
package queryir

// Package kinship names the relationship between two members of a family.
//
// # Resolution
//
// A [Resolver] computes the connection index of both people (see
// [family.Graph.Connections]), intersects them, and for every shared
// relative forms the key
//
//	<path from self to shared>:<path from other to shared>
//
// The shortest key wins. For Alice and her daughter Carol the shared
// relative is Alice herself, so the key is ":P" (an empty path for Alice, one
// parent step for Carol), which the default table translates to "mother".
//
// Ties between keys of equal length are broken lexically, then by the shared
// relative's name, so repeated queries always give the same answer.
//
// # Lookup Tables
//
// Terms come from a [Table] that is constructed explicitly and injected into
// [NewResolver]; there is no package-level mutable state. [DefaultTable]
// returns the embedded English table; [LoadTable] reads a custom one from a
// TOML or JSON file of the form:
//
//	[":P"]
//	f = "mother"
//	m = "father"
//	n = "parent"
//
// A key missing from the table, or a key without a term for the person's
// gender, is reported as [DistantRelative].
//
// # Errors
//
// [Resolver.Query] distinguishes an unknown name ([ErrPersonNotFound]) from
// two people who simply share no relative (Relation.Related == false).
package kinship

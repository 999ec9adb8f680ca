// Package family provides the graph of people that kinship queries run on.
//
// # Overview
//
// A [Graph] is built once from a [Data] description: the individuals with
// their gender tags, a map from each child to its ordered parents, and a list
// of married couples. Every person gets a stable [ID]; all edges and every
// lookup structure are indexed by ID, never by pointer, so the graph owns its
// people in a single arena and no ownership cycles exist even though spouse
// edges are mutual and siblings share parents.
//
//	g, err := family.New(family.Data{
//	    Individuals: map[string]family.Gender{"Alice": family.Female, "Bob": family.Male, "Carol": family.Female},
//	    Parents:     map[string][]string{"Carol": {"Alice", "Bob"}},
//	    Couples:     [][2]string{{"Alice", "Bob"}},
//	})
//
// Construction validates referential integrity: a name in the parents map or
// the couples list that is not an individual yields a *[ReferenceError], and
// no graph is returned.
//
// # Connections
//
// [Graph.Connections] runs a breadth-first search from one person over parent
// and spouse edges and records, for each reachable person, the shortest
// [Path]: a string of "P" (parent) and "S" (spouse) steps. A path crosses at
// most one marriage; once a spouse step is taken only parent steps follow.
// This keeps a spouse's spouse from being treated as a relative.
//
// # Concurrency
//
// A Graph is immutable after [New] returns, so any number of goroutines may
// compute connections on it at the same time. An [Index] is a per-call value
// and is not shared.
package family

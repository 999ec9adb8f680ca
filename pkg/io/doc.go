// Package io reads and writes family descriptions.
//
// # Format
//
// A family document has three top-level fields. In JSON:
//
//	{
//	  "individuals": {"Alice": "f", "Bob": "m", "Carol": "f"},
//	  "parents":     {"Carol": ["Alice", "Bob"]},
//	  "couples":     [["Alice", "Bob"]]
//	}
//
// The same document in TOML:
//
//	couples = [["Alice", "Bob"]]
//
//	[individuals]
//	Alice = "f"
//	Bob = "m"
//	Carol = "f"
//
//	[parents]
//	Carol = ["Alice", "Bob"]
//
// YAML uses the same field names. Gender tags may be written short
// ("f", "m", "n") or long ("female", "male", "nonbinary"); they are always
// written short.
//
// # Import
//
// [Import] reads a file and picks the decoder from its extension (.json,
// .toml, .yaml, .yml). [Read] decodes from any io.Reader with an explicit
// [Format]. Both return a [family.Data] ready for [family.New]; they check
// the document's shape (gender tags, couples of exactly two names) but not
// referential integrity, which is the graph's job.
//
// # Export
//
// [Write] and [Export] are the inverse and are used to pull a family out of
// a store into a file. A document survives Import → Export → Import
// unchanged.
package io

// Package pkg provides the libraries behind the kinship command.
//
// # Overview
//
// Kinship answers "how is A related to B" for a family tree of people, their
// parents and their marriages. The pkg directory is organized as:
//
//  1. [family] - The family graph and the shortest-path connection index
//  2. [kinship] - Relationship keys, the lookup table and the resolver
//  3. [io] - Family documents in JSON, TOML and YAML
//  4. [pipeline] - Orchestration (load → resolve), shared by CLI and server
//  5. [cache], [store] - Result caching and named family storage
//  6. [render/dot] - Graphviz diagrams of a family
//
// Cross-cutting packages: [errors] (coded errors), [observability] (hooks)
// and [buildinfo] (version stamping).
//
// # Architecture
//
// The typical data flow:
//
//	family.json / stored family
//	         ↓
//	    [io] package (decode family.Data)
//	         ↓
//	    [family] package (build Graph, index connections)
//	         ↓
//	    [kinship] package (relationship key → term)
//	         ↓
//	"Carol is Dan's sister"
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/kinship/pkg/family"
//	    "github.com/matzehuels/kinship/pkg/io"
//	    "github.com/matzehuels/kinship/pkg/kinship"
//	)
//
//	data, _ := io.Import("family.json")
//	g, _ := family.New(data)
//	rel, _ := kinship.NewResolver(nil).Query(ctx, g, "Carol", "Dan")
//	fmt.Println(rel.Sentence())
//
// For caching, stored families and concurrent matrices use [pipeline].
//
// # Testing
//
//	go test ./...                                   # All tests
//	KINSHIP_REDIS_ADDR=localhost:6379 go test ./pkg/cache/...
//	KINSHIP_MONGO_URI=mongodb://localhost go test ./pkg/store/mongo/...
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/family
// [kinship]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/kinship
// [io]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/store
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/render/dot
// [errors]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/buildinfo
package pkg

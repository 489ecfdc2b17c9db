// Package pkg provides the core libraries for Stackflow block-tree
// flowcharts.
//
// # Overview
//
// A Stackflow chart is a forest of blocks linked by parent ids. Every
// parent sits centered over a single row of its children, and elbow
// connectors join each child to its parent. Blocks are dropped from a
// palette, dragged between parents, or moved with their whole subtree,
// and the layout is recomputed after each change.
//
// # Architecture
//
// The data flow for an interactive edit:
//
//	pointer events (terminal, WebSocket, tests)
//	         ↓
//	    [drag] controller (tagged gesture states)
//	         ↓
//	    [layout] coordinator (snap, rearrange, detach, relayout)
//	         ↓
//	    [blocktree] + [geometry] + [connector]
//	         ↓
//	    [surface] nodes (positions, connector paths, drop indicator)
//
// [engine] wires these together behind one mutex and adds import, export,
// reset and subtree delete.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/stackflow/pkg/engine"
//	    "github.com/matzehuels/stackflow/pkg/flowchart"
//	    "github.com/matzehuels/stackflow/pkg/surface"
//	)
//
//	doc, _ := flowchart.ReadFile("chart.json")
//	e, _ := engine.New(surface.NewMemory(1200, 800), engine.Options{})
//	_ = e.Import(doc)
//	if out, ok := e.Export(); ok {
//	    _ = flowchart.WriteFile("chart.laid-out.yaml", out)
//	}
//
// # Main Packages
//
// [blocktree] - Id-indexed block store with parent links, traversal
// helpers and pre-mutation validation.
//
// [geometry] - Rectangles, snap zones, row widths and overflow shifts.
//
// [connector] - Elbow connector routes from a parent's bottom edge to a
// child's top edge.
//
// [layout] - The coordinator that keeps the tree laid out after every
// snap or detach, plus the dragged-subtree and viewport types.
//
// [drag] - Pointer gesture state machine.
//
// [flowchart] - The JSON/YAML chart document format.
//
// [store] - Chart persistence in memory, files, SQLite, Redis or MongoDB.
//
// [render] - SVG, Graphviz and PNG/PDF output.
//
// [config], [errors], [observability] and [buildinfo] carry the ambient
// concerns shared by the CLI and the server.
package pkg

// Package flowchart defines the export document of a chart and reads and
// writes it as JSON or YAML.
//
// # Format
//
// A document has two arrays. blocks carries structure and content,
// positions carries geometry:
//
//	{
//	  "blocks": [
//	    {"id": 0, "parentId": -1,
//	     "data": [{"name": "name", "value": "Start"}],
//	     "attributes": [{"name": "blockelemtype", "value": "1"}]},
//	    {"id": 1, "parentId": 0, "data": [], "attributes": []}
//	  ],
//	  "positions": [
//	    {"id": 0, "x": 500, "y": 100, "width": 120, "height": 40, "parentId": -1},
//	    {"id": 1, "x": 500, "y": 215, "width": 120, "height": 30, "parentId": 0}
//	  ]
//	}
//
// A parentId of -1 marks a root. Positions are optional; a block without
// one is measured when it is imported. The same document is written as YAML
// when the file name ends in .yaml or .yml.
//
// # Import semantics
//
// [Document.ToBlocks] merges both arrays and validates the result as a
// whole: duplicate ids, dangling or cyclic parents, positions for unknown
// blocks, and malformed field names reject the entire document.
// Persisted positions are a hint only; importing a document always runs a
// full layout pass, so an import followed by an export reproduces the
// structure exactly but may move blocks.
package flowchart

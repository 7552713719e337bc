// Package diagram provides the in-memory model of a schematic drawing:
// typed components, point-to-point wires and text annotations grouped into
// layers, together with the undo history and the spatial queries (snapping,
// hit-testing, collision) that an interactive editor needs.
//
// A Store is owned by exactly one editor. It is not safe for concurrent use;
// every mutation is expected to run to completion inside the handler of a
// single input event.
package diagram

// Package scene turns a computed layout into a drawable mind-map scene and
// drives its hover highlighting.
//
// # Marks
//
// A [Scene] owns one [NodeMark] per layout node and one [EdgeMark] per edge.
// Marks carry presentational attributes only (radius, colors, stroke widths,
// label weight, opacity); layout positions are read from the layout and never
// written.
//
// # Highlighting
//
// Pointer events are funnelled through a single hovered slot on the Scene.
// Each node runs a small state machine:
//
//	Idle --enter--> Entering --done--> Hovered --leave--> Leaving --done--> Idle
//
// Entering a new node while another is hovered starts the old node's Leaving
// transition and the new node's Entering transition side by side, so the last
// node entered always wins. A transition interrupted part way restarts from the
// mark's current attributes toward its fixed target, and on completion the
// target is assigned exactly, so nothing is ever left between states.
//
// Time is passed in explicitly ([Scene.PointerEnter], [Scene.Tick]) which keeps
// the controller deterministic under test. [Scene.Settle] jumps every running
// transition to its end state.
//
// # Entrance
//
// [Scene.Animate] starts the entrance reveal: node circles grow and labels fade
// in with a delay proportional to depth, and connectors fade up from a dim
// starting opacity. The reveal is a separate channel from hover styling.
//
// # Serialization
//
// [Scene.WriteSVG] emits the scene with github.com/ajstarks/svgo. By default it
// draws the current state; [Idle] forces idle, fully revealed styling (the
// export input) and [WithInteraction] embeds CSS transitions and a pointer
// script so the same hover behavior runs in a browser.
//
// A Scene is not safe for concurrent use.
package scene

// Package viz draws a running simulation in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps a [sim.Loop] on every tick and draws the newest frame
//   - [Canvas]: braille pixel grid with a heat color per character cell
//   - [Camera]: rotatable perspective projection, pitched by default so an
//     untilted disk is seen from slightly above
//   - [HorizonWireframe]: the absorption sphere, built once from the config
//   - [Theme]: panel colors and a Lab-space tint applied to particle colors
//
// [RunInteractive] adds a preset picker in front of the live view.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	.     - Single step while paused
//	R     - Reset to the seeded disk
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	x/y/z - Rotate the camera, +/- zoom
package viz

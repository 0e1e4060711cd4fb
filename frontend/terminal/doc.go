// Package terminal plays the maze puzzle game in a text terminal using tcell.
//
// Arrow keys or WASD move the player, r restarts the level, n starts a new
// game and q or Esc quits. The simulation runs at a fixed pace set by a
// rate limiter; keys pressed between two ticks are applied together.
package terminal

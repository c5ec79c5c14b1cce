// Package game defines the contracts between board-game rules providers and
// the agents that play them.
//
// A rules provider implements the Rules interface for a concrete game. Agents
// never inspect boards themselves; every question about a position goes
// through Rules. Boards handed to agents are always in canonical form, i.e.
// presented from the perspective of the player to move, so agents can treat
// "the current player" as game.White everywhere.
//
// # Deterministic Testing
//
// Nothing in this package owns randomness. Rules implementations are pure:
// the same board, player, and action always produce the same successor
// state. Stochastic behaviour lives entirely in agents and simulators,
// which take explicit seeds.
package game

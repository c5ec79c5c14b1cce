// Package agent provides action-selection strategies for two-player,
// perfect-information board games played through the game.Rules contract.
//
// Every agent operates on canonical boards: the caller canonicalises the
// position before asking for an action, so the side to move is always
// encoded as game.White. The flagship strategy is MonteCarloAgent, which
// ranks a predictor's most promising actions by averaging random rollouts
// from each resulting position. RandomAgent and GreedyAgent are baselines
// for benchmarking it against.
package agent

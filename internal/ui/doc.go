// Package ui implements the terminal player using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [LoadingView] : catalog tracks and liked songs are being fetched
//  2. [BrowseView] : track list with the mini player bar underneath
//  3. [PlayerView] : full player with metadata, waveform, elapsed/total time and like flag
//
// The [Model] never changes playback state itself. Intents (toggle, seek, skip, play from selection) go to an
// injected [player.Handle]; state comes back from the player's Updates channel through a wait command, so the
// view only ever renders the latest snapshot.
//
// Keys: space toggles, ←/→ seek by 5%, n/p skip, enter plays from the selected track, e expands or collapses,
// l likes, q quits. A click on the waveform seeks to that column. Mouse drags are replayed as touch events
// through a [gesture.Recognizer]: swipe left/right skips, swipe up expands, swipe down collapses.
package ui

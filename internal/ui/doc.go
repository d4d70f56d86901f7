// Package ui contains the Bubble Tea program that owns the application state
// and draws the key vault browser.
//
// Message flow:
//   - Every producer (the input reader and each background task) writes
//     event.Message values to a single channel. Model.Init arms a command that
//     receives one message from that channel; the handler applies it and arms
//     the next receive, so exactly one message is processed per Update and
//     Bubble Tea redraws after each one.
//   - Messages are routed through a typed handler registry. Channel messages
//     are handed to the dispatcher (internal/data/dispatcher), which is the
//     only code that mutates state.App.
//   - A Terminate message, the quit binding, or the end of the message stream
//     (every producer has released its sender) ends the program. Tasks that
//     are still running do not delay the exit.
//
// Rendering:
//   - View is a pure projection of state.App and the window size. It never
//     touches the channel or the state, so two calls without an intervening
//     message return the same frame.
package ui

// Package memory provides minimal transcript persistence.
//
// Persistence model:
//   - Full chat messages are stored, tool calls and results included, so a
//     reloaded transcript replays cleanly into the model.
//   - One JSON file per conversation; a missing file means a fresh start.
package memory

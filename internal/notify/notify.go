// ABOUTME: Notification sink for user-visible messages from the sync engine
// ABOUTME: Console implementation colors output; Silent swallows everything for tests

package notify

import (
	"fmt"

	"github.com/fatih/color"
)

// Notifier receives user-facing messages from the engine. The engine never
// prints directly, so embedders can route messages wherever they like.
type Notifier interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
}

// Console writes colored messages to stdout.
type Console struct{}

func (Console) Info(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

func (Console) Success(format string, args ...any) {
	color.Green(format, args...)
}

func (Console) Warning(format string, args ...any) {
	color.Yellow(format, args...)
}

func (Console) Error(format string, args ...any) {
	color.Red(format, args...)
}

// Silent discards all messages.
type Silent struct{}

func (Silent) Info(string, ...any)    {}
func (Silent) Success(string, ...any) {}
func (Silent) Warning(string, ...any) {}
func (Silent) Error(string, ...any)   {}

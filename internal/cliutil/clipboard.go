// Package cliutil holds small terminal helpers shared by the venice
// command tree: clipboard access and yes/no confirmation prompts.
package cliutil

import (
	"github.com/atotto/clipboard"
)

// CopyToClipboard copies value to the system clipboard, used by
// `venice auth show --copy`.
func CopyToClipboard(value string) error {
	return clipboard.WriteAll(value)
}

package registry

import (
	"strings"
	"unicode/utf8"
)

// Tokenize splits the text following cmd's trigger (and prefix, when cmd
// requires one) into whitespace-separated arguments. Runs of whitespace never
// produce empty arguments. Text too short to hold the trigger yields no
// arguments; routers never hand such text to a command.
func Tokenize(cmd *MessageCommand, text string) []string {
	skip := len(cmd.Trigger)
	if cmd.RequirePrefix {
		_, size := utf8.DecodeRuneInString(text)
		skip += size
	}
	if skip > len(text) {
		return nil
	}
	return strings.Fields(text[skip:])
}

// Args tokenizes the arguments of e for cmd.
func (c *MessageCommand) Args(e *MessageEvent) []string {
	return Tokenize(c, e.Text())
}

// Package render turns game views into plain text for chat-style clients.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/robalobadob/badwordle/internal/game"
	"github.com/robalobadob/badwordle/internal/session"
)

// regionalA is U+1F1E6 REGIONAL INDICATOR SYMBOL LETTER A.
const regionalA = 0x1F1E6

// EmojiLetter maps A–Z to its regional indicator symbol; other letters render as '?'.
func EmojiLetter(r rune) rune {
	r = unicode.ToUpper(r)
	if r < 'A' || r > 'Z' {
		return '?'
	}
	return regionalA + (r - 'A')
}

// Board renders one line per attempt:
//   - correct letters as regional indicator emoji
//   - present letters in parentheses, e.g. (E)
//   - absent letters lowercased
func Board(v game.View) string {
	var b strings.Builder
	b.WriteString("Your attempts:\n\n")
	for _, attempt := range v.Attempts {
		for i, l := range attempt {
			if i > 0 {
				b.WriteByte(' ')
			}
			switch l.Mark {
			case game.MarkCorrect:
				b.WriteRune(EmojiLetter(l.Letter))
			case game.MarkPresent:
				fmt.Fprintf(&b, "(%c)", l.Letter)
			default:
				b.WriteRune(unicode.ToLower(l.Letter))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Turn renders the board followed by a line describing the outcome.
func Turn(t session.Turn) string {
	switch t.Move {
	case session.MoveInvalidWord:
		return "Sorry, that's not a valid word. Try again."
	case session.MoveInvalidLength:
		return fmt.Sprintf("Sorry, the word must be %d letters long. Try again.", t.Length)
	}

	s := Board(t.Game)
	switch {
	case t.Move == session.MoveWon || t.Game.Status == game.StatusWon:
		s += fmt.Sprintf("\nYou won!\nYour score: %s\n", t.Score)
	case t.Move == session.MoveLost || t.Game.Status == game.StatusLost:
		s += fmt.Sprintf("\nYou lost! Target word: %s\nYour score: %s\n", t.Target, t.Score)
	default:
		s += fmt.Sprintf("\nNice try. Guess another word?\nAttempts: %s\n", strings.Join(t.Letters, " "))
	}
	return s
}

// Welcome greets a player at the start of a game.
func Welcome(name, gameName string, s session.Started) string {
	intro := "This is your first game."
	if !s.FirstGame {
		intro = fmt.Sprintf("Your score: %s.", s.Score)
	}
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s, Welcome to %s!\n\n%s\nGuess the %d-letter word.", name, gameName, intro, s.Length)
}

// Help describes the game rules.
func Help(gameName string) string {
	return fmt.Sprintf("Welcome to %s! The goal of the game is to guess the target word within %d tries.\n\n"+
		"POST /game/new to restart the game or GET /score to see your score", gameName, game.MaxAttempts)
}

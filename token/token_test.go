package token_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/pete-tpl/pete-core/token"
)

func TestPositionFor(t *testing.T) {
	src := "hello,\nworld!\nhere is {%test%} a tag"

	pos := token.PositionFor(src, 22)
	qt.Assert(t, qt.Equals(pos.Line, 3))
	qt.Assert(t, qt.Equals(pos.Column, 8))
}

func TestPositionForFirstLine(t *testing.T) {
	pos := token.PositionFor("no newlines here", 5)
	qt.Assert(t, qt.Equals(pos.Line, 1))
	qt.Assert(t, qt.Equals(pos.Column, 5))
}

func TestPositionForClampsOutOfRangeOffsets(t *testing.T) {
	src := "abc"
	qt.Assert(t, qt.Equals(token.PositionFor(src, -5).Column, 0))
	qt.Assert(t, qt.Equals(token.PositionFor(src, 1000).Column, len(src)))
}

package tplerr_test

import (
	"errors"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/pete-tpl/pete-core/tplerr"
)

func TestErrorFormatting(t *testing.T) {
	template := "hello,\nworld!\nhere is {%test%} a tag"
	err := tplerr.New(template, 22, tplerr.UnknownKeyword, "Unknown tag")

	qt.Assert(t, qt.Equals(err.Error(), "An error ocurred at line 3, position 8: Unknown tag"))
}

func TestErrorIsMatchesItsCause(t *testing.T) {
	err := tplerr.New("tpl", 0, tplerr.CommentNotClosed, "comment is not closed")
	qt.Assert(t, qt.IsTrue(errors.Is(err, tplerr.CommentNotClosed)))
	qt.Assert(t, qt.IsFalse(errors.Is(err, tplerr.TagNotClosed)))
}

func TestNewfFormatsMessage(t *testing.T) {
	err := tplerr.Newf("tpl", 0, tplerr.ExpressionSyntax, "got %d operands, want %d", 3, 2)
	qt.Assert(t, qt.Equals(err.Message, "got 3 operands, want 2"))
}

package apperrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("TestError", func(t *testing.T) {
		ErrBaseErr := New("base error")
		assert.Equal(t, "base error", ErrBaseErr.Error())
		assert.Equal(t, "msg", ErrBaseErr.New("msg").Error())
		assert.ErrorIs(t, ErrBaseErr, ErrBaseErr)

		ErrFirstLevel := ErrBaseErr.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBaseErr)

		ErrAnotherErr := New("another error")
		ErrWrappedErr := ErrFirstLevel.Err(ErrAnotherErr)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrFirstLevel)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErr)

		err := errors.New("error")
		ErrWrappedErr = ErrFirstLevel.Err(err)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)

		ErrWrappedErr = ErrFirstLevel.MsgErr("msg", err)
		assert.Equal(t, "msg", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)
	})

	t.Run("sentinels are not mutated", func(t *testing.T) {
		ErrBase := New("base")
		derived := ErrBase.Msg("changed").Prefix("pre").Suffix("post")
		assert.Equal(t, "pre: changed: post", derived.Error())
		assert.Equal(t, "base", ErrBase.Error())
		assert.ErrorIs(t, derived, ErrBase)
		assert.Empty(t, ErrBase.Unwrap())
	})

	t.Run("exit codes are inherited", func(t *testing.T) {
		ErrInput := New("input").SetExitCode(ExitCodeInput)
		ErrChild := ErrInput.New("child")
		assert.Equal(t, ExitCodeInput, ErrChild.ExitCode())
		assert.Equal(t, ExitCodeInput, ErrChild.Msg("other").ExitCode())
		assert.Equal(t, ExitCodeGeneric, New("plain").ExitCode())
	})

	t.Run("expanded messages", func(t *testing.T) {
		ErrExpand := New("outer").SetExpandError(true)
		err := ErrExpand.Err(errors.New("a"), errors.New("b"))
		assert.Equal(t, "outer: a;b", err.ErrorAll())
		assert.Equal(t, "outer", err.Error())
	})
}

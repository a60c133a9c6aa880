package sequence

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_PreservesOrder(t *testing.T) {
	l := Of("a", "b")
	l.Push("c").Extend("d", "e")
	l.Concat(Of("f"))
	l.Concat(nil)

	assert.Equal(t, 6, l.Len())
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, l.Items())
}

func TestList_ItemsIsACopy(t *testing.T) {
	l := Of(1, 2, 3)
	items := l.Items()
	items[0] = 42

	assert.Equal(t, []int{1, 2, 3}, l.Items())
}

func TestList_NilAndEmpty(t *testing.T) {
	var l *List[int]
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Items())
	assert.NoError(t, l.Each(func(int, int) error { return errors.New("unreachable") }))

	var sb strings.Builder
	require.NoError(t, Of[int]().Render(&sb, "\n", func(w io.Writer, v int) error {
		_, err := fmt.Fprint(w, v)
		return err
	}))
	assert.Empty(t, sb.String())
}

func TestMap(t *testing.T) {
	doubled, err := Map(Of(1, 2, 3), func(v int) (string, error) {
		return strconv.Itoa(v * 2), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4", "6"}, doubled.Items())

	boom := errors.New("boom")
	_, err = Map(Of(1, 2, 3), func(v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestEach_StopsAtFirstError(t *testing.T) {
	var seen []int
	err := Of(1, 2, 3).Each(func(i, v int) error {
		seen = append(seen, v)
		if v == 2 {
			return errors.New("stop")
		}
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestRender(t *testing.T) {
	var sb strings.Builder
	err := Of("func a() {}", "func b() {}").Render(&sb, "\n\n", func(w io.Writer, s string) error {
		_, err := io.WriteString(w, s)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "func a() {}\n\nfunc b() {}", sb.String())

	err = Of("x", "y").Render(&sb, "", func(w io.Writer, s string) error {
		if s == "y" {
			return errors.New("bad item")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
}

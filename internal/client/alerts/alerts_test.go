package alerts

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(list []Alert) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestPush_AssignsUUIDAndKeepsOrder(t *testing.T) {
	c := New(0)

	a := c.Push("first", SeverityDanger)
	b := c.Push("second", SeverityInfo)

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	got := c.List()
	require.Len(t, got, 2)
	assert.Equal(t, Alert{ID: a, Message: "first", Severity: SeverityDanger}, got[0])
	assert.Equal(t, Alert{ID: b, Message: "second", Severity: SeverityInfo}, got[1])
}

func TestDismiss_RemovesOnlyThatAlert(t *testing.T) {
	c := New(0)
	a := c.Push("a", SeverityDanger)
	b := c.Push("b", SeverityDanger)

	c.Dismiss(a)

	assert.Equal(t, []string{b}, ids(c.List()))
}

func TestDismiss_UnknownIsNoop(t *testing.T) {
	c := New(0)
	a := c.Push("a", SeverityDanger)

	c.Dismiss("nope")
	c.Dismiss(a)
	c.Dismiss(a)

	assert.Empty(t, c.List())
}

func TestList_ReturnsCopy(t *testing.T) {
	c := New(0)
	c.Push("a", SeverityDanger)

	got := c.List()
	got[0].Message = "changed"

	assert.Equal(t, "a", c.List()[0].Message)
}

func TestPush_ExpiresAfterTimeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Push("gone soon", SeverityDanger)
	require.Len(t, c.List(), 1)

	assert.Eventually(t, func() bool { return len(c.List()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestPush_ZeroTimeoutNeverExpires(t *testing.T) {
	c := New(0)
	c.Push("sticky", SeverityDanger)

	time.Sleep(30 * time.Millisecond)
	assert.Len(t, c.List(), 1)
}

func TestClose_StopsExpiry(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Push("kept", SeverityDanger)
	c.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, c.List(), 1)
}

func TestChannel_ConcurrentPushDismiss(t *testing.T) {
	c := New(time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := c.Push(fmt.Sprintf("m%d", i), SeverityDanger)
			if i%2 == 0 {
				c.Dismiss(id)
			}
			_ = c.List()
		}(i)
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return len(c.List()) == 0 }, time.Second, 5*time.Millisecond)
}

package replies

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnsubscribe(t *testing.T) {
	assert.True(t, IsUnsubscribe("Please UNSUBSCRIBE me", ""))
	assert.True(t, IsUnsubscribe("Re: your video", "please remove me from this list"))
	assert.True(t, IsUnsubscribe("", "Stop emailing me."))
	assert.False(t, IsUnsubscribe("Re: animation offer", "sounds interesting, tell me more"))
	assert.False(t, IsUnsubscribe("", ""))
}

func TestSnippetStripsHeaders(t *testing.T) {
	raw := "From: sam@example.com\r\nSubject: Re: hello\r\n\r\nThanks for reaching out!\r\nLet's talk next week.\r\n"
	got := Snippet([]byte(raw))
	assert.Contains(t, got, "Thanks for reaching out!")
	assert.NotContains(t, got, "Subject:")
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("a", 900)
	got := Snippet([]byte(long))
	assert.Len(t, got, snippetMax)
}

func TestSnippetEmpty(t *testing.T) {
	assert.Empty(t, Snippet(nil))
	assert.Empty(t, Snippet([]byte("   \r\n")))
}

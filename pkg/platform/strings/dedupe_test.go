package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a.test", "http://b.test"},
		SplitList(" http://a.test, http://b.test,,http://a.test"))
	assert.Empty(t, SplitList(""))
	assert.Empty(t, SplitList(" , ,"))
}

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"},
		DedupeAndTrim([]string{" 10.0.0.0/8", "127.0.0.1 ", "10.0.0.0/8", ""}))
}

package announce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerName(t *testing.T) {
	name, ok := Server("lobby").Get()
	assert.True(t, ok)
	assert.Equal(t, "lobby", name)

	for _, s := range []ServerName{{}, NoServer(), Server(""), Server("   ")} {
		assert.False(t, s.IsPresent())
		assert.Equal(t, "fallback", s.OrElse("fallback"))
		assert.Equal(t, NoServer(), s)
	}

	// Surrounding whitespace on a real name is kept verbatim.
	assert.Equal(t, " hub ", Server(" hub ").OrElse(""))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("")
	assert.NoError(t, err)
	assert.Equal(t, Yellow, c)

	c, err = ParseColor("Light_Purple")
	assert.NoError(t, err)
	assert.Equal(t, LightPurple, c)

	_, err = ParseColor("magenta")
	assert.Error(t, err)
}

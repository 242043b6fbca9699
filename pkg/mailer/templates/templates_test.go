package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextToHTML(t *testing.T) {
	t.Parallel()

	got := TextToHTML("Hi ${name},\r\n\r\n<b>5 > 3</b> & co")
	assert.Equal(t, "Hi ${name},<br>\n<br>\n&lt;b&gt;5 &gt; 3&lt;/b&gt; &amp; co", string(got))
}

func TestTextToHTML_PlaceholdersKeptVerbatim(t *testing.T) {
	t.Parallel()

	got := TextToHTML("R&D: ${R&D} <${a<b}>\n${unclosed & more")
	assert.Equal(t, "R&amp;D: ${R&D} &lt;${a<b}&gt;<br>\n${unclosed &amp; more", string(got))
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	out, err := RenderText(Layout{Title: "Newsletter", SenderName: "Acme Team", Footer: "Acme Ltd, Oslo"}, "Hello ${name}\nSee you")
	require.NoError(t, err)

	assert.Contains(t, out, "Hello ${name}<br>\nSee you")
	assert.Contains(t, out, "Acme Team")
	assert.Contains(t, out, "Acme Ltd, Oslo")
	assert.Contains(t, out, `lang="en"`)
	assert.NotContains(t, out, "<img", "no logo configured")
}

func TestRenderText_Logo(t *testing.T) {
	t.Parallel()

	out, err := RenderText(Layout{SenderName: "Acme", LogoURL: "https://cdn.acme.test/logo.png", Lang: "id"}, "x")
	require.NoError(t, err)
	assert.Contains(t, out, `src="https://cdn.acme.test/logo.png"`)
	assert.Contains(t, out, `lang="id"`)
}

func TestRenderHTML_UnknownTemplate(t *testing.T) {
	t.Parallel()

	_, err := RenderHTML("missing", nil)
	require.Error(t, err)
}

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	p := Compose("Stormname  Deaths\n     Amy       1", DefaultInstruction)
	text := p.String()

	assert.True(t, strings.HasPrefix(text, "Stormname  Deaths\n     Amy       1\n\n"))
	assert.Contains(t, text, "\n\nQuestion: "+DefaultInstruction+"\n\n")
	assert.True(t, strings.HasSuffix(text, Exemplar))
	assert.Contains(t, text, "| Storm Name | Date Start | Date End | Areas Affected | Deaths |\n| --- | --- | --- | --- | --- |\n")
	assert.Contains(t, text, "| Example Storm | January 1 | January 5 | Location A | 10 |")
}

func TestComposeIsStable(t *testing.T) {
	a := Compose("data", "question")
	b := Compose("data", "question")
	assert.Equal(t, a, b)

	c := Compose("other data", "")
	assert.True(t, strings.HasSuffix(c.String(), Exemplar))
	assert.Contains(t, c.String(), "Question: \n\n")
}

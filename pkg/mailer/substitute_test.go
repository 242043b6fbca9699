package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func row(kv ...string) Row {
	r := make(Row, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, Field{Key: kv[i], Value: kv[i+1]})
	}
	return r
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		row  Row
		want string
	}{
		{"no placeholders", "Hello there", row("name", "Ann"), "Hello there"},
		{"every occurrence", "${name}, ${name}!", row("name", "Ann"), "Ann, Ann!"},
		{"several columns", "${greet} ${name}", row("name", "Ann", "greet", "Hi"), "Hi Ann"},
		{"unknown stays literal", "Dear ${title} ${name}", row("name", "Ann"), "Dear ${title} Ann"},
		{"case sensitive", "${Name}", row("name", "Ann"), "${Name}"},
		{"non-ascii column", "Halo ${nama_lengkap} ${名前}", row("nama_lengkap", "Budi", "名前", "太郎"), "Halo Budi 太郎"},
		{"email column is a key too", "to ${email}", row("email", "a@x.io"), "to a@x.io"},
		{"empty row", "${x}", nil, "${x}"},
		{"value with later placeholder expands", "${a}", row("a", "${b}", "b", "B"), "B"},
		{"value with earlier placeholder stays", "${a}", row("b", "B", "a", "${b}"), "${b}"},
		{"no html escaping", "${v}", row("v", "<b>&</b>"), "<b>&</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.text, tt.row))
		})
	}
}

func TestSubstitute_Deterministic(t *testing.T) {
	t.Parallel()

	r := row("name", "Ann", "city", "Oslo")
	first := Substitute("${name} from ${city}", r)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Substitute("${name} from ${city}", r))
	}
}

func TestVariables(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"name", "city"}, Variables([]string{"email", "name", "city"}, "email"))
	assert.Equal(t, []string{}, Variables([]string{"email"}, "email"))
}

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableRef(t *testing.T) {
	tests := []struct {
		ref    string
		want   TableRef
		quoted QuotedIdentifier
		gran   TargetGranularity
	}{
		{ref: "mols", want: TableRef{Name: "mols"}, quoted: `"mols"`, gran: ComponentLevel},
		{ref: "rdk.mols", want: TableRef{Schema: "rdk", Name: "mols"}, quoted: `"rdk"."mols"`, gran: ComponentLevel},
		{ref: "rdk.reactions", want: TableRef{Schema: "rdk", Name: "reactions"}, quoted: `"rdk"."reactions"`, gran: ReactionLevel},
		{ref: "ord_reactions_2024", want: TableRef{Name: "ord_reactions_2024"}, quoted: `"ord_reactions_2024"`, gran: ReactionLevel},
		{ref: "reactions.mols", want: TableRef{Schema: "reactions", Name: "mols"}, quoted: `"reactions"."mols"`, gran: ReactionLevel},
		{ref: "ord_reactions_v2.mols", want: TableRef{Schema: "ord_reactions_v2", Name: "mols"}, quoted: `"ord_reactions_v2"."mols"`, gran: ReactionLevel},
		{ref: `we"ird`, want: TableRef{Name: `we"ird`}, quoted: `"we""ird"`, gran: ComponentLevel},
		{ref: "Reactions", want: TableRef{Name: "Reactions"}, quoted: `"Reactions"`, gran: ComponentLevel},
	}

	for _, test := range tests {
		t.Run(test.ref, func(t *testing.T) {
			got, err := ParseTableRef(test.ref)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
			assert.Equal(t, test.quoted, got.Quoted())
			assert.Equal(t, test.gran, got.Granularity())
			assert.Equal(t, test.ref, got.String())
		})
	}
}

func TestParseTableRefInvalid(t *testing.T) {
	for _, ref := range []string{"", ".", "a.", ".b", "a.b.c", "a..b"} {
		t.Run(ref, func(t *testing.T) {
			_, err := ParseTableRef(ref)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidIdentifier)
		})
	}
}

func TestResolve(t *testing.T) {
	q, err := Resolve("public.reactions")
	require.NoError(t, err)
	assert.Equal(t, QuotedIdentifier(`"public"."reactions"`), q)

	_, err = Resolve("a.b.c")
	assert.Equal(t, CodeInvalidIdentifier, CodeOf(err))
}

func TestQuoteName(t *testing.T) {
	q, err := quoteName("mfp2")
	require.NoError(t, err)
	assert.Equal(t, QuotedIdentifier(`"mfp2"`), q)

	for _, name := range []string{"", "a.b"} {
		_, err := quoteName(name)
		assert.ErrorIs(t, err, ErrInvalidIdentifier, name)
	}
}

func TestGranularityString(t *testing.T) {
	assert.Equal(t, "reaction", ReactionLevel.String())
	assert.Equal(t, "component", ComponentLevel.String())
}

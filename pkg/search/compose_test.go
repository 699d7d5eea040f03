package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	componentBody = "SELECT DISTINCT A.\"reaction_id\", A.\"serialized\"\n" +
		"FROM \"reactions\" A\n" +
		"INNER JOIN \"rdk\".\"mols\" B ON A.\"reaction_id\" = B.\"reaction_id\"\n" +
		"WHERE "
	reactionBody = "SELECT DISTINCT A.\"reaction_id\", A.\"serialized\"\n" +
		"FROM \"reactions\" A\n" +
		"INNER JOIN \"rdk\".\"reactions\" B ON A.\"reaction_id\" = B.\"reaction_id\"\n" +
		"WHERE "
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Statement
	}{
		{
			name: "substructure on components",
			req:  Request{Kind: Substructure, Pattern: "c1ccccc1", Target: "rdk.mols", Limit: 10},
			want: Statement{
				Text: componentBody + `B."m" @> $1 LIMIT $2`,
				Args: []interface{}{"c1ccccc1", int64(10)},
			},
		},
		{
			name: "smarts substructure on reactions",
			req: Request{Kind: Substructure, Pattern: "[#6]>>[#8]", Target: "rdk.reactions", Limit: 5,
				Options: SubstructureOptions{UseSMARTS: true}},
			want: Statement{
				Text: reactionBody + `B."r" @> $1::qmol LIMIT $2`,
				Args: []interface{}{"[#6]>>[#8]", int64(5)},
			},
		},
		{
			name: "similarity on components",
			req: Request{Kind: Similarity, Pattern: "CCO", Target: "rdk.mols", Limit: 100,
				Options: SimilarityOptions{Threshold: 0.7}},
			want: Statement{
				Text: componentBody + `B."mfp2" % "morganbv_fp"($1) LIMIT $2`,
				Args: []interface{}{"CCO", int64(100)},
			},
		},
		{
			name: "similarity on reactions",
			req:  Request{Kind: Similarity, Pattern: "CCO>>CC=O", Target: "rdk.reactions", Limit: 1},
			want: Statement{
				Text: reactionBody + `B."rdfp" % "reaction_difference_fp"($1) LIMIT $2`,
				Args: []interface{}{"CCO>>CC=O", int64(1)},
			},
		},
		{
			name: "no limit",
			req:  Request{Kind: Substructure, Pattern: "N", Target: "rdk.mols"},
			want: Statement{
				Text: componentBody + `B."m" @> $1`,
				Args: []interface{}{"N"},
			},
		},
		{
			name: "pattern stays a bind argument",
			req:  Request{Kind: Substructure, Pattern: "'; DROP TABLE reactions; --", Target: "rdk.mols", Limit: 1},
			want: Statement{
				Text: componentBody + `B."m" @> $1 LIMIT $2`,
				Args: []interface{}{"'; DROP TABLE reactions; --", int64(1)},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Compose(test.req, DefaultLayout())
			require.NoError(t, err)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Compose() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	req := Request{Kind: Similarity, Pattern: "CCO", Target: "rdk.mols", Limit: 3}
	first, err := Compose(req, DefaultLayout())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Compose(req, DefaultLayout())
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(first, again))
	}
}

func TestComposeCustomLayout(t *testing.T) {
	l := Layout{ReactionsTable: "ord.reactions", IDColumn: "rid", SerializedColumn: "proto"}
	got, err := Compose(Request{Kind: Substructure, Pattern: "C", Target: "mols", Limit: 2}, l)
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT A.\"rid\", A.\"proto\"\n"+
		"FROM \"ord\".\"reactions\" A\n"+
		"INNER JOIN \"mols\" B ON A.\"rid\" = B.\"rid\"\n"+
		"WHERE B.\"m\" @> $1 LIMIT $2", got.Text)
}

func TestComposeErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		layout Layout
		code   ErrorCode
	}{
		{
			name: "unknown kind",
			req:  Request{Kind: PatternKind(9), Pattern: "C", Target: "mols"},
			code: CodeUnsupportedPatternKind,
		},
		{
			name: "zero kind",
			req:  Request{Pattern: "C", Target: "mols"},
			code: CodeUnsupportedPatternKind,
		},
		{
			name: "options of the other kind",
			req:  Request{Kind: Substructure, Pattern: "C", Target: "mols", Options: SimilarityOptions{Threshold: 0.4}},
			code: CodeUnsupportedPatternKind,
		},
		{
			name: "too many segments",
			req:  Request{Kind: Substructure, Pattern: "C", Target: "a.b.c"},
			code: CodeInvalidIdentifier,
		},
		{
			name: "empty target",
			req:  Request{Kind: Similarity, Pattern: "C"},
			code: CodeInvalidIdentifier,
		},
		{
			name:   "bad reactions table",
			req:    Request{Kind: Substructure, Pattern: "C", Target: "mols"},
			layout: Layout{ReactionsTable: "x..y", IDColumn: "id", SerializedColumn: "s"},
			code:   CodeInvalidIdentifier,
		},
		{
			name:   "qualified column",
			req:    Request{Kind: Substructure, Pattern: "C", Target: "mols"},
			layout: Layout{ReactionsTable: "reactions", IDColumn: "a.id", SerializedColumn: "s"},
			code:   CodeInvalidIdentifier,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := test.layout
			if l == (Layout{}) {
				l = DefaultLayout()
			}
			_, err := Compose(test.req, l)
			require.Error(t, err)
			assert.Equal(t, test.code, CodeOf(err))
		})
	}
}

func TestComposeAcceptsOptionPointers(t *testing.T) {
	got, err := Compose(Request{Kind: Substructure, Pattern: "C", Target: "mols",
		Options: &SubstructureOptions{UseSMARTS: true}}, DefaultLayout())
	require.NoError(t, err)
	assert.Contains(t, got.Text, "@> $1::qmol")

	var nilOpts *SimilarityOptions
	_, err = Compose(Request{Kind: Similarity, Pattern: "C", Target: "mols", Options: nilOpts}, DefaultLayout())
	require.NoError(t, err)
}

func TestStatementString(t *testing.T) {
	s := Statement{Text: "SELECT $1 LIMIT $2", Args: []interface{}{"CCO", int64(3)}}
	assert.Equal(t, `SELECT $1 LIMIT $2 -- $1="CCO", $2=3`, s.String())
	assert.Equal(t, "SELECT 1", Statement{Text: "SELECT 1"}.String())
}

func TestParsePatternKind(t *testing.T) {
	k, err := ParsePatternKind(" Substructure ")
	require.NoError(t, err)
	assert.Equal(t, Substructure, k)

	k, err = ParsePatternKind("sim")
	require.NoError(t, err)
	assert.Equal(t, Similarity, k)

	_, err = ParsePatternKind("exact")
	assert.ErrorIs(t, err, ErrUnsupportedPatternKind)

	assert.Equal(t, "PatternKind(7)", PatternKind(7).String())
}

package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestReactionRoundTrip(t *testing.T) {
	in := NewReaction("ord-0001",
		Identifier{Type: IdentifierReactionSMILES, Value: "c1ccccc1>>C1CCCCC1", IsMapped: true},
		Identifier{Type: IdentifierCustom, Details: "lab", Value: "nb-12"},
	)

	b, err := in.Marshal()
	require.NoError(t, err)

	out, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, "ord-0001", out.ID())
	assert.Equal(t, []Identifier{
		{Type: IdentifierReactionSMILES, Value: "c1ccccc1>>C1CCCCC1", IsMapped: true},
		{Type: IdentifierCustom, Details: "lab", Value: "nb-12"},
	}, out.Identifiers())
}

func TestUnmarshalKeepsUnknownFields(t *testing.T) {
	base, err := NewReaction("ord-0002").Marshal()
	require.NoError(t, err)

	// field 4 (conditions) is not interpreted by this package
	b := protowire.AppendTag(base, 4, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0x0a, 0x01, 'x'})

	r, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, "ord-0002", r.ID())
	assert.Nil(t, r.Identifiers())

	again, err := r.Marshal()
	require.NoError(t, err)
	assert.Len(t, again, len(b))
}

func TestUnmarshalCarriesOpaqueNestedFields(t *testing.T) {
	base, err := NewReaction("ord-0003").Marshal()
	require.NoError(t, err)

	// field 2 (inputs) holds a length-delimited body that is not a valid
	// message; only the outer framing is checked
	opaque := []byte{0x52, 0x7f, 0xff}
	b := protowire.AppendTag(base, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, opaque)

	r, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, "ord-0003", r.ID())

	again, err := r.Marshal()
	require.NoError(t, err)
	assert.Equal(t, b, again)
}

func TestUnmarshalMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "truncated length", payload: []byte{0x52}},
		{name: "length past end", payload: []byte{0x52, 0x10, 'a'}},
		{name: "invalid utf8 id", payload: []byte{0x52, 0x02, 0xff, 0xfe}},
		{name: "bad wire type", payload: []byte{0x57}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := Unmarshal(test.payload)
			assert.Error(t, err)
			assert.Nil(t, r)
		})
	}
}

func TestUnmarshalEmpty(t *testing.T) {
	for _, payload := range [][]byte{nil, {}} {
		r, err := Unmarshal(payload)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, "", r.ID())
		assert.Nil(t, r.Identifiers())

		b, err := r.Marshal()
		require.NoError(t, err)
		assert.Empty(t, b)
	}
}

func TestIdentifierTypeString(t *testing.T) {
	assert.Equal(t, "REACTION_SMILES", IdentifierReactionSMILES.String())
	assert.Equal(t, "REACTION_CXSMILES", IdentifierReactionCXSMILES.String())
	assert.Equal(t, "IdentifierType(42)", IdentifierType(42).String())
}

func TestDatasetMarshal(t *testing.T) {
	d := &Dataset{Reactions: []*Reaction{NewReaction("a"), NewReaction("b")}}
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"a", "b"}, d.IDs())

	b, err := d.Marshal()
	require.NoError(t, err)

	back, err := UnmarshalDataset(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, back.IDs())
}

func TestDatasetJSON(t *testing.T) {
	d := &Dataset{Reactions: []*Reaction{
		NewReaction("ord-1", Identifier{Type: IdentifierReactionSMILES, Value: "CC>>CO"}),
	}}

	b, err := json.Marshal(d)
	require.NoError(t, err)

	var got struct {
		Reactions []struct {
			ReactionID  string `json:"reactionId"`
			Identifiers []struct {
				Type  string `json:"type"`
				Value string `json:"value"`
			} `json:"identifiers"`
		} `json:"reactions"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got.Reactions, 1)
	assert.Equal(t, "ord-1", got.Reactions[0].ReactionID)
	assert.Equal(t, "REACTION_SMILES", got.Reactions[0].Identifiers[0].Type)
	assert.Equal(t, "CC>>CO", got.Reactions[0].Identifiers[0].Value)
}

func TestEmptyDataset(t *testing.T) {
	var d *Dataset
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, d.IDs())

	b, err := (&Dataset{}).Marshal()
	require.NoError(t, err)
	assert.Empty(t, b)
}

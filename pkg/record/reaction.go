// Copyright 2023 Paolo Fabio Zaino
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package record decodes and encodes the serialized reaction records kept
// in the ORD store. Records are protocol buffers; only the fields needed to
// identify a reaction are interpreted, the rest of the payload is carried
// through untouched.
package record

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// IdentifierType is the kind of a reaction identifier.
type IdentifierType int32

// Identifier types, numbered as in the ORD schema.
const (
	IdentifierUnspecified IdentifierType = iota
	IdentifierCustom
	IdentifierReactionSMILES
	IdentifierRDFile
	IdentifierRInChI
	IdentifierReactionType
	IdentifierReactionCXSMILES
)

func (t IdentifierType) String() string {
	if v := identifierTypeDesc.Values().ByNumber(protoreflect.EnumNumber(t)); v != nil {
		return string(v.Name())
	}
	return fmt.Sprintf("IdentifierType(%d)", int32(t))
}

// Identifier is one of the identifiers attached to a reaction.
type Identifier struct {
	Type     IdentifierType
	Details  string
	Value    string
	IsMapped bool
}

// Reaction is a decoded reaction record.
type Reaction struct {
	msg *dynamicpb.Message
}

// NewReaction builds a reaction with the given id and identifiers.
func NewReaction(id string, identifiers ...Identifier) *Reaction {
	msg := dynamicpb.NewMessage(reactionDesc)
	msg.Set(reactionDesc.Fields().ByNumber(fieldReactionID), protoreflect.ValueOfString(id))

	if len(identifiers) > 0 {
		fields := identifierDesc.Fields()
		list := msg.Mutable(reactionDesc.Fields().ByNumber(fieldReactionIdentifiers)).List()
		for _, ident := range identifiers {
			im := dynamicpb.NewMessage(identifierDesc)
			im.Set(fields.ByNumber(fieldIdentifierType), protoreflect.ValueOfEnum(protoreflect.EnumNumber(ident.Type)))
			im.Set(fields.ByNumber(fieldIdentifierDetails), protoreflect.ValueOfString(ident.Details))
			im.Set(fields.ByNumber(fieldIdentifierValue), protoreflect.ValueOfString(ident.Value))
			im.Set(fields.ByNumber(fieldIdentifierIsMapped), protoreflect.ValueOfBool(ident.IsMapped))
			list.Append(protoreflect.ValueOfMessage(im))
		}
	}
	return &Reaction{msg: msg}
}

// Unmarshal decodes a reaction from its binary wire form. An empty payload
// is a valid record with every field unset.
func Unmarshal(b []byte) (*Reaction, error) {
	msg := dynamicpb.NewMessage(reactionDesc)
	if err := proto.Unmarshal(b, msg); err != nil {
		return nil, fmt.Errorf("decoding reaction: %w", err)
	}
	return &Reaction{msg: msg}, nil
}

// ID returns the reaction_id of the record.
func (r *Reaction) ID() string {
	return r.msg.Get(reactionDesc.Fields().ByNumber(fieldReactionID)).String()
}

// Identifiers returns the reaction identifiers in record order.
func (r *Reaction) Identifiers() []Identifier {
	list := r.msg.Get(reactionDesc.Fields().ByNumber(fieldReactionIdentifiers)).List()
	if list.Len() == 0 {
		return nil
	}

	fields := identifierDesc.Fields()
	out := make([]Identifier, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		m := list.Get(i).Message()
		out = append(out, Identifier{
			Type:     IdentifierType(m.Get(fields.ByNumber(fieldIdentifierType)).Enum()),
			Details:  m.Get(fields.ByNumber(fieldIdentifierDetails)).String(),
			Value:    m.Get(fields.ByNumber(fieldIdentifierValue)).String(),
			IsMapped: m.Get(fields.ByNumber(fieldIdentifierIsMapped)).Bool(),
		})
	}
	return out
}

// Message exposes the underlying protobuf message.
func (r *Reaction) Message() proto.Message {
	return r.msg
}

// Marshal encodes the reaction, unknown fields included.
func (r *Reaction) Marshal() ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(r.msg)
}

// MarshalJSON renders the known fields of the reaction as protojson.
func (r *Reaction) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(r.msg)
}

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

package record

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Dataset is an ordered collection of reactions, the envelope returned by
// every search.
type Dataset struct {
	Reactions []*Reaction
}

// Len returns the number of reactions in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Reactions)
}

// IDs returns the reaction ids in dataset order.
func (d *Dataset) IDs() []string {
	ids := make([]string, 0, d.Len())
	if d == nil {
		return ids
	}
	for _, r := range d.Reactions {
		ids = append(ids, r.ID())
	}
	return ids
}

func (d *Dataset) message() *dynamicpb.Message {
	msg := dynamicpb.NewMessage(datasetDesc)
	if d.Len() == 0 {
		return msg
	}
	list := msg.Mutable(datasetDesc.Fields().ByNumber(fieldDatasetReactions)).List()
	for _, r := range d.Reactions {
		list.Append(protoreflect.ValueOfMessage(r.msg))
	}
	return msg
}

// Marshal encodes the dataset as an ORD Dataset message.
func (d *Dataset) Marshal() ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(d.message())
}

// MarshalJSON renders the dataset as protojson.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(d.message())
}

// UnmarshalDataset decodes an ORD Dataset message.
func UnmarshalDataset(b []byte) (*Dataset, error) {
	msg := dynamicpb.NewMessage(datasetDesc)
	if err := proto.Unmarshal(b, msg); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}

	list := msg.Get(datasetDesc.Fields().ByNumber(fieldDatasetReactions)).List()
	d := &Dataset{Reactions: make([]*Reaction, 0, list.Len())}
	for i := 0; i < list.Len(); i++ {
		rm, ok := list.Get(i).Message().Interface().(*dynamicpb.Message)
		if !ok {
			return nil, fmt.Errorf("decoding dataset: unexpected reaction type %T", list.Get(i).Message().Interface())
		}
		d.Reactions = append(d.Reactions, &Reaction{msg: rm})
	}
	return d, nil
}

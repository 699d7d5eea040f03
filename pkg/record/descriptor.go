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

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Field numbers of the ORD messages this package understands. Every other
// field travels as unknown data and survives a decode/encode cycle.
const (
	fieldIdentifierType     = 1
	fieldIdentifierDetails  = 2
	fieldIdentifierValue    = 3
	fieldIdentifierIsMapped = 4

	fieldReactionIdentifiers = 1
	fieldReactionID          = 10

	fieldDatasetName        = 1
	fieldDatasetDescription = 2
	fieldDatasetReactions   = 3
	fieldDatasetReactionIDs = 4
	fieldDatasetID          = 5
)

var (
	identifierDesc     protoreflect.MessageDescriptor
	identifierTypeDesc protoreflect.EnumDescriptor
	reactionDesc       protoreflect.MessageDescriptor
	datasetDesc        protoreflect.MessageDescriptor
)

func init() {
	fd, err := protodesc.NewFile(ordFile(), new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("record: building ORD descriptors: %v", err))
	}
	msgs := fd.Messages()
	identifierDesc = msgs.ByName("ReactionIdentifier")
	identifierTypeDesc = identifierDesc.Enums().ByName("IdentifierType")
	reactionDesc = msgs.ByName("Reaction")
	datasetDesc = msgs.ByName("Dataset")
}

// ordFile describes the subset of ord/reaction.proto and ord/dataset.proto
// the search tools read.
func ordFile() *descriptorpb.FileDescriptorProto {
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		tString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
		tBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
		tEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
		tMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)

	identifierTypes := []string{
		"UNSPECIFIED", "CUSTOM", "REACTION_SMILES", "RDFILE",
		"RINCHI", "REACTION_TYPE", "REACTION_CXSMILES",
	}
	values := make([]*descriptorpb.EnumValueDescriptorProto, 0, len(identifierTypes))
	for i, name := range identifierTypes {
		values = append(values, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(int32(i)), //nolint:gosec // small constant table
		})
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("ord/search.proto"),
		Package: proto.String("ord"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("ReactionIdentifier"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("type", fieldIdentifierType, optional, tEnum, ".ord.ReactionIdentifier.IdentifierType"),
					field("details", fieldIdentifierDetails, optional, tString, ""),
					field("value", fieldIdentifierValue, optional, tString, ""),
					field("is_mapped", fieldIdentifierIsMapped, optional, tBool, ""),
				},
				EnumType: []*descriptorpb.EnumDescriptorProto{
					{Name: proto.String("IdentifierType"), Value: values},
				},
			},
			{
				Name: proto.String("Reaction"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("identifiers", fieldReactionIdentifiers, repeated, tMessage, ".ord.ReactionIdentifier"),
					field("reaction_id", fieldReactionID, optional, tString, ""),
				},
			},
			{
				Name: proto.String("Dataset"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("name", fieldDatasetName, optional, tString, ""),
					field("description", fieldDatasetDescription, optional, tString, ""),
					field("reactions", fieldDatasetReactions, repeated, tMessage, ".ord.Reaction"),
					field("reaction_ids", fieldDatasetReactionIDs, repeated, tString, ""),
					field("dataset_id", fieldDatasetID, optional, tString, ""),
				},
			},
		},
	}
}

func field(name string, number int32, label descriptorpb.FieldDescriptorProto_Label,
	typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}

package evaluator

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// freeReadProtoDescriptor reads a compiled FileDescriptorSet (the
// output of `protoc --descriptor_set_out`) and renders it as a document
// tree of message names and their fields, so a generator can walk a
// .proto schema the same way it walks a JSON/YAML document.
func (e *Evaluator) freeReadProtoDescriptor(args []Value) (Value, error) {
	raw, err := e.host.ReadFile(args[0].Str)
	if err != nil {
		return Undefined(), fmt.Errorf("reading %q: %w", args[0].Str, err)
	}

	var fdSet descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &fdSet); err != nil {
		return Undefined(), fmt.Errorf("parsing proto descriptor set %q: %w", args[0].Str, err)
	}
	files, err := desc.CreateFileDescriptorsFromSet(&fdSet)
	if err != nil {
		return Undefined(), fmt.Errorf("linking proto descriptor set %q: %w", args[0].Str, err)
	}

	fileList := make([]any, 0, len(files))
	for _, fd := range files {
		fileList = append(fileList, protoFileDocument(fd))
	}
	return Value{Kind: KDocument, Doc: NewDocument(map[string]any{"files": fileList})}, nil
}

func protoFileDocument(fd *desc.FileDescriptor) map[string]any {
	messages := make([]any, 0, len(fd.GetMessageTypes()))
	for _, m := range fd.GetMessageTypes() {
		messages = append(messages, protoMessageDocument(m))
	}
	return map[string]any{
		"name":     fd.GetName(),
		"package":  fd.GetPackage(),
		"messages": messages,
	}
}

func protoMessageDocument(m *desc.MessageDescriptor) map[string]any {
	fields := make([]any, 0, len(m.GetFields()))
	for _, f := range m.GetFields() {
		fields = append(fields, map[string]any{
			"name":   f.GetName(),
			"number": int64(f.GetNumber()),
			"type":   f.GetType().String(),
		})
	}
	return map[string]any{
		"name":   m.GetName(),
		"fields": fields,
	}
}

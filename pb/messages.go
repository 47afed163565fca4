package pb

import (
	"fmt"

	"gccinv/internal/invocation"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request fields.
// Parse takes either "argv" (a list of strings) or "cmdline" (a build log line, see invocation.SplitCmdLine).
// RestrictToOneSource takes the same plus "source".
const (
	FieldArgv    = "argv"
	FieldCmdLine = "cmdline"
	FieldSource  = "source"
)

// Response fields, the same as json tags of invocation.Record.
const (
	FieldExecutable   = "executable"
	FieldProgramName  = "program_name"
	FieldSources      = "sources"
	FieldDefines      = "defines"
	FieldIncludePaths = "include_paths"
	FieldOtherFlags   = "other_flags"
)

func stringListValue(items []string) *structpb.Value {
	values := make([]*structpb.Value, 0, len(items))
	for _, item := range items {
		values = append(values, structpb.NewStringValue(item))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func stringListField(s *structpb.Struct, name string) ([]string, error) {
	value, ok := s.GetFields()[name]
	if !ok {
		return []string{}, nil
	}
	list := value.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("field %q is not a list", name)
	}
	items := make([]string, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		str, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("field %q: item %d is not a string", name, i)
		}
		items = append(items, str.StringValue)
	}
	return items, nil
}

func MakeArgvRequest(argv []string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldArgv: stringListValue(argv),
	}}
}

func MakeCmdLineRequest(cmdLine string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldCmdLine: structpb.NewStringValue(cmdLine),
	}}
}

// WithSource adds "source" to a Parse request, making it a RestrictToOneSource request.
func WithSource(request *structpb.Struct, source string) *structpb.Struct {
	request.Fields[FieldSource] = structpb.NewStringValue(source)
	return request
}

// ParseRequest classifies whatever the request carries: "argv" if present, "cmdline" otherwise.
func ParseRequest(request *structpb.Struct) (*invocation.Invocation, error) {
	if cmdLine, ok := request.GetFields()[FieldCmdLine]; ok && request.GetFields()[FieldArgv] == nil {
		return invocation.ParseCmdLine(cmdLine.GetStringValue())
	}
	argv, err := stringListField(request, FieldArgv)
	if err != nil {
		return nil, err
	}
	return invocation.Parse(argv)
}

func RequestSource(request *structpb.Struct) (string, bool) {
	value, ok := request.GetFields()[FieldSource]
	if !ok {
		return "", false
	}
	str, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return str.StringValue, true
}

func RecordToStruct(record invocation.Record) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldExecutable:   structpb.NewStringValue(record.Executable),
		FieldProgramName:  structpb.NewStringValue(record.ProgramName),
		FieldSources:      stringListValue(record.Sources),
		FieldDefines:      stringListValue(record.Defines),
		FieldIncludePaths: stringListValue(record.IncludePaths),
		FieldOtherFlags:   stringListValue(record.OtherFlags),
	}}
}

func StructToRecord(s *structpb.Struct) (invocation.Record, error) {
	record := invocation.Record{
		Executable:  s.GetFields()[FieldExecutable].GetStringValue(),
		ProgramName: s.GetFields()[FieldProgramName].GetStringValue(),
	}

	var err error
	if record.Sources, err = stringListField(s, FieldSources); err != nil {
		return record, err
	}
	if record.Defines, err = stringListField(s, FieldDefines); err != nil {
		return record, err
	}
	if record.IncludePaths, err = stringListField(s, FieldIncludePaths); err != nil {
		return record, err
	}
	if record.OtherFlags, err = stringListField(s, FieldOtherFlags); err != nil {
		return record, err
	}
	return record, nil
}

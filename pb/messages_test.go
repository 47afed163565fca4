package pb

import (
	"encoding/json"
	"testing"

	"gccinv/internal/invocation"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestStructToRecordMissingListsAreEmpty(t *testing.T) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldExecutable: structpb.NewStringValue("gcc"),
	}}

	record, err := StructToRecord(s)
	if err != nil {
		t.Fatalf("StructToRecord() returned error: %v", err)
	}
	want := invocation.Record{
		Executable:   "gcc",
		Sources:      []string{},
		Defines:      []string{},
		IncludePaths: []string{},
		OtherFlags:   []string{},
	}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Errorf("StructToRecord() mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(record)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(out), `{"executable":"gcc","program_name":"","sources":[],"defines":[],"include_paths":[],"other_flags":[]}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

func TestRecordStructRoundTrip(t *testing.T) {
	inv, err := invocation.Parse([]string{"/usr/bin/gcc", "-DA=1", "-Iinc", "-O2", "-c", "a.c"})
	if err != nil {
		t.Fatal(err)
	}

	record, err := StructToRecord(RecordToStruct(inv.Record()))
	if err != nil {
		t.Fatalf("StructToRecord() returned error: %v", err)
	}
	if diff := cmp.Diff(inv.Record(), record); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStructToRecordRejectsNonStrings(t *testing.T) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSources: structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{structpb.NewNumberValue(1)}}),
	}}
	if _, err := StructToRecord(s); err == nil {
		t.Errorf("StructToRecord() must reject a non-string source")
	}
}

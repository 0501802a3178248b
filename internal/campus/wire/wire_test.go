package wire_test

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/campus/wire"
)

func TestRecordRequest_SurvivesProtoEncoding(t *testing.T) {
	in := types.RecordAccessRequest{UserCode: "A1B2C3", EventType: types.KindEntry, StationID: "gate-north"}

	b, err := proto.Marshal(wire.RecordRequestToStruct(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := wire.RecordRequestFromStruct(&s); got != in {
		t.Errorf("got %+v, want %+v", got, in)
	}
}

func TestRecordResponse_CarriesErrorText(t *testing.T) {
	in := types.RecordAccessResponse{Success: false, Error: "Cupo lleno"}

	got := wire.RecordResponseFromStruct(wire.RecordResponseToStruct(in))
	if got != in {
		t.Errorf("got %+v, want %+v", got, in)
	}
	if _, ok := wire.RecordResponseToStruct(types.RecordAccessResponse{Success: true}).GetFields()["error"]; ok {
		t.Error("expected no error field on success")
	}
}

func TestRecordRequestFromStruct_MissingAndWrongTypedFields(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"user_code": 42.0})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	got := wire.RecordRequestFromStruct(s)
	if got.UserCode != "" || got.EventType != "" {
		t.Errorf("expected empty fields, got %+v", got)
	}
}

func TestUserResponse(t *testing.T) {
	u := types.User{ID: 7, Name: "Ana", Email: "ana@campus.test", Program: "Ingenieria", Role: types.RoleMember, Code: "A1B2C3"}

	got, err := wire.UserResponseFromStruct(wire.UserResponseToStruct(u))
	if err != nil {
		t.Fatalf("UserResponseFromStruct: %v", err)
	}
	if got != u {
		t.Errorf("got %+v, want %+v", got, u)
	}

	if _, err := wire.UserResponseFromStruct(wire.ErrorToStruct("User not found.")); err == nil {
		t.Error("expected error when usuario is absent")
	}
}

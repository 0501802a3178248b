// Package wire converts campus types to and from google.protobuf.Struct, the
// payload used by protobuf-speaking stations over HTTP and gRPC.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func RecordRequestFromStruct(s *structpb.Struct) types.RecordAccessRequest {
	return types.RecordAccessRequest{
		UserCode:  str(s, "user_code"),
		EventType: types.EventKind(str(s, "event_type")),
		StationID: str(s, "station_id"),
	}
}

func RecordRequestToStruct(req types.RecordAccessRequest) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"user_code":  structpb.NewStringValue(req.UserCode),
		"event_type": structpb.NewStringValue(string(req.EventType)),
	}
	if req.StationID != "" {
		fields["station_id"] = structpb.NewStringValue(req.StationID)
	}
	return &structpb.Struct{Fields: fields}
}

func RecordResponseToStruct(r types.RecordAccessResponse) *structpb.Struct {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		"success": structpb.NewBoolValue(r.Success),
		"message": structpb.NewStringValue(r.Message),
	}}
	if r.Error != "" {
		s.Fields["error"] = structpb.NewStringValue(r.Error)
	}
	return s
}

func RecordResponseFromStruct(s *structpb.Struct) types.RecordAccessResponse {
	return types.RecordAccessResponse{
		Success: s.GetFields()["success"].GetBoolValue(),
		Message: str(s, "message"),
		Error:   str(s, "error"),
	}
}

func LookupRequestToStruct(code string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"user_code": structpb.NewStringValue(code),
	}}
}

func LookupRequestFromStruct(s *structpb.Struct) string {
	return str(s, "user_code")
}

// UserResponseToStruct nests the user under "usuario", like the JSON API.
func UserResponseToStruct(u types.User) *structpb.Struct {
	user := &structpb.Struct{Fields: map[string]*structpb.Value{
		"user_id":      structpb.NewNumberValue(float64(u.ID)),
		"nombre":       structpb.NewStringValue(u.Name),
		"correo":       structpb.NewStringValue(u.Email),
		"carrera":      structpb.NewStringValue(u.Program),
		"rol":          structpb.NewStringValue(string(u.Role)),
		"codigo_barra": structpb.NewStringValue(u.Code),
	}}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"usuario": structpb.NewStructValue(user),
	}}
}

func UserResponseFromStruct(s *structpb.Struct) (types.User, error) {
	u := s.GetFields()["usuario"].GetStructValue()
	if u == nil {
		return types.User{}, fmt.Errorf("wire: response has no usuario")
	}
	return types.User{
		ID:      int64(u.GetFields()["user_id"].GetNumberValue()),
		Name:    str(u, "nombre"),
		Email:   str(u, "correo"),
		Program: str(u, "carrera"),
		Role:    types.Role(str(u, "rol")),
		Code:    str(u, "codigo_barra"),
	}, nil
}

func ErrorToStruct(msg string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"error": structpb.NewStringValue(msg),
	}}
}

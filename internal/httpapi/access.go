package httpapi

import (
	"net/http"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/campusgate/internal/auth"
	"github.com/BrandonDHaskell/campusgate/internal/campus/service"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/campus/wire"
)

func (s *Server) handleRecordAccess(w http.ResponseWriter, r *http.Request) {
	var req types.RecordAccessRequest
	proto := isProtobuf(r)

	if proto {
		var msg structpb.Struct
		if err := readProto(r, &msg); err != nil {
			writeProto(w, http.StatusBadRequest, wire.ErrorToStruct("invalid protobuf body"))
			return
		}
		req = wire.RecordRequestFromStruct(&msg)
	} else if !decodeJSON(w, r, &req) {
		return
	}

	_, err := s.accessService.Record(r.Context(), req)
	if err != nil {
		status, msg, ok := statusFor(err)
		if !ok {
			s.logger.Error().Err(err).Str("user_code", req.UserCode).Msg("record access")
			msg = "Failed to record access log."
		}
		if proto {
			writeProto(w, status, wire.ErrorToStruct(msg))
			return
		}
		writeError(w, status, msg)
		return
	}

	resp := types.RecordAccessResponse{Success: true, Message: service.RecordedMessage}
	if proto {
		writeProto(w, http.StatusCreated, wire.RecordResponseToStruct(resp))
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := types.HistoryQuery{
		UserCode:  qs.Get("user_code"),
		StartDate: qs.Get("start_date"),
		EndDate:   qs.Get("end_date"),
		Type:      qs.Get("type"),
	}

	var err error
	if q.Page, err = optionalInt(qs.Get("page")); err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	if q.Limit, err = optionalInt(qs.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	// Members only ever see their own log.
	if p, ok := auth.FromContext(r.Context()); ok && !p.Role.CanOperateStation() {
		if q.UserCode != "" && q.UserCode != p.Code {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		q.UserCode = p.Code
	}

	page, err := s.historyService.List(r.Context(), q)
	if err != nil {
		if status, msg, ok := statusFor(err); ok {
			writeError(w, status, msg)
			return
		}
		s.logger.Error().Err(err).Msg("access history")
		writeError(w, http.StatusInternalServerError, "Failed to load access history.")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/campus/wire"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := s.userService.Register(r.Context(), req); err != nil {
		if status, msg, ok := statusFor(err); ok {
			writeError(w, status, msg)
			return
		}
		s.logger.Error().Err(err).Msg("registro")
		writeError(w, http.StatusInternalServerError, "Failed to register user.")
		return
	}

	writeJSON(w, http.StatusOK, types.RegisterResponse{Success: true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if status, msg, ok := statusFor(err); ok {
			writeError(w, status, msg)
			return
		}
		s.logger.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "Error al iniciar sesión")
		return
	}

	resp := types.LoginResponse{User: user}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("issue token")
			writeError(w, http.StatusInternalServerError, "Error al iniciar sesión")
			return
		}
		resp.Token = token
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMissingUserCode(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusBadRequest, "User code is required.")
}

func (s *Server) handleUserByCode(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.UserByCode(r.Context(), chi.URLParam(r, "user_code"))
	proto := wantsProtobuf(r)
	if err != nil {
		status, msg, ok := statusFor(err)
		if !ok {
			s.logger.Error().Err(err).Msg("user by code")
			msg = "Failed to look up user."
		}
		if proto {
			writeProto(w, status, wire.ErrorToStruct(msg))
			return
		}
		writeError(w, status, msg)
		return
	}

	if proto {
		writeProto(w, http.StatusOK, wire.UserResponseToStruct(user))
		return
	}
	writeJSON(w, http.StatusOK, types.UserResponse{User: &user})
}
